package web

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/hakari-tcg/hakari/internal/game"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid JSON format: "+err.Error())
		return
	}

	result, err := game.RegisterUser(r.Context(), s.data, req.Email, req.Password, req.DisplayName)
	if err != nil {
		s.log.Error("register failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}

	status := http.StatusBadRequest
	if result.Success {
		status = http.StatusCreated
	}
	writeMessage(w, status, result.Success, result.Message)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid JSON format: "+err.Error())
		return
	}

	result, err := game.LoginUser(r.Context(), s.data, s.authn, req.Email, req.Password)
	if err != nil {
		s.log.Error("login failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}

	if !result.Success {
		writeMessage(w, http.StatusUnauthorized, false, result.Message)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": result.Message,
		"token":   result.Token,
	})
}

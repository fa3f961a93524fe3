// Package web is the HTTP surface: JSON routes under /api, bearer-token
// auth, and the handlers for accounts, packs, collections, decks and the
// friend graph.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/hakari-tcg/hakari/internal/auth"
	"github.com/hakari-tcg/hakari/internal/data"
)

// Server owns the router and the handler dependencies.
type Server struct {
	router       *mux.Router
	data         *data.Service
	authn        *auth.Authenticator
	imageBaseURL string
	log          *zap.Logger
}

// NewServer wires every route. The returned value is an http.Handler ready
// to be mounted.
func NewServer(svc *data.Service, authn *auth.Authenticator, imageBaseURL string, log *zap.Logger) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		data:         svc,
		authn:        authn,
		imageBaseURL: imageBaseURL,
		log:          log,
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	api.HandleFunc("/open_pack", s.requireAuth(s.handleOpenPack)).Methods(http.MethodPost)
	api.HandleFunc("/collection/{userId}", s.requireAuth(s.handleCollection)).Methods(http.MethodGet)
	api.HandleFunc("/decks", s.requireAuth(s.handleSaveDeck)).Methods(http.MethodPut)
	api.HandleFunc("/users/search", s.requireAuth(s.handleUserSearch)).Methods(http.MethodGet)
	api.HandleFunc("/friends", s.requireAuth(s.handleFriendsList)).Methods(http.MethodGet)
	api.HandleFunc("/friends/request", s.requireAuth(s.handleFriendRequest)).Methods(http.MethodPost)
	api.HandleFunc("/friends/response", s.requireAuth(s.handleFriendResponse)).Methods(http.MethodPost)
	api.HandleFunc("/friends/{friendId}", s.requireAuth(s.handleFriendRemove)).Methods(http.MethodDelete)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// cardImageURL joins the configured base URL with a character id.
func (s *Server) cardImageURL(characterIDHex string) string {
	return s.imageBaseURL + characterIDHex
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, success bool, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": success,
		"message": message,
	})
}

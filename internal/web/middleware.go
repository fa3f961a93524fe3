package web

import (
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/hakari-tcg/hakari/internal/auth"
)

// authedHandler receives the verified caller identity alongside the request.
type authedHandler func(w http.ResponseWriter, r *http.Request, callerID primitive.ObjectID, claims *auth.Claims)

// requireAuth extracts and verifies the bearer token, short-circuiting with
// 401 when it is missing, malformed, invalid or expired.
func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeMessage(w, http.StatusUnauthorized, false, "Unauthorized: Missing or malformed token.")
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		callerID, claims, err := s.authn.VerifyToken(token)
		if err != nil {
			s.log.Debug("token rejected", zap.Error(err))
			writeMessage(w, http.StatusUnauthorized, false, "Unauthorized: Invalid or expired token.")
			return
		}

		next(w, r, callerID, claims)
	}
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	PlayerIDKey contextKey = "player_id"
	UsernameKey contextKey = "username"
)

type AuthMiddleware struct {
	jwtManager *JWTManager
}

func NewAuthMiddleware(jwtManager *JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w)
			return
		}

		tokenString := m.jwtManager.ExtractTokenFromBearer(authHeader)
		if tokenString == "" {
			writeAuthError(w)
			return
		}

		claims, err := m.jwtManager.ValidateToken(tokenString)
		if err != nil {
			writeAuthError(w)
			return
		}

		// Add player identity to context
		ctx := context.WithValue(r.Context(), PlayerIDKey, claims.PlayerID)
		ctx = context.WithValue(ctx, UsernameKey, claims.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPlayerIDFromContext returns the authenticated player identity.
func GetPlayerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	playerID, ok := ctx.Value(PlayerIDKey).(uuid.UUID)
	return playerID, ok
}

// GetUsernameFromContext returns the authenticated player's username.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Player not authenticated"})
}

// SecurityHeaders adds common security headers to every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		next.ServeHTTP(w, r)
	})
}

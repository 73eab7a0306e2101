package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"soulsync-backend/internal/services"
)

type contextKey string

const sessionKey contextKey = "session"

// AuthMiddleware creates a middleware for JWT session authentication
func AuthMiddleware(coupleService *services.CoupleService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			sess, err := coupleService.ValidateJWT(parts[1])
			if err != nil {
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession extracts the couple session from context
func GetSession(ctx context.Context) services.Session {
	sess, ok := ctx.Value(sessionKey).(services.Session)
	if !ok {
		return services.Session{}
	}
	return sess
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// ValidateWebSocketToken validates a JWT from a WebSocket query parameter
func ValidateWebSocketToken(token string, coupleService *services.CoupleService) (services.Session, error) {
	if token == "" {
		return services.Session{}, fmt.Errorf("token required")
	}
	return coupleService.ValidateJWT(token)
}

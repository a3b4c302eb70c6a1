package middleware

import (
	"encoding/json"
	"net/http"

	"cafebar-be/internal/auth"
	"cafebar-be/internal/logger"

	"go.uber.org/zap"
)

// TokenParser verifies a session token.
type TokenParser interface {
	Parse(token string) (*auth.SessionClaims, error)
}

// Auth attaches the session's device id to the request context. Requests
// without a token pass through anonymously; a token that fails to verify
// is rejected with 401. Auth runs outside the access log, so it logs its
// own rejections.
func Auth(sessions TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractAccessToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := sessions.Parse(token)
			if err != nil {
				logger.FromCtx(r.Context()).Warn("rejected session token",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", http.StatusUnauthorized),
					zap.String("ip", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(logger.WithDeviceID(r.Context(), claims.DeviceID)))
		})
	}
}

// RequireSession rejects anonymous requests.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if logger.DeviceIDFrom(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, "session required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

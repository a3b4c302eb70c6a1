package auth

import (
	"net/http"
	"strings"
)

// CookieName is the cookie carrying the session token for web clients.
const CookieName = "session_token"

// ExtractAccessToken reads the token from the session cookie, falling back
// to a Bearer Authorization header.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if cookie.Value != "" {
			return cookie.Value
		}
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

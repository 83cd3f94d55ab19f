package auth

import (
	"crypto/subtle"
	"medbot/internal/core/domain/user"
	"medbot/internal/http/handlers/response"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	AUTH_TOKEN_PREFIX  = "Bearer "
	AUTH_TOKEN_MAX_LEN = 1024
)

func ParseToken(r *http.Request) (token string, ok bool) {
	header := r.Header.Get("authorization")
	if header == "" {
		return token, false
	}
	parts := strings.SplitN(header, AUTH_TOKEN_PREFIX, 2)
	if len(parts) != 2 || parts[0] != "" {
		return token, false
	}
	if len(parts[1]) > AUTH_TOKEN_MAX_LEN {
		return token, false
	}
	return parts[1], true
}

// RequireAPIToken rejects requests that don't carry apiToken as a bearer token.
func RequireAPIToken(apiToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			token, ok := ParseToken(r)
			if !ok || apiToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(apiToken)) != 1 {
				response.RenderUnauthorized(rw)
				return
			}
			next.ServeHTTP(rw, r)
		})
	}
}

// UserID reads the {userID} URL parameter.
func UserID(r *http.Request) (user.ID, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return user.ID(id), true
}

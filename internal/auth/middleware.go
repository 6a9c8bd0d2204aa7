package auth

import (
	"net/http"
	"strings"

	"github.com/recicla-soft/recicla/internal/platform/httpx"
	"github.com/recicla-soft/recicla/internal/shared"
)

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// RequireAccount resolves the bearer token and stores the account on the
// request context. Requests without a valid token get 401.
func RequireAccount(tokens *TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				httpx.RespondError(w, shared.NewError(shared.KindUnauthorized, "missing bearer token"))
				return
			}
			acc, err := tokens.Resolve(r.Context(), token)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithAccount(r.Context(), acc)))
		})
	}
}

package middleware

import (
	"net/http"
	"strings"

	"notable/internal/auth"
	"notable/internal/domain/services"
	"notable/internal/httputil"
)

// Auth validates the Bearer token on every request and stores the caller's
// identity in the request context. Unauthenticated requests get 401.
func Auth(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			r = httputil.WithIdentity(r, services.Identity{
				UserID: claims.Subject,
				Name:   claims.Name,
				Email:  claims.Email,
			})

			next.ServeHTTP(w, r)
		})
	}
}

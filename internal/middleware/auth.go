package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/templui/showcase/internal/ctxkeys"
	"github.com/templui/showcase/internal/service"
)

// AdminAuth checks for an admin JWT and adds the admin to the context if valid.
// A bearer token takes precedence over the auth cookie.
func AdminAuth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, source := bearerToken(r), ctxkeys.AuthSourceBearer
			if token == "" {
				cookie, err := r.Cookie(service.AuthCookieName)
				if err != nil || cookie.Value == "" {
					// No credentials, continue without auth
					next.ServeHTTP(w, r)
					return
				}
				token, source = cookie.Value, ctxkeys.AuthSourceCookie
			}

			admin, err := authService.VerifyJWT(token)
			if err != nil {
				if source == ctxkeys.AuthSourceCookie {
					// Invalid token, clear cookie and continue
					authService.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithAdmin(r.Context(), admin, source)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests that did not authenticate as the admin.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Admin(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

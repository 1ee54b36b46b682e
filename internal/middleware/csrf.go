package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/templui/showcase/internal/ctxkeys"
)

const (
	csrfCookieName = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
	csrfTokenLen   = 32
)

// CSRFProtection guards state-changing requests authenticated by the auth
// cookie with a double-submit token. Bearer-token and anonymous requests carry
// no ambient credentials and are not checked. Must run after AdminAuth.
//
// Every response carries the token in a script-readable cookie, and the token
// is exposed to handlers through ctxkeys.CSRFToken.
func CSRFProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ensureCSRFCookie(w, r)
		r = r.WithContext(ctxkeys.WithCSRFToken(r.Context(), token))

		if needsCSRFCheck(r) && !tokensMatch(token, r.Header.Get(csrfHeader)) {
			slog.Warn("csrf validation failed", "path", r.URL.Path, "method", r.Method, "ip", getClientIP(r))
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func needsCSRFCheck(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return ctxkeys.AuthSource(r.Context()) == ctxkeys.AuthSourceCookie
}

// ensureCSRFCookie returns the request's token when it is well formed, and
// otherwise issues a fresh one.
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err == nil && len(cookie.Value) == base64.RawURLEncoding.EncodedLen(csrfTokenLen) {
		return cookie.Value
	}

	token := generateCSRFToken()
	cfg := ctxkeys.Config(r.Context())

	// Not HttpOnly: the dashboard script echoes it in the X-CSRF-Token header
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Secure:   cfg != nil && cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   7 * 24 * 60 * 60,
	})
	return token
}

func generateCSRFToken() string {
	b := make([]byte, csrfTokenLen)
	_, err := rand.Read(b)
	if err != nil {
		panic("failed to generate csrf token: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func tokensMatch(expected, actual string) bool {
	return expected != "" && actual != "" && subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/showcase/internal/ctxkeys"
	"github.com/templui/showcase/internal/model"
	"github.com/templui/showcase/internal/service"
)

func newAuthService(secret string) *service.AuthService {
	return service.NewAuthService("admin@example.com", "", secret, time.Hour, false)
}

// whoami echoes the authenticated admin and how they authenticated.
func whoami(w http.ResponseWriter, r *http.Request) {
	admin := ctxkeys.Admin(r.Context())
	_, _ = w.Write([]byte(admin.Email + " via " + ctxkeys.AuthSource(r.Context())))
}

func TestAdminAuth(t *testing.T) {
	auth := newAuthService("test_secret")
	token, _, err := auth.GenerateJWT(&model.Admin{Email: "admin@example.com"})
	require.NoError(t, err)

	forged, _, err := newAuthService("other_secret").GenerateJWT(&model.Admin{Email: "admin@example.com"})
	require.NoError(t, err)

	handler := AdminAuth(auth)(RequireAdmin(whoami))

	tests := []struct {
		name           string
		header         string
		cookie         *http.Cookie
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Valid bearer token",
			header:         "Bearer " + token,
			expectedStatus: http.StatusOK,
			expectedBody:   "admin@example.com via bearer",
		},
		{
			name:           "Valid cookie",
			cookie:         &http.Cookie{Name: service.AuthCookieName, Value: token},
			expectedStatus: http.StatusOK,
			expectedBody:   "admin@example.com via cookie",
		},
		{
			name:           "Bearer wins over cookie",
			header:         "bearer " + token,
			cookie:         &http.Cookie{Name: service.AuthCookieName, Value: "garbage"},
			expectedStatus: http.StatusOK,
			expectedBody:   "admin@example.com via bearer",
		},
		{
			name:           "No credentials",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed token",
			header:         "Bearer invalid_token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Token signed with another secret",
			header:         "Bearer " + forged,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestAdminAuthClearsInvalidCookie(t *testing.T) {
	handler := AdminAuth(newAuthService("test_secret"))(RequireAdmin(whoami))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.AddCookie(&http.Cookie{Name: service.AuthCookieName, Value: "expired"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Set-Cookie"), service.AuthCookieName+"=;"))
}

func TestCSRFProtection(t *testing.T) {
	auth := newAuthService("test_secret")
	token, _, err := auth.GenerateJWT(&model.Admin{Email: "admin@example.com"})
	require.NoError(t, err)

	handler := Chain(http.HandlerFunc(whoami), AdminAuth(auth), CSRFProtection)
	csrf := generateCSRFToken()

	tests := []struct {
		name           string
		method         string
		bearer         bool
		csrfCookie     bool
		csrfHeader     string
		expectedStatus int
	}{
		{name: "Cookie auth without token", method: http.MethodPost, expectedStatus: http.StatusForbidden},
		{name: "Cookie auth with mismatched token", method: http.MethodPost, csrfCookie: true, csrfHeader: "nope", expectedStatus: http.StatusForbidden},
		{name: "Cookie auth with matching token", method: http.MethodDelete, csrfCookie: true, csrfHeader: csrf, expectedStatus: http.StatusOK},
		{name: "Cookie auth safe method", method: http.MethodGet, expectedStatus: http.StatusOK},
		{name: "Bearer auth is exempt", method: http.MethodPatch, bearer: true, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/admin/products", nil)
			if tt.bearer {
				req.Header.Set("Authorization", "Bearer "+token)
			} else {
				req.AddCookie(&http.Cookie{Name: service.AuthCookieName, Value: token})
			}
			if tt.csrfCookie {
				req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: csrf})
			}
			if tt.csrfHeader != "" {
				req.Header.Set(csrfHeader, tt.csrfHeader)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/showcase/internal/app"
	"github.com/templui/showcase/internal/config"
	"github.com/templui/showcase/internal/db"
	"github.com/templui/showcase/internal/service"
	"github.com/templui/showcase/internal/storage/storagetest"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testServer struct {
	t       *testing.T
	handler http.Handler
	host    *storagetest.Host
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	path := filepath.Join(t.TempDir(), "routes.db")
	database, err := db.Init("sqlite", path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	hash, err := service.NewAuthService("", "", "", 0, false).HashPassword("hunter22")
	require.NoError(t, err)

	cfg := &config.Config{
		AppName:           "Showcase",
		AppEnv:            "development",
		AppURL:            "https://example.com",
		JWTSecret:         "test_secret",
		JWTExpiry:         time.Hour,
		AdminEmail:        "admin@example.com",
		AdminPasswordHash: hash,
		MediaGracePeriod:  24 * time.Hour,
		MediaMaxImageMB:   10,
		MediaMaxVideoMB:   200,
	}
	host := storagetest.New()

	return &testServer{
		t:       t,
		handler: SetupRoutes(app.Wire(cfg, database, host)),
		host:    host,
	}
}

func (s *testServer) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	s.t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) json(method, target, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(method, target, strings.NewReader(body), "application/json")
}

func (s *testServer) login() {
	s.t.Helper()

	rr := s.json(http.MethodPost, "/api/admin/login", `{"email":"admin@example.com","password":"hunter22"}`)
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Token     string `json:"token"`
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.Token)
	require.NotEmpty(s.t, resp.CSRFToken)
	s.token = resp.Token
}

func (s *testServer) uploadImage(name string) string {
	s.t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(s.t, w.WriteField("folder", "services"))
	part, err := w.CreateFormFile("file", name)
	require.NoError(s.t, err)
	_, err = part.Write(pngHeader)
	require.NoError(s.t, err)
	require.NoError(s.t, w.Close())

	rr := s.do(http.MethodPost, "/api/admin/media", &body, w.FormDataContentType())
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeField(s.t, rr, "id")
}

func (s *testServer) mediaStatus(id string) (int, string) {
	s.t.Helper()

	rr := s.do(http.MethodGet, "/api/admin/media/"+id, nil, "")
	if rr.Code != http.StatusOK {
		return rr.Code, ""
	}
	return rr.Code, decodeField(s.t, rr, "status")
}

func decodeField(t *testing.T, rr *httptest.ResponseRecorder, field string) string {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	v, _ := m[field].(string)
	return v
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(http.MethodGet, "/robots.txt", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Sitemap: https://example.com/sitemap.xml")

	rr = s.do(http.MethodGet, "/api/products", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(http.MethodGet, "/api/products/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestAdminRoutesRequireAuthentication(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/api/admin/me", "/api/admin/media", "/api/admin/quotes"} {
		rr := s.do(http.MethodGet, target, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, target)
	}

	rr := s.json(http.MethodPost, "/api/admin/services", `{"title":"Roof Repair"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.json(http.MethodPost, "/api/admin/login", `{"email":"admin@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"invalid email or password"}`, rr.Body.String())
}

func TestMediaLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.login()

	first := s.uploadImage("first.png")
	second := s.uploadImage("second.png")

	code, status := s.mediaStatus(first)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pending", status)

	// Create claims the thumbnail
	rr := s.json(http.MethodPost, "/api/admin/services", `{"title":"Roof Repair","summary":"Leaks fixed","thumbnailId":"`+first+`"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	serviceID := decodeField(t, rr, "id")
	assert.Equal(t, "roof-repair", decodeField(t, rr, "slug"))

	_, status = s.mediaStatus(first)
	assert.Equal(t, "attached", status)

	rr = s.do(http.MethodGet, "/api/services/roof-repair", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	// Referenced media cannot be deleted directly
	rr = s.do(http.MethodDelete, "/api/admin/media/"+first, nil, "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	// A duplicate title is reported against the field
	rr = s.json(http.MethodPost, "/api/admin/services", `{"title":"ROOF repair","thumbnailId":"`+second+`"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "title", decodeField(t, rr, "field"))

	_, status = s.mediaStatus(second)
	assert.Equal(t, "pending", status)

	// Replacing the thumbnail releases the old file
	rr = s.json(http.MethodPatch, "/api/admin/services/"+serviceID, `{"title":"Roof Repair","thumbnailId":"`+second+`"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	code, _ = s.mediaStatus(first)
	assert.Equal(t, http.StatusNotFound, code)
	_, status = s.mediaStatus(second)
	assert.Equal(t, "attached", status)

	// Deleting the entity releases everything it held
	rr = s.do(http.MethodDelete, "/api/admin/services/"+serviceID, nil, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	code, _ = s.mediaStatus(second)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 0, s.host.Len())

	rr = s.do(http.MethodGet, "/api/services/roof-repair", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCookieSessionNeedsCSRFToken(t *testing.T) {
	s := newTestServer(t)

	rr := s.json(http.MethodPost, "/api/admin/login", `{"email":"admin@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	csrf := decodeField(t, rr, "csrfToken")

	var authCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == service.AuthCookieName {
			authCookie = c
		}
	}
	require.NotNil(t, authCookie)

	send := func(withToken bool) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil)
		req.AddCookie(authCookie)
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: csrf})
		if withToken {
			req.Header.Set("X-CSRF-Token", csrf)
		}
		out := httptest.NewRecorder()
		s.handler.ServeHTTP(out, req)
		return out.Code
	}

	assert.Equal(t, http.StatusForbidden, send(false))
	assert.Equal(t, http.StatusNoContent, send(true))
}

func TestLoginRateLimitIgnoresForwardedFor(t *testing.T) {
	s := newTestServer(t)

	codes := make([]int, 0, 6)
	for i := range 6 {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"email":"admin@example.com","password":"guess"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", "198.51.100."+strconv.Itoa(i+1))
		rr := httptest.NewRecorder()
		s.handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{401, 401, 401, 401, 401, 429}, codes)
}

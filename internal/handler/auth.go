package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/templui/showcase/internal/ctxkeys"
	"github.com/templui/showcase/internal/model"
	"github.com/templui/showcase/internal/service"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	CSRFToken string       `json:"csrfToken"`
	Admin     *model.Admin `json:"admin"`
}

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login issues a JWT both in the body, for bearer clients, and as the auth
// cookie, for the browser dashboard. Cookie clients echo csrfToken in the
// X-CSRF-Token header on writes.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	admin, err := h.authService.Login(strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, expiresAt, err := h.authService.GenerateJWT(admin)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.authService.SetJWTCookie(w, token, expiresAt)

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		CSRFToken: ctxkeys.CSRFToken(r.Context()),
		Admin:     admin,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ctxkeys.Admin(r.Context()))
}

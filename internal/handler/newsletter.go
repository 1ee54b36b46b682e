package handler

import (
	"log/slog"
	"net/http"

	"github.com/templui/showcase/internal/service"
	"github.com/templui/showcase/internal/validation"
)

type newsletterRequest struct {
	Email string `json:"email"`
}

type NewsletterHandler struct {
	emailService *service.EmailService
}

func NewNewsletterHandler(emailService *service.EmailService) *NewsletterHandler {
	return &NewsletterHandler{
		emailService: emailService,
	}
}

func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	email, err := validation.NormalizeEmail("email", req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.emailService.SubscribeNewsletter(email)
	if err != nil {
		// Return success to prevent email enumeration
		slog.Warn("newsletter subscription error", "error", err, "email", email)
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "subscribed"})
}

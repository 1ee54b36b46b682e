package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"github.com/templui/showcase/internal/model"
)

var errEmailNotConfigured = errors.New("email service not configured (missing RESEND_API_KEY)")

// EmailService sends quote mail and manages newsletter contacts through
// Resend. In development it only logs what it would have sent.
type EmailService struct {
	client      *resend.Client
	fromEmail   string
	audienceID  string
	notifyEmail string
	isDev       bool
	appURL      string
	appName     string
}

func NewEmailService(apiKey, fromEmail, audienceID, notifyEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:      client,
		fromEmail:   fromEmail,
		audienceID:  audienceID,
		notifyEmail: notifyEmail,
		isDev:       isDev,
		appURL:      appURL,
		appName:     appName,
	}
}

type message struct {
	kind    string
	to      string
	replyTo string
	subject string
	body    string
}

func (s *EmailService) send(ctx context.Context, m message, attrs ...any) error {
	attrs = append([]any{"type", m.kind, "to", m.to}, attrs...)

	if s.isDev {
		slog.Info("email sent (dev mode)", append(attrs, "subject", m.subject)...)
		return nil
	}
	if s.client == nil {
		return errEmailNotConfigured
	}

	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{m.to},
		ReplyTo: m.replyTo,
		Subject: m.subject,
		Text:    m.body,
	})
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", m.kind, err)
	}

	slog.Info("email sent", attrs...)
	return nil
}

// SendQuoteNotification forwards a new quote request to the sales inbox.
// Replies go straight to the visitor.
func (s *EmailService) SendQuoteNotification(ctx context.Context, quote *model.QuoteRequest, serviceTitle string) error {
	dashboardURL := fmt.Sprintf("%s/admin/quotes/%s", s.appURL, quote.ID)
	subject, body := quoteNotificationTemplate(quote, serviceTitle, dashboardURL, s.appName)

	return s.send(ctx, message{
		kind:    "quote_notification",
		to:      s.notifyEmail,
		replyTo: quote.Email,
		subject: subject,
		body:    body,
	}, "quote_id", quote.ID)
}

// SendQuoteConfirmation acknowledges a quote request to the visitor.
func (s *EmailService) SendQuoteConfirmation(ctx context.Context, quote *model.QuoteRequest) error {
	subject, body := quoteConfirmationTemplate(quote.Name, s.appURL, s.appName)

	return s.send(ctx, message{
		kind:    "quote_confirmation",
		to:      quote.Email,
		subject: subject,
		body:    body,
	}, "quote_id", quote.ID)
}

// SubscribeNewsletter adds email to the configured audience. Provider
// failures are logged, not returned, so the response never reveals whether
// an address was already subscribed.
func (s *EmailService) SubscribeNewsletter(email string) error {
	switch {
	case s.isDev:
		slog.Info("newsletter subscription (dev mode)", "email", email)
		return nil
	case s.client == nil:
		return errEmailNotConfigured
	case s.audienceID == "":
		slog.Warn("newsletter subscription requested but no audience configured", "email", email)
		return nil
	}

	_, err := s.client.Contacts.Create(&resend.CreateContactRequest{
		Email:      email,
		AudienceId: s.audienceID,
	})
	if err != nil {
		slog.Warn("newsletter subscription failed", "error", err, "email", email)
		return nil
	}

	slog.Info("newsletter subscription successful", "email", email)
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/showcase/internal/entity"
	"github.com/templui/showcase/internal/model"
	"github.com/templui/showcase/internal/repository"
	"github.com/templui/showcase/internal/validation"
)

const (
	defaultQuoteListLimit = 50
	maxQuoteListLimit     = 200
)

type QuoteInput struct {
	Name      string `json:"name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Company   string `json:"company" validate:"max=150"`
	Phone     string `json:"phone" validate:"max=40"`
	Message   string `json:"message" validate:"required,min=10,max=5000"`
	ServiceID string `json:"serviceId" validate:"omitempty,uuid"`
}

type QuoteService struct {
	quoteRepo    repository.QuoteRepository
	entityRepo   repository.EntityRepository
	emailService *EmailService
}

func NewQuoteService(quoteRepo repository.QuoteRepository, entityRepo repository.EntityRepository, emailService *EmailService) *QuoteService {
	return &QuoteService{
		quoteRepo:    quoteRepo,
		entityRepo:   entityRepo,
		emailService: emailService,
	}
}

// Submit stores a quote request and notifies sales. Notification failures are
// logged and never fail the request.
func (s *QuoteService) Submit(ctx context.Context, in QuoteInput) (*model.QuoteRequest, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Company = strings.TrimSpace(in.Company)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	in.ServiceID = strings.TrimSpace(in.ServiceID)

	err := validation.Struct(in)
	if err != nil {
		return nil, err
	}

	quote := &model.QuoteRequest{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		Company:   in.Company,
		Phone:     in.Phone,
		Message:   in.Message,
		CreatedAt: time.Now().UTC(),
	}

	var serviceTitle string
	if in.ServiceID != "" {
		var svc model.Service
		err = s.entityRepo.Get(ctx, entity.Service, "id", in.ServiceID, &svc)
		if errors.Is(err, repository.ErrEntityNotFound) {
			return nil, validation.Invalid("serviceId", "unknown service")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load service: %w", err)
		}
		quote.ServiceID = &svc.ID
		serviceTitle = svc.Title
	}

	err = s.quoteRepo.Create(ctx, quote)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote request: %w", err)
	}

	err = s.emailService.SendQuoteNotification(ctx, quote, serviceTitle)
	if err != nil {
		slog.Warn("failed to send quote notification", "error", err, "quote_id", quote.ID)
	}
	err = s.emailService.SendQuoteConfirmation(ctx, quote)
	if err != nil {
		slog.Warn("failed to send quote confirmation", "error", err, "quote_id", quote.ID)
	}

	slog.Info("quote request received", "quote_id", quote.ID, "service_id", in.ServiceID)
	return quote, nil
}

func (s *QuoteService) ByID(ctx context.Context, id string) (*model.QuoteRequest, error) {
	return s.quoteRepo.ByID(ctx, id)
}

func (s *QuoteService) List(ctx context.Context, limit, offset int) ([]*model.QuoteRequest, error) {
	if limit <= 0 {
		limit = defaultQuoteListLimit
	}
	if limit > maxQuoteListLimit {
		limit = maxQuoteListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.quoteRepo.List(ctx, limit, offset)
}

func (s *QuoteService) Delete(ctx context.Context, id string) error {
	return s.quoteRepo.Delete(ctx, id)
}

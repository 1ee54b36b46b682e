package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/showcase/internal/model"
)

var (
	ErrQuoteNotFound = errors.New("quote request not found")
)

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.QuoteRequest) error
	ByID(ctx context.Context, id string) (*model.QuoteRequest, error)
	List(ctx context.Context, limit, offset int) ([]*model.QuoteRequest, error)
	Delete(ctx context.Context, id string) error
}

type quoteRepository struct {
	db *sqlx.DB
}

func NewQuoteRepository(db *sqlx.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.QuoteRequest) error {
	query := `INSERT INTO quote_requests (id, name, email, company, phone, message, service_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		quote.ID,
		quote.Name,
		quote.Email,
		quote.Company,
		quote.Phone,
		quote.Message,
		quote.ServiceID,
		quote.CreatedAt,
	)

	return err
}

func (r *quoteRepository) ByID(ctx context.Context, id string) (*model.QuoteRequest, error) {
	quote := &model.QuoteRequest{}
	query := `SELECT * FROM quote_requests WHERE id = $1`

	err := r.db.GetContext(ctx, quote, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}

	return quote, nil
}

func (r *quoteRepository) List(ctx context.Context, limit, offset int) ([]*model.QuoteRequest, error) {
	var quotes []*model.QuoteRequest
	query := `SELECT * FROM quote_requests ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &quotes, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return quotes, nil
}

func (r *quoteRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM quote_requests WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrQuoteNotFound
	}

	return nil
}

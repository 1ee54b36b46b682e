package model

import (
	"time"
)

type QuoteRequest struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Company   string    `db:"company" json:"company"`
	Phone     string    `db:"phone" json:"phone"`
	Message   string    `db:"message" json:"message"`
	ServiceID *string   `db:"service_id" json:"serviceId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

package model

// Admin is the authenticated dashboard operator, rebuilt from JWT claims.
type Admin struct {
	Email string `json:"email"`
}

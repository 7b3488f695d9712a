package users

import (
	"time"

	"github.com/devine-water/devine-water/internal/shared"
)

// Status values for an account. Accounts are never hard-deleted.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User represents a managed account.
type User struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         shared.Role `json:"role"`
	FullName     string      `json:"full_name"`
	Phone        string      `json:"phone,omitempty"`
	Address      string      `json:"address,omitempty"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ListFilters narrows user listings.
type ListFilters struct {
	Role     shared.Role
	Status   string
	Page     int
	PageSize int
}

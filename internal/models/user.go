package models

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the identity provider's account record. The reminder
// engine only reads Email to resolve notification recipients.
type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	DisplayName *string   `json:"display_name" db:"display_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultReminderDays is the lookahead window used when a user has never
// saved a preference, and the value invalid stored preferences clamp to.
const DefaultReminderDays = 7

// UserPreference holds the per-user lookahead window for the interactive
// upcoming-renewals view. The daily batch job does not read it; the batch
// window is a fixed design constant.
type UserPreference struct {
	OwnerID      uuid.UUID `json:"owner_id" db:"owner_id"`
	ReminderDays int       `json:"reminder_days" db:"reminder_days"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is the fixed set of subscription categories plus an open
// "other" bucket for anything unrecognised.
type Category string

const (
	CategoryMusic         Category = "music"
	CategoryEntertainment Category = "entertainment"
	CategoryEducation     Category = "education"
	CategoryFitness       Category = "fitness"
	CategoryProductivity  Category = "productivity"
	CategoryGaming        Category = "gaming"
	CategoryCloudStorage  Category = "cloud_storage"
	CategoryOther         Category = "other"
)

// CategoryOrder is the display order clients group subscriptions by.
var CategoryOrder = []Category{
	CategoryMusic,
	CategoryEntertainment,
	CategoryEducation,
	CategoryFitness,
	CategoryProductivity,
	CategoryGaming,
	CategoryCloudStorage,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMusic, CategoryEntertainment, CategoryEducation,
		CategoryFitness, CategoryProductivity, CategoryGaming,
		CategoryCloudStorage, CategoryOther:
		return true
	}
	return false
}

// NormalizeCategory maps an arbitrary stored value onto the display
// enumeration; anything unknown or blank lands in "other".
func NormalizeCategory(s string) Category {
	c := Category(s)
	if !c.Valid() {
		return CategoryOther
	}
	return c
}

// RecurrenceMonthly is the only renewal cadence modeled. The renew date
// is never auto-advanced; updating it is a manual edit by the owner.
const RecurrenceMonthly = "monthly"

type Subscription struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	OwnerID    uuid.UUID  `json:"owner_id" db:"owner_id"`
	Name       string     `json:"name" db:"name"`
	Cost       float64    `json:"cost" db:"cost"`
	RenewDate  *time.Time `json:"renew_date" db:"renew_date"`
	Category   Category   `json:"category" db:"category"`
	Recurrence string     `json:"recurrence" db:"recurrence"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

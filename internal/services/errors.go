package services

import "errors"

var (
	// ErrNotFound is returned when a mutation or lookup references a
	// record id that does not exist for the calling owner.
	ErrNotFound = errors.New("record not found")

	// ErrStoreUnavailable wraps backing-store transport failures. The
	// interactive path surfaces it as an empty state; the batch path
	// aborts the firing.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidInput is returned for requests that fail validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDeliveryFailed wraps a single email attempt failure. It never
	// aborts sibling notification jobs.
	ErrDeliveryFailed = errors.New("delivery failed")
)

package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"subtrack/internal/models"
	"subtrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PreferenceService manages the per-user reminder-days setting. The
// preference row is created lazily with the default on first read.
type PreferenceService interface {
	GetReminderDays(ctx context.Context, ownerID uuid.UUID) (int, error)
	SetReminderDays(ctx context.Context, ownerID uuid.UUID, days int) error
	Delete(ctx context.Context, ownerID uuid.UUID) error
}

type preferenceService struct {
	preferenceRepo repositories.PreferenceRepository
}

func NewPreferenceService(preferenceRepo repositories.PreferenceRepository) PreferenceService {
	return &preferenceService{preferenceRepo: preferenceRepo}
}

func (s *preferenceService) GetReminderDays(ctx context.Context, ownerID uuid.UUID) (int, error) {
	preference, err := s.preferenceRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// First read for this owner: persist the default.
			preference = &models.UserPreference{OwnerID: ownerID, ReminderDays: models.DefaultReminderDays}
			if upsertErr := s.preferenceRepo.Upsert(ctx, preference); upsertErr != nil {
				log.Printf("Failed to create default preference for owner %s: %v", ownerID.String(), upsertErr)
			}
			return models.DefaultReminderDays, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if preference.ReminderDays <= 0 {
		// Bad stored value; clamp to the default instead of erroring.
		log.Printf("Invalid reminder_days %d for owner %s, using default %d",
			preference.ReminderDays, ownerID.String(), models.DefaultReminderDays)
		return models.DefaultReminderDays, nil
	}
	return preference.ReminderDays, nil
}

func (s *preferenceService) SetReminderDays(ctx context.Context, ownerID uuid.UUID, days int) error {
	if days <= 0 {
		return fmt.Errorf("%w: reminder days must be positive", ErrInvalidInput)
	}
	preference := &models.UserPreference{OwnerID: ownerID, ReminderDays: days}
	if err := s.preferenceRepo.Upsert(ctx, preference); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *preferenceService) Delete(ctx context.Context, ownerID uuid.UUID) error {
	if err := s.preferenceRepo.Delete(ctx, ownerID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

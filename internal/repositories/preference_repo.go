package repositories

import (
	"context"

	"subtrack/internal/models"

	"github.com/google/uuid"
)

type PreferenceRepository interface {
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.UserPreference, error)
	Upsert(ctx context.Context, preference *models.UserPreference) error
	Delete(ctx context.Context, ownerID uuid.UUID) error
}

type preferenceRepo struct {
	db Database
}

func NewPreferenceRepo(db Database) PreferenceRepository {
	return &preferenceRepo{db: db}
}

func (r *preferenceRepo) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.UserPreference, error) {
	preference := &models.UserPreference{}
	query := `
		SELECT owner_id, reminder_days, updated_at
		FROM user_preferences
		WHERE owner_id = $1
	`
	err := r.db.QueryRow(ctx, query, ownerID).Scan(&preference.OwnerID, &preference.ReminderDays, &preference.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return preference, nil
}

func (r *preferenceRepo) Upsert(ctx context.Context, preference *models.UserPreference) error {
	query := `
		INSERT INTO user_preferences (owner_id, reminder_days, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_id) DO UPDATE SET reminder_days = $2, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, preference.OwnerID, preference.ReminderDays)
	return err
}

func (r *preferenceRepo) Delete(ctx context.Context, ownerID uuid.UUID) error {
	query := `DELETE FROM user_preferences WHERE owner_id = $1`
	_, err := r.db.Exec(ctx, query, ownerID)
	return err
}

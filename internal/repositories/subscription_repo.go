package repositories

import (
	"context"
	"time"

	"subtrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of pgxpool.Pool the repositories need. Tests
// substitute a pgxmock pool.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *models.Subscription) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Subscription, error)
	Update(ctx context.Context, subscription *models.Subscription) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Subscription, error)
	ListRenewingBetween(ctx context.Context, from, to time.Time) ([]*models.Subscription, error)
	DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

type subscriptionRepo struct {
	db Database
}

func NewSubscriptionRepo(db Database) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

const subscriptionColumns = `id, owner_id, name, cost, renew_date, category, recurrence, created_at, updated_at`

func (r *subscriptionRepo) Create(ctx context.Context, subscription *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, owner_id, name, cost, renew_date, category, recurrence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, subscription.ID, subscription.OwnerID, subscription.Name,
		subscription.Cost, subscription.RenewDate, subscription.Category, subscription.Recurrence)
	return err
}

func (r *subscriptionRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Subscription, error) {
	subscription := &models.Subscription{}
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE owner_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, ownerID, id).Scan(&subscription.ID, &subscription.OwnerID,
		&subscription.Name, &subscription.Cost, &subscription.RenewDate, &subscription.Category,
		&subscription.Recurrence, &subscription.CreatedAt, &subscription.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return subscription, nil
}

// Update rewrites the mutable fields. OwnerID and CreatedAt never change
// after creation. Returns pgx.ErrNoRows when the id does not exist for
// that owner.
func (r *subscriptionRepo) Update(ctx context.Context, subscription *models.Subscription) error {
	query := `
		UPDATE subscriptions
		SET name = $1, cost = $2, renew_date = $3, category = $4, recurrence = $5, updated_at = NOW()
		WHERE owner_id = $6 AND id = $7
	`
	tag, err := r.db.Exec(ctx, query, subscription.Name, subscription.Cost, subscription.RenewDate,
		subscription.Category, subscription.Recurrence, subscription.OwnerID, subscription.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *subscriptionRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `DELETE FROM subscriptions WHERE owner_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *subscriptionRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE owner_id = $1
		ORDER BY renew_date ASC NULLS LAST, id ASC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

// ListRenewingBetween is the batch-path range query: every subscription,
// regardless of owner, whose renew date falls in [from, to] inclusive.
func (r *subscriptionRepo) ListRenewingBetween(ctx context.Context, from, to time.Time) ([]*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE renew_date >= $1 AND renew_date <= $2
		ORDER BY renew_date ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func (r *subscriptionRepo) DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	query := `DELETE FROM subscriptions WHERE owner_id = $1`
	tag, err := r.db.Exec(ctx, query, ownerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanSubscriptions(rows pgx.Rows) ([]*models.Subscription, error) {
	var subscriptions []*models.Subscription
	for rows.Next() {
		subscription := &models.Subscription{}
		if err := rows.Scan(&subscription.ID, &subscription.OwnerID, &subscription.Name,
			&subscription.Cost, &subscription.RenewDate, &subscription.Category,
			&subscription.Recurrence, &subscription.CreatedAt, &subscription.UpdatedAt); err != nil {
			return nil, err
		}
		subscriptions = append(subscriptions, subscription)
	}
	return subscriptions, rows.Err()
}

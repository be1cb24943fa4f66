package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"subtrack/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SubscriptionRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     SubscriptionRepository
	ownerID1 uuid.UUID
	ownerID2 uuid.UUID
	subID    uuid.UUID
	context  context.Context
}

func (suite *SubscriptionRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewSubscriptionRepo(mock)
	suite.ownerID1 = uuid.New()
	suite.ownerID2 = uuid.New()
	suite.subID = uuid.New()
	suite.context = context.Background()
}

func (suite *SubscriptionRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestSubscriptionRepoTestSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionRepoTestSuite))
}

func (suite *SubscriptionRepoTestSuite) subscriptionRows(subscriptions ...*models.Subscription) *pgxmock.Rows {
	rows := suite.mock.NewRows([]string{"id", "owner_id", "name", "cost", "renew_date", "category", "recurrence", "created_at", "updated_at"})
	for _, subscription := range subscriptions {
		rows.AddRow(subscription.ID, subscription.OwnerID, subscription.Name, subscription.Cost,
			subscription.RenewDate, subscription.Category, subscription.Recurrence,
			subscription.CreatedAt, subscription.UpdatedAt)
	}
	return rows
}

func (suite *SubscriptionRepoTestSuite) TestCreate_Success() {
	renew := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	subscription := &models.Subscription{
		ID:         uuid.New(),
		OwnerID:    suite.ownerID1,
		Name:       "Netflix",
		Cost:       649,
		RenewDate:  &renew,
		Category:   models.CategoryEntertainment,
		Recurrence: models.RecurrenceMonthly,
	}

	suite.mock.ExpectExec(`
		INSERT INTO subscriptions \(id, owner_id, name, cost, renew_date, category, recurrence, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, NOW\(\), NOW\(\)\)
	`).WithArgs(subscription.ID, subscription.OwnerID, subscription.Name, subscription.Cost,
		subscription.RenewDate, subscription.Category, subscription.Recurrence).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, subscription)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionRepoTestSuite) TestGetByID_ScopedToOwner() {
	renew := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	subscription := &models.Subscription{
		ID:         suite.subID,
		OwnerID:    suite.ownerID1,
		Name:       "Spotify",
		Cost:       119,
		RenewDate:  &renew,
		Category:   models.CategoryMusic,
		Recurrence: models.RecurrenceMonthly,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	suite.mock.ExpectQuery(`SELECT id, owner_id, name, cost, renew_date, category, recurrence, created_at, updated_at
		FROM subscriptions
		WHERE owner_id = \$1 AND id = \$2`).
		WithArgs(suite.ownerID1, suite.subID).
		WillReturnRows(suite.subscriptionRows(subscription))

	found, err := suite.repo.GetByID(suite.context, suite.ownerID1, suite.subID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), subscription.Name, found.Name)
	assert.Equal(suite.T(), suite.ownerID1, found.OwnerID)
}

func (suite *SubscriptionRepoTestSuite) TestGetByID_OtherOwnerNotVisible() {
	suite.mock.ExpectQuery(`SELECT id, owner_id, name, cost, renew_date, category, recurrence, created_at, updated_at
		FROM subscriptions
		WHERE owner_id = \$1 AND id = \$2`).
		WithArgs(suite.ownerID2, suite.subID).
		WillReturnError(pgx.ErrNoRows)

	found, err := suite.repo.GetByID(suite.context, suite.ownerID2, suite.subID)
	assert.Nil(suite.T(), found)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
}

func (suite *SubscriptionRepoTestSuite) TestUpdate_NonExistentIDReturnsNoRows() {
	subscription := &models.Subscription{
		ID:         suite.subID,
		OwnerID:    suite.ownerID1,
		Name:       "Gone",
		Category:   models.CategoryOther,
		Recurrence: models.RecurrenceMonthly,
	}

	suite.mock.ExpectExec(`
		UPDATE subscriptions
		SET name = \$1, cost = \$2, renew_date = \$3, category = \$4, recurrence = \$5, updated_at = NOW\(\)
		WHERE owner_id = \$6 AND id = \$7
	`).WithArgs(subscription.Name, subscription.Cost, subscription.RenewDate,
		subscription.Category, subscription.Recurrence, subscription.OwnerID, subscription.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.Update(suite.context, subscription)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
}

func (suite *SubscriptionRepoTestSuite) TestDelete_Success() {
	suite.mock.ExpectExec(`DELETE FROM subscriptions WHERE owner_id = \$1 AND id = \$2`).
		WithArgs(suite.ownerID1, suite.subID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, suite.ownerID1, suite.subID)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionRepoTestSuite) TestListRenewingBetween_PassesInclusiveBounds() {
	from := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC).Add(-time.Millisecond)

	renew := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	match := &models.Subscription{
		ID:         uuid.New(),
		OwnerID:    suite.ownerID1,
		Name:       "Netflix",
		RenewDate:  &renew,
		Category:   models.CategoryEntertainment,
		Recurrence: models.RecurrenceMonthly,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	suite.mock.ExpectQuery(`SELECT id, owner_id, name, cost, renew_date, category, recurrence, created_at, updated_at
		FROM subscriptions
		WHERE renew_date >= \$1 AND renew_date <= \$2`).
		WithArgs(from, to).
		WillReturnRows(suite.subscriptionRows(match))

	matches, err := suite.repo.ListRenewingBetween(suite.context, from, to)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), matches, 1)
	assert.Equal(suite.T(), "Netflix", matches[0].Name)
}

func (suite *SubscriptionRepoTestSuite) TestListRenewingBetween_QueryError() {
	from := time.Now()
	to := from.AddDate(0, 0, 2)

	suite.mock.ExpectQuery(`SELECT id, owner_id, name, cost, renew_date, category, recurrence, created_at, updated_at
		FROM subscriptions
		WHERE renew_date >= \$1 AND renew_date <= \$2`).
		WithArgs(from, to).
		WillReturnError(errors.New("connection refused"))

	matches, err := suite.repo.ListRenewingBetween(suite.context, from, to)
	assert.Nil(suite.T(), matches)
	assert.Error(suite.T(), err)
}

func (suite *SubscriptionRepoTestSuite) TestDeleteAllByOwner_ReportsCount() {
	suite.mock.ExpectExec(`DELETE FROM subscriptions WHERE owner_id = \$1`).
		WithArgs(suite.ownerID1).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	deleted, err := suite.repo.DeleteAllByOwner(suite.context, suite.ownerID1)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), deleted)
}

func (suite *SubscriptionRepoTestSuite) TestRenewDateRoundTrip() {
	// A calendar date stored at midnight UTC must come back unshifted.
	renew := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	subscription := &models.Subscription{
		ID:         suite.subID,
		OwnerID:    suite.ownerID1,
		Name:       "Gym",
		RenewDate:  &renew,
		Category:   models.CategoryFitness,
		Recurrence: models.RecurrenceMonthly,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	suite.mock.ExpectQuery(`SELECT id, owner_id, name, cost, renew_date, category, recurrence, created_at, updated_at
		FROM subscriptions
		WHERE owner_id = \$1 AND id = \$2`).
		WithArgs(suite.ownerID1, suite.subID).
		WillReturnRows(suite.subscriptionRows(subscription))

	found, err := suite.repo.GetByID(suite.context, suite.ownerID1, suite.subID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), found.RenewDate.Equal(renew))
	assert.Equal(suite.T(), 2024, found.RenewDate.Year())
	assert.Equal(suite.T(), time.July, found.RenewDate.Month())
	assert.Equal(suite.T(), 31, found.RenewDate.Day())
}

package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// AccountService handles account removal: delete every subscription the
// user owns, then the preference row. The identity record itself belongs
// to the external auth collaborator.
type AccountService interface {
	DeleteAccountData(ctx context.Context, ownerID uuid.UUID) error
}

type accountService struct {
	subscriptionSvc SubscriptionService
	preferenceSvc   PreferenceService
}

func NewAccountService(subscriptionSvc SubscriptionService, preferenceSvc PreferenceService) AccountService {
	return &accountService{
		subscriptionSvc: subscriptionSvc,
		preferenceSvc:   preferenceSvc,
	}
}

func (s *accountService) DeleteAccountData(ctx context.Context, ownerID uuid.UUID) error {
	deleted, err := s.subscriptionSvc.DeleteAll(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete subscriptions: %w", err)
	}
	log.Printf("Deleted %d subscriptions for owner %s", deleted, ownerID.String())

	if err := s.preferenceSvc.Delete(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to delete preferences: %w", err)
	}
	return nil
}

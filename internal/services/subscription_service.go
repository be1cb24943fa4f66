package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"subtrack/internal/caching"
	"subtrack/internal/models"
	"subtrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ownerListCacheTTL = 5 * time.Minute

// SubscriptionInput carries the owner-editable fields of a subscription.
// RenewDate is a calendar date in YYYY-MM-DD form.
type SubscriptionInput struct {
	Name      string  `json:"name"`
	Cost      float64 `json:"cost"`
	RenewDate string  `json:"renew_date"`
	Category  string  `json:"category"`
}

// SubscriptionService owns subscription CRUD, the cached per-owner list,
// and the live watch feed.
type SubscriptionService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input SubscriptionInput) (*models.Subscription, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Subscription, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input SubscriptionInput) (*models.Subscription, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, search string) ([]*models.Subscription, error)
	DeleteAll(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// Watch delivers the owner's current subscription set immediately and
	// again after every change, until the cancel func is called. Delivery
	// is at-least-once per logical change; a slow consumer sees the most
	// recent set rather than blocking the feed.
	Watch(ctx context.Context, ownerID uuid.UUID) (<-chan []*models.Subscription, func())
}

type subscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
	cacheSvc         caching.CacheService
}

func NewSubscriptionService(subscriptionRepo repositories.SubscriptionRepository, cacheSvc caching.CacheService) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		cacheSvc:         cacheSvc,
	}
}

func (s *subscriptionService) validate(input SubscriptionInput) (*time.Time, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.Cost < 0 {
		return nil, fmt.Errorf("%w: cost cannot be negative", ErrInvalidInput)
	}
	if input.Category != "" && !models.Category(input.Category).Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, input.Category)
	}

	if strings.TrimSpace(input.RenewDate) == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", input.RenewDate)
	if err != nil {
		return nil, fmt.Errorf("%w: renew date must be YYYY-MM-DD", ErrInvalidInput)
	}
	// Stored at midnight UTC so the calendar date survives the storage
	// round-trip regardless of server timezone.
	renew := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	return &renew, nil
}

func (s *subscriptionService) Create(ctx context.Context, ownerID uuid.UUID, input SubscriptionInput) (*models.Subscription, error) {
	renewDate, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	subscription := &models.Subscription{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Name:       strings.TrimSpace(input.Name),
		Cost:       input.Cost,
		RenewDate:  renewDate,
		Category:   models.NormalizeCategory(input.Category),
		Recurrence: models.RecurrenceMonthly,
	}

	if err := s.subscriptionRepo.Create(ctx, subscription); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.afterMutation(ctx, ownerID)
	return subscription, nil
}

func (s *subscriptionService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Subscription, error) {
	subscription, err := s.subscriptionRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return subscription, nil
}

func (s *subscriptionService) Update(ctx context.Context, ownerID, id uuid.UUID, input SubscriptionInput) (*models.Subscription, error) {
	renewDate, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	subscription := &models.Subscription{
		ID:         id,
		OwnerID:    ownerID,
		Name:       strings.TrimSpace(input.Name),
		Cost:       input.Cost,
		RenewDate:  renewDate,
		Category:   models.NormalizeCategory(input.Category),
		Recurrence: models.RecurrenceMonthly,
	}

	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.afterMutation(ctx, ownerID)
	return subscription, nil
}

func (s *subscriptionService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.subscriptionRepo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.afterMutation(ctx, ownerID)
	return nil
}

func (s *subscriptionService) List(ctx context.Context, ownerID uuid.UUID, search string) ([]*models.Subscription, error) {
	subscriptions, err := s.cacheSvc.GetOwnerSubscriptions(ctx, ownerID)
	if err != nil {
		log.Printf("Cache read failed for owner %s: %v", ownerID.String(), err)
	}

	if subscriptions == nil {
		subscriptions, err = s.subscriptionRepo.ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if cacheErr := s.cacheSvc.SetOwnerSubscriptions(ctx, ownerID, subscriptions, ownerListCacheTTL); cacheErr != nil {
			log.Printf("Cache write failed for owner %s: %v", ownerID.String(), cacheErr)
		}
	}

	if search = strings.TrimSpace(search); search != "" {
		needle := strings.ToLower(search)
		filtered := make([]*models.Subscription, 0, len(subscriptions))
		for _, subscription := range subscriptions {
			if strings.Contains(strings.ToLower(subscription.Name), needle) {
				filtered = append(filtered, subscription)
			}
		}
		subscriptions = filtered
	}
	return subscriptions, nil
}

func (s *subscriptionService) DeleteAll(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	deleted, err := s.subscriptionRepo.DeleteAllByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.afterMutation(ctx, ownerID)
	return deleted, nil
}

func (s *subscriptionService) Watch(ctx context.Context, ownerID uuid.UUID) (<-chan []*models.Subscription, func()) {
	events, cancelFeed := s.cacheSvc.SubscribeChanges(ctx, ownerID)
	out := make(chan []*models.Subscription, 1)
	done := make(chan struct{})

	deliver := func() {
		subscriptions, err := s.subscriptionRepo.ListByOwner(ctx, ownerID)
		if err != nil {
			// Interactive path: surface an empty set rather than crashing
			// the consumer.
			log.Printf("Watch query failed for owner %s: %v", ownerID.String(), err)
			subscriptions = nil
		}
		// Latest-wins delivery so a slow consumer never blocks the feed.
		select {
		case out <- subscriptions:
		default:
			select {
			case <-out:
			default:
			}
			out <- subscriptions
		}
	}

	go func() {
		defer close(out)
		deliver() // current set first, then on every change
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				deliver()
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			cancelFeed()
		})
	}
	return out, cancel
}

func (s *subscriptionService) afterMutation(ctx context.Context, ownerID uuid.UUID) {
	if err := s.cacheSvc.InvalidateOwner(ctx, ownerID); err != nil {
		log.Printf("Cache invalidation failed for owner %s: %v", ownerID.String(), err)
	}
	if err := s.cacheSvc.PublishChange(ctx, ownerID); err != nil {
		log.Printf("Change publish failed for owner %s: %v", ownerID.String(), err)
	}
}

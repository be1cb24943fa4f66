package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"subtrack/internal/models"
	"subtrack/internal/repositories"
	"subtrack/internal/services"
)

// renewDateFormat matches the human-readable date used in reminder
// emails, calendar date only, no time-of-day.
const renewDateFormat = "Mon Jan 02 2006"

const maxConcurrentDeliveries = 5

// RenewalReminderService runs the daily reminder firing: query every
// subscription renewing inside the fixed batch window and send one email
// per match. Each firing is an independent unit of work; nothing records
// that a reminder was already sent, so a renewal can legitimately be
// reminded on two consecutive calendar days.
type RenewalReminderService struct {
	subscriptionRepo repositories.SubscriptionRepository
	userRepo         repositories.UserRepository
	mailer           services.Mailer
	location         *time.Location
}

func NewRenewalReminderService(subscriptionRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository, mailer services.Mailer,
	location *time.Location) *RenewalReminderService {

	return &RenewalReminderService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		mailer:           mailer,
		location:         location,
	}
}

// Run executes one firing against the wall clock. Scheduled by the
// background job scheduler once per day.
func (s *RenewalReminderService) Run(ctx context.Context) error {
	attempted, failed, err := s.RunAt(ctx, time.Now())
	if err != nil {
		return err
	}
	log.Printf("Renewal reminders sent: %d attempted, %d failed", attempted, failed)
	return nil
}

// RunAt executes one firing as if the trigger fired at the given
// instant. A store-query failure aborts the whole firing; a single
// delivery failure is logged and never stops sibling deliveries.
func (s *RenewalReminderService) RunAt(ctx context.Context, now time.Time) (attempted, failed int, err error) {
	from, to := BatchWindow(now, s.location)

	matches, err := s.subscriptionRepo.ListRenewingBetween(ctx, from, to)
	if err != nil {
		log.Printf("Renewal reminder query failed: %v", err)
		return 0, 0, fmt.Errorf("failed to query renewals in [%s, %s]: %w",
			from.Format(time.RFC3339), to.Format(time.RFC3339), err)
	}

	if len(matches) == 0 {
		return 0, 0, nil
	}

	semaphore := make(chan struct{}, maxConcurrentDeliveries)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, match := range matches {
		wg.Add(1)
		go func(subscription *models.Subscription) {
			defer wg.Done()
			semaphore <- struct{}{} // Acquire
			defer func() { <-semaphore }() // Release

			if deliveryErr := s.notify(ctx, subscription); deliveryErr != nil {
				log.Printf("Failed to send reminder for subscription %s: %v", subscription.ID.String(), deliveryErr)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(match)
	}

	wg.Wait()
	return len(matches), failed, nil
}

// notify builds and dispatches exactly one email attempt for a matched
// subscription. The recipient comes from the owning user's account, not
// the subscription record.
func (s *RenewalReminderService) notify(ctx context.Context, subscription *models.Subscription) error {
	owner, err := s.userRepo.GetByID(ctx, subscription.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to resolve owner %s: %w", subscription.OwnerID.String(), err)
	}

	when := "soon"
	if subscription.RenewDate != nil {
		when = subscription.RenewDate.In(s.location).Format(renewDateFormat)
	}

	message := services.EmailMessage{
		To:      owner.Email,
		Subject: fmt.Sprintf("Reminder: %s renews on %s", subscription.Name, when),
		Text:    fmt.Sprintf("Hi! Your %s renews on %s.", subscription.Name, when),
		HTML:    fmt.Sprintf("<p>Hi! Your <b>%s</b> renews on <b>%s</b>.</p>", subscription.Name, when),
	}
	return s.mailer.Send(ctx, message)
}

package jobs

import (
	"sort"
	"time"

	"subtrack/internal/models"
)

// Batch window offsets, in calendar days from local midnight of the day
// the job fires. Renewals landing exactly 2 or 3 days out are matched;
// days 0, 1 and 4+ are excluded by construction. These are independent
// of any user's reminder-days preference and must stay that way.
const (
	batchWindowStartDays = 2
	batchWindowEndDays   = 4
)

// Upcoming returns the subscriptions whose renew date falls inside
// [now, now+lookaheadDays] inclusive. The limit is computed with
// calendar arithmetic, so adding days preserves time-of-day and crosses
// month and year boundaries correctly. A negative lookahead clamps to
// zero. Subscriptions with no renew date are excluded, never an error.
// Result order is unspecified; use SortByRenewDate when display order
// matters.
func Upcoming(subscriptions []*models.Subscription, now time.Time, lookaheadDays int) []*models.Subscription {
	if lookaheadDays < 0 {
		lookaheadDays = 0
	}
	limit := now.AddDate(0, 0, lookaheadDays)

	var matched []*models.Subscription
	for _, subscription := range subscriptions {
		if subscription.RenewDate == nil {
			continue
		}
		renew := *subscription.RenewDate
		if renew.Before(now) || renew.After(limit) {
			continue
		}
		matched = append(matched, subscription)
	}
	return matched
}

// SortByRenewDate orders subscriptions by ascending renew date, ties
// broken by id so the order is deterministic. Entries without a renew
// date sort last.
func SortByRenewDate(subscriptions []*models.Subscription) {
	sort.SliceStable(subscriptions, func(i, j int) bool {
		a, b := subscriptions[i].RenewDate, subscriptions[j].RenewDate
		switch {
		case a == nil && b == nil:
			return subscriptions[i].ID.String() < subscriptions[j].ID.String()
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return subscriptions[i].ID.String() < subscriptions[j].ID.String()
		default:
			return a.Before(*b)
		}
	})
}

// BatchWindow computes the fixed reminder window for a firing at the
// given instant: [dayStart+2d, dayStart+4d - 1ms], where dayStart is
// midnight of that day in loc. Both bounds are inclusive.
func BatchWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	from := dayStart.AddDate(0, 0, batchWindowStartDays)
	to := dayStart.AddDate(0, 0, batchWindowEndDays).Add(-time.Millisecond)
	return from, to
}

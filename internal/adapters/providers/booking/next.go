package booking

import (
	"context"
	"time"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/domain/providers"
)

// findNext fetches [today, today+daysToScan-1] and returns the earliest slot.
// An unusable timezone falls back to UTC for picking today; the fetch itself
// reports the misconfiguration.
func findNext(ctx context.Context, adapter providers.BookingAdapter, now time.Time, tz, accountID string, daysToScan int, cfg entities.ProviderConfig) (*entities.Slot, error) {
	if daysToScan <= 0 {
		daysToScan = entities.DefaultDaysToScan
	}
	if daysToScan > MaxRangeDays {
		daysToScan = MaxRangeDays
	}

	loc, err := loadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	today := entities.DateOf(now.In(loc))

	slots, err := adapter.FetchAvailableSlots(ctx, providers.SlotQuery{
		AccountID: accountID,
		StartDate: today,
		EndDate:   today.AddDays(daysToScan - 1),
		Config:    cfg,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	return earliest(slots), nil
}

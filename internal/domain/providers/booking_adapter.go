package providers

import (
	"context"
	"time"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
)

// SlotQuery describes one availability request against a provider account
type SlotQuery struct {
	AccountID string
	// StartDate and EndDate bound an inclusive range of calendar days.
	StartDate entities.Date
	EndDate   entities.Date
	Config    entities.ProviderConfig
	// Now is the reference instant for discarding past slots. Zero means the
	// moment the call was issued.
	Now time.Time
}

// BookingAdapter defines the interface for third-party clinic booking systems
// (Carefiniti, Ocean, etc.). Implementations must be safe for concurrent use.
type BookingAdapter interface {
	// Name returns the provider name the adapter is registered under
	Name() string

	// FetchAvailableSlots returns future slots for every day in the query range.
	// A day the provider fails to answer contributes no slots.
	FetchAvailableSlots(ctx context.Context, q SlotQuery) ([]entities.Slot, error)

	// FindNextAvailableSlot returns the earliest future slot in the next
	// daysToScan days, or nil when there is none.
	FindNextAvailableSlot(ctx context.Context, accountID string, daysToScan int, cfg entities.ProviderConfig) (*entities.Slot, error)
}

// AdapterResolver looks up a booking adapter by provider name
type AdapterResolver interface {
	Resolve(name string) (BookingAdapter, bool)
}

package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/domain/providers"
)

// MockName is the provider name of the development adapter
const MockName = "mock"

type mockOpening struct {
	hour, minute int
	modality     entities.Modality
}

var mockOpenings = []mockOpening{
	{9, 0, entities.ModalityInPerson},
	{9, 30, entities.ModalityInPerson},
	{11, 0, entities.ModalityPhone},
	{14, 0, entities.ModalityVideo},
	{16, 30, entities.ModalityInPerson},
}

// MockAdapter provides deterministic availability for local development.
type MockAdapter struct {
	slotDuration time.Duration
	timezone     string
	clock        func() time.Time
}

// NewMockAdapter creates a mock booking provider
func NewMockAdapter(clock func() time.Time) *MockAdapter {
	if clock == nil {
		clock = time.Now
	}
	return &MockAdapter{
		slotDuration: 15 * time.Minute,
		timezone:     defaultProviderTimezone,
		clock:        clock,
	}
}

// Name returns the provider name
func (m *MockAdapter) Name() string {
	return MockName
}

// FetchAvailableSlots returns the same openings for every day in the range
func (m *MockAdapter) FetchAvailableSlots(ctx context.Context, q providers.SlotQuery) ([]entities.Slot, error) {
	days, err := validateRange(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc, err := loadLocation(q.Config.StringOr("timezone", m.timezone))
	if err != nil {
		loc = time.UTC
	}
	now := q.Now
	if now.IsZero() {
		now = m.clock()
	}

	slots := make([]entities.Slot, 0, len(days)*len(mockOpenings))
	for _, day := range days {
		for _, o := range mockOpenings {
			start := time.Date(day.Year, day.Month, day.Day, o.hour, o.minute, 0, 0, loc)
			id := fmt.Sprintf("mock-%s-%s-%02d%02d", q.AccountID, day, o.hour, o.minute)
			slots = append(slots, entities.Slot{
				StartTime:      start,
				EndTime:        start.Add(m.slotDuration),
				Modality:       o.modality,
				ProviderSlotID: id,
				BookingURL:     "https://example.com/booking/" + id,
			})
		}
	}
	return filterFuture(slots, now), nil
}

// FindNextAvailableSlot returns the next mock opening
func (m *MockAdapter) FindNextAvailableSlot(ctx context.Context, accountID string, daysToScan int, cfg entities.ProviderConfig) (*entities.Slot, error) {
	return findNext(ctx, m, m.clock(), cfg.StringOr("timezone", m.timezone), accountID, daysToScan, cfg)
}

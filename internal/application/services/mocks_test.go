package services_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/domain/providers"
	"github.com/woodsxwu/WalkInNow/internal/domain/repositories"
)

// Mocks

type MockBookingAdapter struct {
	mock.Mock
}

func (m *MockBookingAdapter) Name() string {
	return "mockprovider"
}

func (m *MockBookingAdapter) FetchAvailableSlots(ctx context.Context, q providers.SlotQuery) ([]entities.Slot, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Slot), args.Error(1)
}

func (m *MockBookingAdapter) FindNextAvailableSlot(ctx context.Context, accountID string, daysToScan int, cfg entities.ProviderConfig) (*entities.Slot, error) {
	args := m.Called(ctx, accountID, daysToScan, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Slot), args.Error(1)
}

// dayAdapter answers FetchAvailableSlots from a per-day function and records
// every query it receives
type dayAdapter struct {
	byDay func(ctx context.Context, q providers.SlotQuery) ([]entities.Slot, error)

	mu      sync.Mutex
	queries []providers.SlotQuery
}

func (a *dayAdapter) Name() string {
	return "dayprovider"
}

func (a *dayAdapter) FetchAvailableSlots(ctx context.Context, q providers.SlotQuery) ([]entities.Slot, error) {
	a.mu.Lock()
	a.queries = append(a.queries, q)
	a.mu.Unlock()
	return a.byDay(ctx, q)
}

func (a *dayAdapter) FindNextAvailableSlot(ctx context.Context, accountID string, daysToScan int, cfg entities.ProviderConfig) (*entities.Slot, error) {
	return nil, nil
}

func (a *dayAdapter) recorded() []providers.SlotQuery {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]providers.SlotQuery(nil), a.queries...)
}

type MockClinicRepository struct {
	mock.Mock
}

func (m *MockClinicRepository) GetByID(ctx context.Context, id string) (*entities.Clinic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Clinic), args.Error(1)
}

func (m *MockClinicRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Clinic, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Clinic), args.Error(1)
}

func (m *MockClinicRepository) List(ctx context.Context, filter repositories.ClinicFilter) ([]*entities.Clinic, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Clinic), args.Error(1)
}

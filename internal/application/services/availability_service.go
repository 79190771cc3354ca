package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/domain/providers"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
	"github.com/woodsxwu/WalkInNow/pkg/config"
)

// AvailabilitySettings bounds aggregator queries
type AvailabilitySettings struct {
	DaysToScan        int
	MaxDaysToScan     int
	CalendarDays      int
	MaxCalendarDays   int
	ClinicConcurrency int
}

// AvailabilitySettingsFromConfig maps booking config onto aggregator settings
func AvailabilitySettingsFromConfig(cfg config.BookingConfig) AvailabilitySettings {
	return AvailabilitySettings{
		DaysToScan:        cfg.DaysToScan,
		MaxDaysToScan:     cfg.MaxDaysToScan,
		CalendarDays:      cfg.CalendarDays,
		MaxCalendarDays:   cfg.MaxCalendarDays,
		ClinicConcurrency: cfg.ClinicConcurrency,
	}
}

func (s AvailabilitySettings) withDefaults() AvailabilitySettings {
	if s.DaysToScan <= 0 {
		s.DaysToScan = entities.DefaultDaysToScan
	}
	if s.MaxDaysToScan <= 0 {
		s.MaxDaysToScan = 60
	}
	if s.CalendarDays <= 0 {
		s.CalendarDays = 7
	}
	if s.MaxCalendarDays <= 0 {
		s.MaxCalendarDays = 31
	}
	if s.ClinicConcurrency <= 0 {
		s.ClinicConcurrency = 8
	}
	return s
}

// AvailabilityService turns a clinic's booking configuration into normalized
// availability. Its operations never return an error: a clinic without an
// integration, a failing provider and a provider with no openings all look
// the same to callers and are told apart through logs and metrics.
type AvailabilityService struct {
	resolver providers.AdapterResolver
	settings AvailabilitySettings
	clock    func() time.Time
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(resolver providers.AdapterResolver, settings AvailabilitySettings) *AvailabilityService {
	return &AvailabilityService{
		resolver: resolver,
		settings: settings.withDefaults(),
		clock:    time.Now,
	}
}

// WithClock replaces the time source
func (s *AvailabilityService) WithClock(clock func() time.Time) *AvailabilityService {
	s.clock = clock
	return s
}

// Settings returns the effective query bounds
func (s *AvailabilityService) Settings() AvailabilitySettings {
	return s.settings
}

func (s *AvailabilityService) resolve(ctx context.Context, bc entities.BookingConfig) (providers.BookingAdapter, zerolog.Logger, bool) {
	logger := observability.LoggerFromContext(ctx).With().
		Str("clinic_id", bc.ClinicID).
		Str("provider", bc.ProviderName).
		Str("account_id", bc.ProviderAccountID).
		Logger()

	if !bc.HasIntegration() {
		return nil, logger, false
	}

	adapter, ok := s.resolver.Resolve(bc.ProviderName)
	if !ok {
		logger.Warn().Msg("no booking adapter registered for provider")
		return nil, logger, false
	}
	return adapter, logger, true
}

// GetNextAvailableSlot returns the clinic's earliest future slot, or nil
func (s *AvailabilityService) GetNextAvailableSlot(ctx context.Context, bc entities.BookingConfig) (next *entities.Slot) {
	now := s.clock()
	adapter, logger, ok := s.resolve(ctx, bc)
	if !ok {
		return nil
	}

	days := bc.DaysToScan
	if days <= 0 {
		days = s.settings.DaysToScan
	}
	bc.DaysToScan = days
	days = bc.ScanDays(s.settings.MaxDaysToScan)

	ctx, span := observability.StartSpan(ctx, "availability.next_slot",
		attribute.String("clinic.id", bc.ClinicID),
		attribute.String("booking.provider", adapter.Name()),
		attribute.Int("booking.days_to_scan", days),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("booking adapter panicked while finding next slot")
			next = nil
		}
	}()

	slot, err := adapter.FindNextAvailableSlot(ctx, bc.ProviderAccountID, days, bc.ProviderConfig)
	if err != nil {
		observability.RecordError(span, err)
		logFetchError(logger, err, "failed to find next available slot")
		return nil
	}
	if slot == nil || !slot.IsAfter(now) {
		return nil
	}

	found := *slot
	return &found
}

// GetSlotsForCalendarWindow returns the clinic's future slots for each day in
// [windowStart, windowStart+windowLengthDays-1], grouped by modality. Days
// without availability are omitted. A cancelled ctx yields an empty window.
func (s *AvailabilityService) GetSlotsForCalendarWindow(ctx context.Context, bc entities.BookingConfig, windowStart entities.Date, windowLengthDays int) entities.CalendarWindow {
	window := entities.CalendarWindow{}
	now := s.clock()

	adapter, logger, ok := s.resolve(ctx, bc)
	if !ok {
		return window
	}

	if windowStart.IsZero() {
		windowStart = entities.DateOf(now.UTC())
	}
	if windowLengthDays <= 0 {
		windowLengthDays = s.settings.CalendarDays
	}
	if windowLengthDays > s.settings.MaxCalendarDays {
		windowLengthDays = s.settings.MaxCalendarDays
	}
	days := entities.Range(windowStart, windowStart.AddDays(windowLengthDays-1))

	ctx, span := observability.StartSpan(ctx, "availability.calendar_window",
		attribute.String("clinic.id", bc.ClinicID),
		attribute.String("booking.provider", adapter.Name()),
		attribute.String("booking.window_start", windowStart.String()),
		attribute.Int("booking.window_days", windowLengthDays),
	)
	defer span.End()

	results := make([][]entities.Slot, len(days))
	var wg sync.WaitGroup
	for i, day := range days {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.fetchDay(ctx, logger, adapter, bc, day, now)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		observability.RecordError(span, err)
		logger.Debug().Err(err).Msg("calendar window abandoned")
		return entities.CalendarWindow{}
	}

	for i, day := range days {
		ds := entities.NewDaySlots()
		for _, slot := range results[i] {
			if !slot.IsAfter(now) {
				continue
			}
			if !ds.Add(slot) {
				logger.Debug().Str("modality", string(slot.Modality)).Msg("dropping slot with unsupported modality")
			}
		}
		if ds.Len() == 0 {
			continue
		}
		sortByStart(ds.InPerson)
		sortByStart(ds.Phone)
		sortByStart(ds.Video)
		window[day.String()] = ds
	}
	return window
}

func (s *AvailabilityService) fetchDay(ctx context.Context, logger zerolog.Logger, adapter providers.BookingAdapter, bc entities.BookingConfig, day entities.Date, now time.Time) (slots []entities.Slot) {
	dayLogger := logger.With().Str("date", day.String()).Logger()
	defer func() {
		if r := recover(); r != nil {
			dayLogger.Error().Interface("panic", r).Msg("booking adapter panicked while fetching day")
			slots = nil
		}
	}()

	slots, err := adapter.FetchAvailableSlots(ctx, providers.SlotQuery{
		AccountID: bc.ProviderAccountID,
		StartDate: day,
		EndDate:   day,
		Config:    bc.ProviderConfig,
		Now:       now,
	})
	if err != nil {
		logFetchError(dayLogger, err, "failed to fetch day slots")
		return nil
	}
	return slots
}

// GetNextAvailableSlots finds next slots for many clinics concurrently.
// Clinics without a slot are absent from the result. A cancelled ctx yields
// an empty map.
func (s *AvailabilityService) GetNextAvailableSlots(ctx context.Context, configs []entities.BookingConfig) map[string]*entities.Slot {
	result := make(map[string]*entities.Slot, len(configs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.settings.ClinicConcurrency)

	for _, bc := range configs {
		if !bc.HasIntegration() {
			continue
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return map[string]*entities.Slot{}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			slot := s.GetNextAvailableSlot(ctx, bc)
			if slot == nil {
				return
			}
			mu.Lock()
			result[bc.ClinicID] = slot
			mu.Unlock()
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return map[string]*entities.Slot{}
	}
	return result
}

func sortByStart(slots []entities.Slot) {
	slices.SortStableFunc(slots, func(a, b entities.Slot) int {
		return a.StartTime.Compare(b.StartTime)
	})
}

func logFetchError(logger zerolog.Logger, err error, msg string) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Debug().Err(err).Msg(msg)
		return
	}
	logger.Warn().Err(err).Msg(msg)
}

package booking

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
)

const (
	defaultRequestTimeout = 8 * time.Second
	defaultDayConcurrency = 7

	// MaxRangeDays bounds a single FetchAvailableSlots call
	MaxRangeDays = 92

	maxResponseBytes = 4 << 20
)

// ErrInvalidRange is returned when a slot query's dates are missing or reversed
var ErrInvalidRange = errors.New("invalid date range")

var errUnknownTimezone = errors.New("unknown timezone")

// Options carries the runtime dependencies shared by the HTTP adapters
type Options struct {
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	DayConcurrency int
	Metrics        *observability.Metrics
	// Clock returns the current instant; tests pin it.
	Clock func() time.Time
}

func (o Options) withDefaults() Options {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = defaultRequestTimeout
	}
	if o.DayConcurrency <= 0 {
		o.DayConcurrency = defaultDayConcurrency
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.RequestTimeout}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

func (o Options) now(ref time.Time) time.Time {
	if !ref.IsZero() {
		return ref
	}
	return o.Clock()
}

func validateRange(start, end entities.Date) ([]entities.Date, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidRange)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", ErrInvalidRange, end, start)
	}
	if n := start.DaysUntil(end) + 1; n > MaxRangeDays {
		return nil, fmt.Errorf("%w: %d days exceeds the %d day limit", ErrInvalidRange, n, MaxRangeDays)
	}
	return entities.Range(start, end), nil
}

func loadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", errUnknownTimezone, name, err)
	}
	return loc, nil
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseProviderTime parses a provider timestamp. Values without an offset are
// read as wall-clock time in loc.
func parseProviderTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func filterFuture(slots []entities.Slot, now time.Time) []entities.Slot {
	out := slots[:0:0]
	for _, s := range slots {
		if s.IsAfter(now) {
			out = append(out, s)
		}
	}
	return out
}

// earliest returns the slot with the smallest start time. Ties keep the first
// slot in input order.
func earliest(slots []entities.Slot) *entities.Slot {
	if len(slots) == 0 {
		return nil
	}
	best := slots[0]
	for _, s := range slots[1:] {
		if s.StartTime.Before(best.StartTime) {
			best = s
		}
	}
	return &best
}

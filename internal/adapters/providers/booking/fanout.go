package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
)

type fetchFunc func(ctx context.Context) ([]entities.Slot, error)

// fetcher runs provider calls with a per-call timeout, tracing and metrics.
// A failed call is logged and contributes no slots.
type fetcher struct {
	provider string
	opts     Options
}

// days fetches every day concurrently, bounded by DayConcurrency. Results keep
// day order. Cancellation of ctx discards everything and returns ctx.Err().
func (f fetcher) days(ctx context.Context, accountID string, days []entities.Date, fetch func(ctx context.Context, day entities.Date) ([]entities.Slot, error)) ([]entities.Slot, error) {
	results := make([][]entities.Slot, len(days))
	sem := make(chan struct{}, f.opts.DayConcurrency)
	var wg sync.WaitGroup

launch:
	for i, day := range days {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break launch
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = f.call(ctx, accountID, day.String(), func(ctx context.Context) ([]entities.Slot, error) {
				return fetch(ctx, day)
			})
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var total int
	for _, r := range results {
		total += len(r)
	}
	slots := make([]entities.Slot, 0, total)
	for _, r := range results {
		slots = append(slots, r...)
	}
	return slots, nil
}

// call performs one provider request. label identifies the day or range in
// logs and spans.
func (f fetcher) call(ctx context.Context, accountID, label string, fetch fetchFunc) (slots []entities.Slot) {
	callCtx, cancel := context.WithTimeout(ctx, f.opts.RequestTimeout)
	defer cancel()

	callCtx, span := observability.StartSpan(callCtx, f.provider+".fetch_day",
		attribute.String("booking.provider", f.provider),
		attribute.String("booking.account_id", accountID),
		attribute.String("booking.date", label),
	)
	defer span.End()

	start := time.Now()
	outcome := observability.OutcomeSuccess
	defer func() {
		if r := recover(); r != nil {
			outcome = observability.OutcomeProviderError
			slots = nil
			observability.LoggerFromContext(ctx).Error().
				Str("provider", f.provider).
				Str("account_id", accountID).
				Str("date", label).
				Str("failure", outcome).
				Interface("panic", r).
				Msg("booking provider fetch panicked")
		}
		observability.RecordProviderFetch(ctx, f.opts.Metrics, f.provider, outcome, time.Since(start))
	}()

	slots, err := fetch(callCtx)
	if err == nil {
		return slots
	}

	observability.RecordError(span, err)
	if ctx.Err() != nil {
		outcome = observability.OutcomeCanceled
		return nil
	}

	outcome = observability.OutcomeProviderError
	if isConfigError(err) {
		outcome = observability.OutcomeMisconfigured
	}
	observability.LoggerFromContext(ctx).Warn().
		Err(err).
		Str("provider", f.provider).
		Str("account_id", accountID).
		Str("date", label).
		Str("failure", outcome).
		Msg("booking provider fetch failed")
	return nil
}

// misconfigured logs a configuration problem once for a whole query
func (f fetcher) misconfigured(ctx context.Context, accountID string, err error) {
	observability.RecordProviderFetch(ctx, f.opts.Metrics, f.provider, observability.OutcomeMisconfigured, 0)
	observability.LoggerFromContext(ctx).Warn().
		Err(err).
		Str("provider", f.provider).
		Str("account_id", accountID).
		Str("failure", observability.OutcomeMisconfigured).
		Msg("booking provider configuration is unusable, returning no slots")
}

func statusError(provider string, code int) error {
	return fmt.Errorf("%s: unexpected status %d", provider, code)
}

package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/domain/providers"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
	"github.com/woodsxwu/WalkInNow/pkg/config"
)

const (
	// OceanName is the provider name clinics use for Ocean
	OceanName = "ocean"

	// DefaultOceanBaseURL is the Ocean appointments API
	DefaultOceanBaseURL = "https://api.ocean.health"
)

var oceanModalities = map[string]entities.Modality{
	"virtual":   entities.ModalityVideo,
	"in_clinic": entities.ModalityInPerson,
	"telephone": entities.ModalityPhone,
}

// OceanAdapter implements BookingAdapter for Ocean. One POST covers the whole
// date range.
type OceanAdapter struct {
	baseURL  string
	apiKey   string
	timezone string
	fetcher  fetcher
	client   *http.Client
	opts     Options
}

// NewOceanAdapter creates a new Ocean adapter
func NewOceanAdapter(cfg config.OceanConfig, opts Options) *OceanAdapter {
	opts = opts.withDefaults()
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOceanBaseURL
	}
	tz := cfg.Timezone
	if tz == "" {
		tz = defaultProviderTimezone
	}
	return &OceanAdapter{
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		timezone: tz,
		fetcher:  fetcher{provider: OceanName, opts: opts},
		client:   opts.HTTPClient,
		opts:     opts,
	}
}

// Name returns the provider name
func (a *OceanAdapter) Name() string {
	return OceanName
}

type oceanRequest struct {
	ProviderID string `json:"provider_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	LocationID string `json:"location_id,omitempty"`
}

type oceanResponse struct {
	Slots []json.RawMessage `json:"slots"`
}

type oceanSlot struct {
	ID       flexString `json:"id"`
	Time     string     `json:"time"`
	Duration float64    `json:"duration"`
	Type     string     `json:"type"`
}

// MapOceanModality maps an Ocean appointment type onto a modality. Unknown
// types are treated as in-person.
func MapOceanModality(oceanType string) entities.Modality {
	if m, ok := oceanModalities[strings.ToLower(strings.TrimSpace(oceanType))]; ok {
		return m
	}
	return entities.ModalityInPerson
}

// FetchAvailableSlots requests the whole range at once. A failed request
// leaves every day of the range empty.
func (a *OceanAdapter) FetchAvailableSlots(ctx context.Context, q providers.SlotQuery) ([]entities.Slot, error) {
	if _, err := validateRange(q.StartDate, q.EndDate); err != nil {
		return nil, err
	}
	now := a.opts.now(q.Now)

	loc, err := loadLocation(q.Config.StringOr("timezone", a.timezone))
	if err != nil {
		a.fetcher.misconfigured(ctx, q.AccountID, err)
		return []entities.Slot{}, nil
	}

	locationID := q.Config.StringOr("locationId", "")
	values := map[string]string{
		"providerId": q.AccountID,
		"accountId":  q.AccountID,
		"locationId": locationID,
		"startDate":  q.StartDate.String(),
		"endDate":    q.EndDate.String(),
	}

	target := a.baseURL + "/appointments/available"
	if tmpl, ok := q.Config.String("urlTemplate"); ok {
		if target, err = ExpandURLTemplate(tmpl, values); err != nil {
			a.fetcher.misconfigured(ctx, q.AccountID, err)
			return []entities.Slot{}, nil
		}
	}

	body, err := json.Marshal(oceanRequest{
		ProviderID: q.AccountID,
		StartDate:  q.StartDate.String(),
		EndDate:    q.EndDate.String(),
		LocationID: locationID,
	})
	if err != nil {
		return nil, err
	}

	label := q.StartDate.String() + ".." + q.EndDate.String()
	slots := a.fetcher.call(ctx, q.AccountID, label, func(ctx context.Context) ([]entities.Slot, error) {
		return a.fetch(ctx, target, body, q, loc)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return filterFuture(slots, now), nil
}

// FindNextAvailableSlot scans daysToScan days starting today in the
// provider's timezone
func (a *OceanAdapter) FindNextAvailableSlot(ctx context.Context, accountID string, daysToScan int, cfg entities.ProviderConfig) (*entities.Slot, error) {
	return findNext(ctx, a, a.opts.Clock(), cfg.StringOr("timezone", a.timezone), accountID, daysToScan, cfg)
}

func (a *OceanAdapter) fetch(ctx context.Context, target string, body []byte, q providers.SlotQuery, loc *time.Location) ([]entities.Slot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocean: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, statusError(OceanName, resp.StatusCode)
	}

	var payload oceanResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("ocean: decode response: %w", err)
	}

	slots := make([]entities.Slot, 0, len(payload.Slots))
	for _, item := range payload.Slots {
		var s oceanSlot
		if err := json.Unmarshal(item, &s); err != nil {
			observability.LoggerFromContext(ctx).Debug().Err(err).Str("provider", OceanName).Msg("skipping malformed slot")
			continue
		}
		start, err := parseProviderTime(strings.TrimSpace(s.Time), loc)
		if err != nil {
			observability.LoggerFromContext(ctx).Debug().Err(err).Str("provider", OceanName).Msg("skipping slot with unreadable time")
			continue
		}

		// The provider may pad the range; keep only requested days.
		day := entities.DateOf(start.In(loc))
		if day.Before(q.StartDate) || day.After(q.EndDate) {
			continue
		}

		end := start
		if s.Duration > 0 {
			end = start.Add(time.Duration(s.Duration * float64(time.Minute)))
		}

		slots = append(slots, entities.Slot{
			StartTime:      start,
			EndTime:        end,
			Modality:       MapOceanModality(s.Type),
			ProviderSlotID: string(s.ID),
			BookingURL:     a.bookingURL(ctx, q, string(s.ID)),
			Raw:            item,
		})
	}
	return slots, nil
}

func (a *OceanAdapter) bookingURL(ctx context.Context, q providers.SlotQuery, slotID string) string {
	if slotID == "" {
		return ""
	}
	tmpl, ok := q.Config.String("bookingUrlTemplate")
	if !ok {
		return a.baseURL + "/book/" + url.PathEscape(slotID)
	}
	link, err := ExpandURLTemplate(tmpl, map[string]string{
		"slotId":     slotID,
		"providerId": q.AccountID,
		"accountId":  q.AccountID,
		"locationId": q.Config.StringOr("locationId", ""),
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Str("provider", OceanName).Msg("booking url template unusable, omitting link")
		return ""
	}
	return link
}

package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/domain/providers"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
	"github.com/woodsxwu/WalkInNow/pkg/config"
)

const (
	// CarefinitiName is the provider name clinics use for Carefiniti
	CarefinitiName = "carefiniti"

	// DefaultCarefinitiURLTemplate is the Cortico walk-in availability endpoint
	DefaultCarefinitiURLTemplate = "https://carefiniti.cortico.ca/api/async/available-appointment-slots/{providerId}/{date}/walk-in-clinic/?location={location}"

	defaultCarefinitiLocation = "m"
	defaultProviderTimezone   = "America/Toronto"
)

// CarefinitiAdapter implements BookingAdapter for Carefiniti (Cortico). The
// API answers one day per request.
type CarefinitiAdapter struct {
	urlTemplate string
	timezone    string
	fetcher     fetcher
	client      *http.Client
	opts        Options
}

// NewCarefinitiAdapter creates a new Carefiniti adapter
func NewCarefinitiAdapter(cfg config.CarefinitiConfig, opts Options) *CarefinitiAdapter {
	opts = opts.withDefaults()
	tmpl := cfg.URLTemplate
	if tmpl == "" {
		tmpl = DefaultCarefinitiURLTemplate
	}
	tz := cfg.Timezone
	if tz == "" {
		tz = defaultProviderTimezone
	}
	return &CarefinitiAdapter{
		urlTemplate: tmpl,
		timezone:    tz,
		fetcher:     fetcher{provider: CarefinitiName, opts: opts},
		client:      opts.HTTPClient,
		opts:        opts,
	}
}

// Name returns the provider name
func (a *CarefinitiAdapter) Name() string {
	return CarefinitiName
}

type carefinitiDay struct {
	ClinicSlots []json.RawMessage `json:"clinic_slots"`
	VideoSlots  []json.RawMessage `json:"video_slots"`
	PhoneSlots  []json.RawMessage `json:"phone_slots"`
	// home_visit_slots is not a supported modality
}

type carefinitiSlot struct {
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	Value         flexString `json:"value"`
	StartDatetime string     `json:"start_datetime"`
	ProviderNo    flexString `json:"provider_no"`
}

// carefinitiRequest is the per-query state derived from clinic config
type carefinitiRequest struct {
	accountID string
	template  string
	location  string
	loc       *time.Location
}

func (a *CarefinitiAdapter) prepare(accountID string, cfg entities.ProviderConfig) (carefinitiRequest, error) {
	req := carefinitiRequest{
		accountID: accountID,
		template:  cfg.StringOr("urlTemplate", a.urlTemplate),
		location:  cfg.StringOr("location", defaultCarefinitiLocation),
	}
	loc, err := loadLocation(cfg.StringOr("timezone", a.timezone))
	if err != nil {
		return req, err
	}
	req.loc = loc
	return req, nil
}

func (r carefinitiRequest) url(day entities.Date) (string, error) {
	return ExpandURLTemplate(r.template, map[string]string{
		"providerId": r.accountID,
		"accountId":  r.accountID,
		"date":       day.String(),
		"location":   r.location,
	})
}

// FetchAvailableSlots issues one request per day in the range
func (a *CarefinitiAdapter) FetchAvailableSlots(ctx context.Context, q providers.SlotQuery) ([]entities.Slot, error) {
	days, err := validateRange(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	now := a.opts.now(q.Now)

	req, err := a.prepare(q.AccountID, q.Config)
	if err == nil {
		// The template is identical for every day, so one check covers the range.
		_, err = req.url(days[0])
	}
	if err != nil {
		a.fetcher.misconfigured(ctx, q.AccountID, err)
		return []entities.Slot{}, nil
	}

	slots, err := a.fetcher.days(ctx, q.AccountID, days, func(ctx context.Context, day entities.Date) ([]entities.Slot, error) {
		return a.fetchDay(ctx, req, day)
	})
	if err != nil {
		return nil, err
	}
	return filterFuture(slots, now), nil
}

// FindNextAvailableSlot scans daysToScan days starting today in the
// provider's timezone
func (a *CarefinitiAdapter) FindNextAvailableSlot(ctx context.Context, accountID string, daysToScan int, cfg entities.ProviderConfig) (*entities.Slot, error) {
	return findNext(ctx, a, a.opts.Clock(), cfg.StringOr("timezone", a.timezone), accountID, daysToScan, cfg)
}

func (a *CarefinitiAdapter) fetchDay(ctx context.Context, req carefinitiRequest, day entities.Date) ([]entities.Slot, error) {
	target, err := req.url(day)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("carefiniti: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, statusError(CarefinitiName, resp.StatusCode)
	}

	var payload map[string]carefinitiDay
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("carefiniti: decode response: %w", err)
	}

	dayData, ok := payload[day.String()]
	if !ok {
		return nil, nil
	}

	slots := make([]entities.Slot, 0, len(dayData.ClinicSlots)+len(dayData.VideoSlots)+len(dayData.PhoneSlots))
	slots = a.convert(ctx, slots, dayData.ClinicSlots, entities.ModalityInPerson, day, req.loc)
	slots = a.convert(ctx, slots, dayData.VideoSlots, entities.ModalityVideo, day, req.loc)
	slots = a.convert(ctx, slots, dayData.PhoneSlots, entities.ModalityPhone, day, req.loc)
	return slots, nil
}

// convert appends normalized slots. A slot whose time cannot be read is
// skipped without affecting its siblings.
func (a *CarefinitiAdapter) convert(ctx context.Context, dst []entities.Slot, raw []json.RawMessage, modality entities.Modality, day entities.Date, loc *time.Location) []entities.Slot {
	for _, item := range raw {
		var s carefinitiSlot
		if err := json.Unmarshal(item, &s); err != nil {
			observability.LoggerFromContext(ctx).Debug().Err(err).Str("provider", CarefinitiName).Msg("skipping malformed slot")
			continue
		}

		start, err := s.start(day, loc)
		if err != nil {
			observability.LoggerFromContext(ctx).Debug().Err(err).Str("provider", CarefinitiName).Msg("skipping slot with unreadable time")
			continue
		}

		dst = append(dst, entities.Slot{
			StartTime:      start,
			EndTime:        start,
			Modality:       modality,
			ProviderSlotID: string(s.ProviderNo),
			Raw:            item,
		})
	}
	return dst
}

// start prefers start_datetime and falls back to the day plus start_time
func (s carefinitiSlot) start(day entities.Date, loc *time.Location) (time.Time, error) {
	if v := strings.TrimSpace(s.StartDatetime); v != "" {
		return parseProviderTime(v, loc)
	}
	if v := strings.TrimSpace(s.StartTime); v != "" {
		return parseProviderTime(day.String()+"T"+v, loc)
	}
	return time.Time{}, fmt.Errorf("slot has no start time")
}

// flexString accepts a JSON string or number
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

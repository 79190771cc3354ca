package services

import (
	"context"
	"strings"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/domain/repositories"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
	apperrors "github.com/woodsxwu/WalkInNow/pkg/errors"
)

const (
	defaultClinicListLimit = 50
	maxClinicListLimit     = 200
)

// ClinicDirectoryService merges directory records with live availability
type ClinicDirectoryService struct {
	clinics      repositories.ClinicRepository
	availability *AvailabilityService
}

// NewClinicDirectoryService creates a new clinic directory service
func NewClinicDirectoryService(clinics repositories.ClinicRepository, availability *AvailabilityService) *ClinicDirectoryService {
	return &ClinicDirectoryService{
		clinics:      clinics,
		availability: availability,
	}
}

// GetClinic returns a directory record without availability
func (s *ClinicDirectoryService) GetClinic(ctx context.Context, id string) (*entities.Clinic, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewValidationError("clinic id is required")
	}
	return s.clinics.GetByID(ctx, id)
}

// ListClinicsWithAvailability lists active clinics with their next slot.
// Real walk-in clinics are never queried and never carry a slot.
func (s *ClinicDirectoryService) ListClinicsWithAvailability(ctx context.Context, filter repositories.ClinicFilter) ([]*entities.ClinicAvailability, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultClinicListLimit
	}
	if filter.Limit > maxClinicListLimit {
		filter.Limit = maxClinicListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	clinics, err := s.clinics.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	slots := s.availability.GetNextAvailableSlots(ctx, s.bookingConfigs(ctx, clinics))

	result := make([]*entities.ClinicAvailability, 0, len(clinics))
	for _, c := range clinics {
		entry := &entities.ClinicAvailability{Clinic: c}
		if !c.IsRealWalkIn {
			entry.NextAvailableSlot = slots[c.ID]
		}
		result = append(result, entry)
	}
	return result, nil
}

// NextSlotsForClinics returns next slots keyed by clinic ID for the given
// IDs. Unknown IDs and walk-in clinics are absent from the result.
func (s *ClinicDirectoryService) NextSlotsForClinics(ctx context.Context, ids []string) (map[string]*entities.Slot, error) {
	if len(ids) == 0 {
		return map[string]*entities.Slot{}, nil
	}
	clinics, err := s.clinics.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.availability.GetNextAvailableSlots(ctx, s.bookingConfigs(ctx, clinics)), nil
}

// NextSlotForClinic loads the clinic and returns its next slot
func (s *ClinicDirectoryService) NextSlotForClinic(ctx context.Context, id string) (*entities.Slot, error) {
	clinic, err := s.GetClinic(ctx, id)
	if err != nil {
		return nil, err
	}
	if clinic.IsRealWalkIn {
		return nil, nil
	}
	return s.availability.GetNextAvailableSlot(ctx, s.bookingConfig(ctx, clinic)), nil
}

// CalendarForClinic loads the clinic and returns its calendar window
func (s *ClinicDirectoryService) CalendarForClinic(ctx context.Context, id string, start entities.Date, days int) (entities.CalendarWindow, error) {
	clinic, err := s.GetClinic(ctx, id)
	if err != nil {
		return nil, err
	}
	if clinic.IsRealWalkIn {
		return entities.CalendarWindow{}, nil
	}
	return s.availability.GetSlotsForCalendarWindow(ctx, s.bookingConfig(ctx, clinic), start, days), nil
}

func (s *ClinicDirectoryService) bookingConfigs(ctx context.Context, clinics []*entities.Clinic) []entities.BookingConfig {
	configs := make([]entities.BookingConfig, 0, len(clinics))
	for _, c := range clinics {
		if c == nil || c.IsRealWalkIn {
			continue
		}
		configs = append(configs, s.bookingConfig(ctx, c))
	}
	return configs
}

func (s *ClinicDirectoryService) bookingConfig(ctx context.Context, clinic *entities.Clinic) entities.BookingConfig {
	cfg, err := clinic.BookingConfig()
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("clinic_id", clinic.ID).
			Msg("ignoring malformed api_config")
	}
	return cfg
}

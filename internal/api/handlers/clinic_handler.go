package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/domain/repositories"
)

// ClinicService defines the directory operations used by the clinic routes
type ClinicService interface {
	GetClinic(ctx context.Context, id string) (*entities.Clinic, error)
	ListClinicsWithAvailability(ctx context.Context, filter repositories.ClinicFilter) ([]*entities.ClinicAvailability, error)
	NextSlotForClinic(ctx context.Context, id string) (*entities.Slot, error)
	CalendarForClinic(ctx context.Context, id string, start entities.Date, days int) (entities.CalendarWindow, error)
}

// CalendarLimits bounds the calendar route's days parameter
type CalendarLimits struct {
	DefaultDays int
	MaxDays     int
}

// ClinicHandler handles clinic directory and availability requests
type ClinicHandler struct {
	service ClinicService
	limits  CalendarLimits
	now     func() time.Time
}

// NewClinicHandler creates a new clinic handler
func NewClinicHandler(service ClinicService, limits CalendarLimits) *ClinicHandler {
	if limits.DefaultDays <= 0 {
		limits.DefaultDays = 7
	}
	if limits.MaxDays < limits.DefaultDays {
		limits.MaxDays = limits.DefaultDays
	}
	return &ClinicHandler{
		service: service,
		limits:  limits,
		now:     time.Now,
	}
}

// ListClinics handles GET /api/clinics
func (h *ClinicHandler) ListClinics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, ok := parseNonNegativeInt(query.Get("limit"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}
	offset, ok := parseNonNegativeInt(query.Get("offset"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid offset parameter")
		return
	}

	clinics, err := h.service.ListClinicsWithAvailability(r.Context(), repositories.ClinicFilter{
		City:   strings.TrimSpace(query.Get("city")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondWithAppError(w, r, err, "failed to list clinics")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"clinics": clinics,
		"count":   len(clinics),
	})
}

// GetClinic handles GET /api/clinics/{id}
func (h *ClinicHandler) GetClinic(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")
	if clinicID == "" {
		respondWithError(w, http.StatusBadRequest, "clinic ID is required")
		return
	}

	clinic, err := h.service.GetClinic(r.Context(), clinicID)
	if err != nil {
		respondWithAppError(w, r, err, "failed to load clinic")
		return
	}

	respondWithJSON(w, http.StatusOK, clinic)
}

// GetNextSlot handles GET /api/clinics/{id}/next-slot
func (h *ClinicHandler) GetNextSlot(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")
	if clinicID == "" {
		respondWithError(w, http.StatusBadRequest, "clinic ID is required")
		return
	}

	slot, err := h.service.NextSlotForClinic(r.Context(), clinicID)
	if err != nil {
		respondWithAppError(w, r, err, "failed to load clinic")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"clinic_id":           clinicID,
		"next_available_slot": slot,
	})
}

// GetCalendar handles GET /api/clinics/{id}/calendar?start=YYYY-MM-DD&days=N
func (h *ClinicHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")
	if clinicID == "" {
		respondWithError(w, http.StatusBadRequest, "clinic ID is required")
		return
	}

	query := r.URL.Query()

	start := entities.DateOf(h.now().UTC())
	if raw := strings.TrimSpace(query.Get("start")); raw != "" {
		parsed, err := entities.ParseDate(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "start must be a YYYY-MM-DD date")
			return
		}
		start = parsed
	}

	days := h.limits.DefaultDays
	if raw := strings.TrimSpace(query.Get("days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > h.limits.MaxDays {
			respondWithError(w, http.StatusBadRequest, "days must be between 1 and "+strconv.Itoa(h.limits.MaxDays))
			return
		}
		days = n
	}

	window, err := h.service.CalendarForClinic(r.Context(), clinicID, start, days)
	if err != nil {
		respondWithAppError(w, r, err, "failed to load clinic")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"clinic_id": clinicID,
		"start":     start,
		"days":      days,
		"slots":     window,
	})
}

func parseNonNegativeInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

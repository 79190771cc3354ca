package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/woodsxwu/WalkInNow/internal/api/loaders"
	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
)

// MaxBatchClinicIDs caps clinic_ids on the batch next-slot route
const MaxBatchClinicIDs = 100

// AvailabilityHandler serves batched next-slot lookups
type AvailabilityHandler struct {
	source loaders.NextSlotSource
}

// NewAvailabilityHandler creates a new availability handler. source is used
// when no request-scoped loaders are attached.
func NewAvailabilityHandler(source loaders.NextSlotSource) *AvailabilityHandler {
	return &AvailabilityHandler{source: source}
}

// GetNextSlots handles GET /api/availability/next-slots?clinic_ids=a,b,c
func (h *AvailabilityHandler) GetNextSlots(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(r.URL.Query().Get("clinic_ids"))
	if len(ids) == 0 {
		respondWithError(w, http.StatusBadRequest, "clinic_ids is required")
		return
	}
	if len(ids) > MaxBatchClinicIDs {
		respondWithError(w, http.StatusBadRequest, "at most "+strconv.Itoa(MaxBatchClinicIDs)+" clinic_ids are allowed")
		return
	}

	slots := make(map[string]*entities.Slot, len(ids))

	if l := loaders.For(r.Context()); l != nil {
		results, errs := l.NextSlotLoader.LoadMany(r.Context(), ids)()
		for _, err := range errs {
			if err != nil {
				respondWithAppError(w, r, err, "failed to load clinics")
				return
			}
		}
		for i, id := range ids {
			slots[id] = results[i]
		}
	} else {
		found, err := h.source.NextSlotsForClinics(r.Context(), ids)
		if err != nil {
			respondWithAppError(w, r, err, "failed to load clinics")
			return
		}
		for _, id := range ids {
			slots[id] = found[id]
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"slots": slots,
	})
}

// splitIDs parses a comma separated list, dropping blanks and duplicates
func splitIDs(raw string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

// Modality represents the visit channel of a slot
type Modality string

const (
	ModalityInPerson Modality = "in-person"
	ModalityPhone    Modality = "phone"
	ModalityVideo    Modality = "video"
)

// Modalities lists every supported modality in display order
var Modalities = []Modality{ModalityInPerson, ModalityPhone, ModalityVideo}

// Valid reports whether m is one of the supported modalities
func (m Modality) Valid() bool {
	switch m {
	case ModalityInPerson, ModalityPhone, ModalityVideo:
		return true
	}
	return false
}

// ParseModality converts a normalized modality string into a Modality
func ParseModality(s string) (Modality, error) {
	m := Modality(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown modality %q", s)
	}
	return m, nil
}

// Slot is a normalized appointment opening reported by a booking provider.
// A Slot is treated as a value: consumers reorder and filter collections of
// slots but never modify one after an adapter has produced it.
type Slot struct {
	StartTime time.Time `json:"start_time"`
	// EndTime equals StartTime when the provider does not report a duration.
	EndTime        time.Time `json:"end_time"`
	Modality       Modality  `json:"modality"`
	ProviderSlotID string    `json:"provider_slot_id,omitempty"`
	BookingURL     string    `json:"booking_url,omitempty"`
	// Raw is the untouched provider payload, kept for diagnostics.
	Raw json.RawMessage `json:"-"`
}

// Duration returns the slot length, zero when the provider did not report one
func (s Slot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// IsAfter reports whether the slot starts strictly after t
func (s Slot) IsAfter(t time.Time) bool {
	return s.StartTime.After(t)
}

// DaySlots groups one calendar day's slots by modality
type DaySlots struct {
	InPerson []Slot `json:"in-person"`
	Phone    []Slot `json:"phone"`
	Video    []Slot `json:"video"`
}

// NewDaySlots returns a DaySlots with all three sequences non-nil
func NewDaySlots() DaySlots {
	return DaySlots{
		InPerson: []Slot{},
		Phone:    []Slot{},
		Video:    []Slot{},
	}
}

// Add appends slot to the sequence for its modality. Slots with an unknown
// modality are rejected.
func (d *DaySlots) Add(slot Slot) bool {
	switch slot.Modality {
	case ModalityInPerson:
		d.InPerson = append(d.InPerson, slot)
	case ModalityPhone:
		d.Phone = append(d.Phone, slot)
	case ModalityVideo:
		d.Video = append(d.Video, slot)
	default:
		return false
	}
	return true
}

// For returns the sequence for a modality
func (d DaySlots) For(m Modality) []Slot {
	switch m {
	case ModalityInPerson:
		return d.InPerson
	case ModalityPhone:
		return d.Phone
	case ModalityVideo:
		return d.Video
	}
	return nil
}

// Len returns the number of slots across all modalities
func (d DaySlots) Len() int {
	return len(d.InPerson) + len(d.Phone) + len(d.Video)
}

// CalendarWindow maps YYYY-MM-DD dates to that day's slots. Days without
// availability have no key.
type CalendarWindow map[string]DaySlots

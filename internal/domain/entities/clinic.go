package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Clinic represents a clinic directory record. The availability layer only
// reads its booking integration fields.
type Clinic struct {
	ID                 string          `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Slug               string          `json:"slug" db:"slug"`
	Description        string          `json:"description,omitempty" db:"description"`
	Address            Address         `json:"address" db:"-"`
	Location           Location        `json:"location" db:"-"`
	Phone              string          `json:"phone,omitempty" db:"phone"`
	Website            string          `json:"website,omitempty" db:"website"`
	BookingURL         string          `json:"booking_url,omitempty" db:"booking_url"`
	IsRealWalkIn       bool            `json:"is_real_walk_in" db:"is_real_walk_in"`
	AcceptsNewPatients bool            `json:"accepts_new_patients" db:"accepts_new_patients"`
	AppointmentTypes   []Modality      `json:"appointment_types,omitempty" db:"-"`
	APIProvider        string          `json:"api_provider,omitempty" db:"api_provider"`
	ProviderAccountID  string          `json:"provider_id,omitempty" db:"provider_id"`
	APIConfig          json.RawMessage `json:"api_config,omitempty" db:"api_config"`
	DaysToScan         int             `json:"days_to_scan,omitempty" db:"days_to_scan"`
	IsActive           bool            `json:"is_active" db:"is_active"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// Address represents a physical address
type Address struct {
	Street     string `json:"street" db:"address"`
	City       string `json:"city" db:"city"`
	Province   string `json:"province" db:"province"`
	PostalCode string `json:"postal_code,omitempty" db:"postal_code"`
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// ClinicAvailability is a clinic listing entry with its computed next slot
type ClinicAvailability struct {
	*Clinic
	NextAvailableSlot *Slot `json:"next_available_slot"`
}

// BookingConfig projects the clinic's booking integration fields. A malformed
// api_config still yields a usable config (with no provider parameters)
// together with the decode error, so callers can log it and carry on.
func (c *Clinic) BookingConfig() (BookingConfig, error) {
	cfg := BookingConfig{
		ClinicID:          c.ID,
		ProviderName:      c.APIProvider,
		ProviderAccountID: c.ProviderAccountID,
		DaysToScan:        c.DaysToScan,
	}

	raw := bytes.TrimSpace(c.APIConfig)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return cfg, nil
	}

	var pc ProviderConfig
	if err := json.Unmarshal(raw, &pc); err != nil {
		return cfg, fmt.Errorf("clinic %s: invalid api_config: %w", c.ID, err)
	}
	cfg.ProviderConfig = pc
	return cfg, nil
}

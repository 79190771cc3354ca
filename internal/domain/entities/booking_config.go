package entities

import (
	"fmt"
	"strings"
)

const (
	// DefaultDaysToScan is used when a clinic does not set its own scan window
	DefaultDaysToScan = 14

	// ProviderNone marks a clinic that is listed without a booking integration
	ProviderNone = "none"
)

// ProviderConfig holds provider-specific parameters for one clinic, such as a
// location code or a custom URL template. Adapters read only the keys they
// understand.
type ProviderConfig map[string]any

// String returns the string value stored at key. Numbers are formatted so
// that configs decoded from JSON ("locationId": 12) still resolve.
func (c ProviderConfig) String(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c[key]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		return s, s != ""
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val)), true
		}
		return fmt.Sprintf("%g", val), true
	case int:
		return fmt.Sprintf("%d", val), true
	case int64:
		return fmt.Sprintf("%d", val), true
	default:
		return "", false
	}
}

// StringOr returns the string at key or def when it is missing
func (c ProviderConfig) StringOr(key, def string) string {
	if s, ok := c.String(key); ok {
		return s
	}
	return def
}

// BookingConfig is the per-clinic data needed to query a booking provider.
// It is owned by the clinic directory and read fresh on every query.
type BookingConfig struct {
	ClinicID          string         `json:"clinic_id,omitempty"`
	ProviderName      string         `json:"provider_name,omitempty"`
	ProviderAccountID string         `json:"provider_account_id,omitempty"`
	ProviderConfig    ProviderConfig `json:"provider_config,omitempty"`
	DaysToScan        int            `json:"days_to_scan,omitempty"`
}

// HasIntegration reports whether the clinic is connected to a booking provider
func (c BookingConfig) HasIntegration() bool {
	name := strings.TrimSpace(c.ProviderName)
	if name == "" || strings.EqualFold(name, ProviderNone) {
		return false
	}
	return strings.TrimSpace(c.ProviderAccountID) != ""
}

// ScanDays returns DaysToScan bounded to [1, max], falling back to
// DefaultDaysToScan when unset.
func (c BookingConfig) ScanDays(max int) int {
	days := c.DaysToScan
	if days <= 0 {
		days = DefaultDaysToScan
	}
	if max > 0 && days > max {
		days = max
	}
	return days
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/woodsxwu/WalkInNow/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Booking.DaysToScan)
	assert.Equal(t, 60, cfg.Booking.MaxDaysToScan)
	assert.Equal(t, 7, cfg.Booking.CalendarDays)
	assert.Equal(t, 31, cfg.Booking.MaxCalendarDays)
	assert.Equal(t, 8*time.Second, cfg.Booking.RequestTimeout)
	assert.Equal(t, 7, cfg.Booking.DayConcurrency)
	assert.False(t, cfg.Booking.EnableMockProvider)
	assert.Equal(t, "America/Toronto", cfg.Carefiniti.Timezone)
	assert.Equal(t, "https://api.ocean.health", cfg.Ocean.BaseURL)
	assert.Equal(t, []string{"*"}, cfg.App.AllowedOrigins)
	assert.Equal(t, 25*time.Second, cfg.Server.RequestDeadline)
	assert.Greater(t, cfg.Server.WriteTimeout(), cfg.Server.RequestDeadline)
}

func TestLoad_BookingOverrides(t *testing.T) {
	t.Setenv("BOOKING_DAYS_TO_SCAN", "21")
	t.Setenv("BOOKING_REQUEST_TIMEOUT", "3s")
	t.Setenv("BOOKING_ENABLE_MOCK_PROVIDER", "true")
	t.Setenv("CAREFINITI_URL_TEMPLATE", "http://localhost:9000/{providerId}/{date}")
	t.Setenv("ALLOWED_ORIGINS", "https://walkinnow.ca, http://localhost:3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 21, cfg.Booking.DaysToScan)
	assert.Equal(t, 3*time.Second, cfg.Booking.RequestTimeout)
	assert.True(t, cfg.Booking.EnableMockProvider)
	assert.Equal(t, "http://localhost:9000/{providerId}/{date}", cfg.Carefiniti.URLTemplate)
	assert.Equal(t, []string{"https://walkinnow.ca", "http://localhost:3000"}, cfg.App.AllowedOrigins)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("BOOKING_CALENDAR_DAYS", "seven")
	t.Setenv("BOOKING_REQUEST_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Booking.CalendarDays)
	assert.Equal(t, 8*time.Second, cfg.Booking.RequestTimeout)
}

func TestLoad_RejectsBadBounds(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"non-positive concurrency", map[string]string{"BOOKING_DAY_CONCURRENCY": "0"}},
		{"scan above max", map[string]string{"BOOKING_DAYS_TO_SCAN": "90"}},
		{"calendar above max", map[string]string{"BOOKING_CALENDAR_DAYS": "40"}},
		{"zero timeout", map[string]string{"BOOKING_REQUEST_TIMEOUT": "0s"}},
		{"zero request deadline", map[string]string{"SERVER_REQUEST_DEADLINE": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrorTypeConfiguration, apperrors.TypeOf(err))
		})
	}
}

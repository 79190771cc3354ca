package booking

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
)

func toronto(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)
	return loc
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func mustDate(t *testing.T, s string) entities.Date {
	t.Helper()
	d, err := entities.ParseDate(s)
	require.NoError(t, err)
	return d
}

type carefinitiFixtureSlot struct {
	StartDatetime string `json:"start_datetime"`
	StartTime     string `json:"start_time,omitempty"`
	ProviderNo    any    `json:"provider_no,omitempty"`
	Value         string `json:"value,omitempty"`
}

type carefinitiFixtureDay struct {
	ClinicSlots    []carefinitiFixtureSlot `json:"clinic_slots"`
	VideoSlots     []carefinitiFixtureSlot `json:"video_slots"`
	PhoneSlots     []carefinitiFixtureSlot `json:"phone_slots"`
	HomeVisitSlots []carefinitiFixtureSlot `json:"home_visit_slots"`
}

func carefinitiBody(t *testing.T, date string, day carefinitiFixtureDay) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]carefinitiFixtureDay{date: day})
	require.NoError(t, err)
	return body
}

package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/woodsxwu/WalkInNow/internal/api/handlers"
	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/domain/repositories"
	apperrors "github.com/woodsxwu/WalkInNow/pkg/errors"
)

type MockClinicService struct {
	mock.Mock
}

func (m *MockClinicService) GetClinic(ctx context.Context, id string) (*entities.Clinic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Clinic), args.Error(1)
}

func (m *MockClinicService) ListClinicsWithAvailability(ctx context.Context, filter repositories.ClinicFilter) ([]*entities.ClinicAvailability, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ClinicAvailability), args.Error(1)
}

func (m *MockClinicService) NextSlotForClinic(ctx context.Context, id string) (*entities.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Slot), args.Error(1)
}

func (m *MockClinicService) CalendarForClinic(ctx context.Context, id string, start entities.Date, days int) (entities.CalendarWindow, error) {
	args := m.Called(ctx, id, start, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.CalendarWindow), args.Error(1)
}

var slotStart = time.Date(2025, time.November, 4, 14, 0, 0, 0, time.UTC)

func newClinicMux(service handlers.ClinicService) *http.ServeMux {
	h := handlers.NewClinicHandler(service, handlers.CalendarLimits{DefaultDays: 7, MaxDays: 31})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/clinics", h.ListClinics)
	mux.HandleFunc("GET /api/clinics/{id}", h.GetClinic)
	mux.HandleFunc("GET /api/clinics/{id}/next-slot", h.GetNextSlot)
	mux.HandleFunc("GET /api/clinics/{id}/calendar", h.GetCalendar)
	return mux
}

func serve(mux http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestClinicHandler_ListClinics(t *testing.T) {
	service := new(MockClinicService)
	slot := &entities.Slot{StartTime: slotStart, EndTime: slotStart, Modality: entities.ModalityVideo}
	service.On("ListClinicsWithAvailability", mock.Anything, repositories.ClinicFilter{City: "Toronto", Limit: 10, Offset: 20}).
		Return([]*entities.ClinicAvailability{
			{Clinic: &entities.Clinic{ID: "c1", Name: "Queen West"}, NextAvailableSlot: slot},
			{Clinic: &entities.Clinic{ID: "c2", Name: "Walk-in", IsRealWalkIn: true}},
		}, nil)

	rec := serve(newClinicMux(service), "/api/clinics?city=Toronto&limit=10&offset=20")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Clinics []struct {
			ID        string          `json:"id"`
			NextSlot  *entities.Slot  `json:"next_available_slot"`
			RawConfig json.RawMessage `json:"api_config"`
		} `json:"clinics"`
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	require.NotNil(t, body.Clinics[0].NextSlot)
	assert.True(t, slotStart.Equal(body.Clinics[0].NextSlot.StartTime))
	assert.Nil(t, body.Clinics[1].NextSlot)
	service.AssertExpectations(t)
}

func TestClinicHandler_ListClinics_InvalidPaging(t *testing.T) {
	service := new(MockClinicService)
	mux := newClinicMux(service)

	assert.Equal(t, http.StatusBadRequest, serve(mux, "/api/clinics?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, serve(mux, "/api/clinics?offset=-1").Code)
	service.AssertNotCalled(t, "ListClinicsWithAvailability", mock.Anything, mock.Anything)
}

func TestClinicHandler_ListClinics_DirectoryFailure(t *testing.T) {
	service := new(MockClinicService)
	service.On("ListClinicsWithAvailability", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewInternalError("failed to list clinics", errors.New("connection refused")))

	rec := serve(newClinicMux(service), "/api/clinics")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestClinicHandler_GetClinic(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		service := new(MockClinicService)
		service.On("GetClinic", mock.Anything, "c1").Return(&entities.Clinic{ID: "c1", Name: "Queen West"}, nil)

		rec := serve(newClinicMux(service), "/api/clinics/c1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"Queen West"`)
		assert.NotContains(t, rec.Body.String(), "next_available_slot")
	})

	t.Run("not found", func(t *testing.T) {
		service := new(MockClinicService)
		service.On("GetClinic", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("clinic not found"))

		rec := serve(newClinicMux(service), "/api/clinics/missing")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"clinic not found"}`, rec.Body.String())
	})
}

func TestClinicHandler_GetNextSlot(t *testing.T) {
	t.Run("slot", func(t *testing.T) {
		service := new(MockClinicService)
		service.On("NextSlotForClinic", mock.Anything, "c1").
			Return(&entities.Slot{StartTime: slotStart, EndTime: slotStart, Modality: entities.ModalityInPerson}, nil)

		rec := serve(newClinicMux(service), "/api/clinics/c1/next-slot")

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			ClinicID string         `json:"clinic_id"`
			Slot     *entities.Slot `json:"next_available_slot"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "c1", body.ClinicID)
		require.NotNil(t, body.Slot)
		assert.Equal(t, entities.ModalityInPerson, body.Slot.Modality)
	})

	t.Run("no slot is null", func(t *testing.T) {
		service := new(MockClinicService)
		service.On("NextSlotForClinic", mock.Anything, "c2").Return(nil, nil)

		rec := serve(newClinicMux(service), "/api/clinics/c2/next-slot")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"clinic_id":"c2","next_available_slot":null}`, rec.Body.String())
	})

	t.Run("unknown clinic", func(t *testing.T) {
		service := new(MockClinicService)
		service.On("NextSlotForClinic", mock.Anything, "nope").Return(nil, apperrors.NewNotFoundError("clinic not found"))

		rec := serve(newClinicMux(service), "/api/clinics/nope/next-slot")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestClinicHandler_GetCalendar(t *testing.T) {
	t.Run("explicit window", func(t *testing.T) {
		service := new(MockClinicService)
		start := entities.Date{Year: 2025, Month: time.November, Day: 3}
		day := entities.NewDaySlots()
		day.Add(entities.Slot{StartTime: slotStart, EndTime: slotStart, Modality: entities.ModalityPhone})
		service.On("CalendarForClinic", mock.Anything, "c1", start, 3).
			Return(entities.CalendarWindow{"2025-11-04": day}, nil)

		rec := serve(newClinicMux(service), "/api/clinics/c1/calendar?start=2025-11-03&days=3")

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			ClinicID string                     `json:"clinic_id"`
			Start    entities.Date              `json:"start"`
			Days     int                        `json:"days"`
			Slots    map[string]json.RawMessage `json:"slots"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, start, body.Start)
		assert.Equal(t, 3, body.Days)
		assert.Contains(t, body.Slots, "2025-11-04")
		service.AssertExpectations(t)
	})

	t.Run("defaults to today and configured days", func(t *testing.T) {
		service := new(MockClinicService)
		service.On("CalendarForClinic", mock.Anything, "c1", mock.AnythingOfType("entities.Date"), 7).
			Return(entities.CalendarWindow{}, nil)

		before := entities.DateOf(time.Now().UTC())
		rec := serve(newClinicMux(service), "/api/clinics/c1/calendar")
		after := entities.DateOf(time.Now().UTC())

		require.Equal(t, http.StatusOK, rec.Code)
		start := service.Calls[0].Arguments.Get(2).(entities.Date)
		assert.False(t, start.Before(before))
		assert.False(t, start.After(after))
		assert.Contains(t, rec.Body.String(), `"slots":{}`)
	})

	t.Run("bad parameters", func(t *testing.T) {
		service := new(MockClinicService)
		mux := newClinicMux(service)

		for _, target := range []string{
			"/api/clinics/c1/calendar?start=11-03-2025",
			"/api/clinics/c1/calendar?days=0",
			"/api/clinics/c1/calendar?days=32",
			"/api/clinics/c1/calendar?days=week",
		} {
			assert.Equal(t, http.StatusBadRequest, serve(mux, target).Code, target)
		}
		service.AssertNotCalled(t, "CalendarForClinic", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

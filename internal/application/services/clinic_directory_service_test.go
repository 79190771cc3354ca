package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/woodsxwu/WalkInNow/internal/application/services"
	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/domain/providers"
	"github.com/woodsxwu/WalkInNow/internal/domain/repositories"
	apperrors "github.com/woodsxwu/WalkInNow/pkg/errors"
)

func directoryClinics() []*entities.Clinic {
	return []*entities.Clinic{
		{ID: "c1", Name: "Queen West Medical", APIProvider: "carefiniti", ProviderAccountID: "a1", APIConfig: json.RawMessage(`{"location":"m"}`), IsActive: true},
		{ID: "c2", Name: "Harbord Walk-In", APIProvider: "carefiniti", ProviderAccountID: "a2", IsRealWalkIn: true, IsActive: true},
		{ID: "c3", Name: "Annex Family Health", APIProvider: "none", IsActive: true},
		{ID: "c4", Name: "Danforth Clinic", APIProvider: "carefiniti", ProviderAccountID: "a4", APIConfig: json.RawMessage(`{broken`), IsActive: true},
	}
}

func TestClinicDirectoryService_ListClinicsWithAvailability(t *testing.T) {
	repo := new(MockClinicRepository)
	repo.On("List", mock.Anything, repositories.ClinicFilter{City: "Toronto", Limit: 50}).Return(directoryClinics(), nil)

	adapter := new(MockBookingAdapter)
	adapter.On("FindNextAvailableSlot", mock.Anything, "a1", 14, entities.ProviderConfig{"location": "m"}).
		Return(&entities.Slot{StartTime: at(4, 9, 0), Modality: entities.ModalityInPerson}, nil)
	adapter.On("FindNextAvailableSlot", mock.Anything, "a4", 14, entities.ProviderConfig(nil)).
		Return(&entities.Slot{StartTime: at(4, 10, 0), Modality: entities.ModalityVideo}, nil)

	svc := services.NewClinicDirectoryService(repo, newAvailabilityService("carefiniti", adapter))
	result, err := svc.ListClinicsWithAvailability(context.Background(), repositories.ClinicFilter{City: "Toronto"})

	require.NoError(t, err)
	require.Len(t, result, 4)
	assert.Equal(t, "c1", result[0].ID)
	require.NotNil(t, result[0].NextAvailableSlot)
	assert.Equal(t, at(4, 9, 0), result[0].NextAvailableSlot.StartTime)
	assert.Nil(t, result[1].NextAvailableSlot)
	assert.Nil(t, result[2].NextAvailableSlot)
	require.NotNil(t, result[3].NextAvailableSlot)

	adapter.AssertNotCalled(t, "FindNextAvailableSlot", mock.Anything, "a2", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestClinicDirectoryService_ListClinicsWithAvailability_DirectoryFailure(t *testing.T) {
	repo := new(MockClinicRepository)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, apperrors.NewInternalError("failed to list clinics", errors.New("connection reset")))

	svc := services.NewClinicDirectoryService(repo, newAvailabilityService("carefiniti", new(MockBookingAdapter)))
	_, err := svc.ListClinicsWithAvailability(context.Background(), repositories.ClinicFilter{Limit: 1000})

	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
	repo.AssertCalled(t, "List", mock.Anything, repositories.ClinicFilter{Limit: 200})
}

func TestClinicDirectoryService_NextSlotForClinic(t *testing.T) {
	t.Run("reads config fresh and delegates", func(t *testing.T) {
		repo := new(MockClinicRepository)
		repo.On("GetByID", mock.Anything, "c1").Return(directoryClinics()[0], nil).Twice()

		adapter := new(MockBookingAdapter)
		adapter.On("FindNextAvailableSlot", mock.Anything, "a1", 14, mock.Anything).
			Return(&entities.Slot{StartTime: at(4, 9, 0), Modality: entities.ModalityInPerson}, nil)

		svc := services.NewClinicDirectoryService(repo, newAvailabilityService("carefiniti", adapter))
		for range 2 {
			slot, err := svc.NextSlotForClinic(context.Background(), "c1")
			require.NoError(t, err)
			require.NotNil(t, slot)
		}
		repo.AssertNumberOfCalls(t, "GetByID", 2)
	})

	t.Run("walk-in clinic never gets a slot", func(t *testing.T) {
		repo := new(MockClinicRepository)
		repo.On("GetByID", mock.Anything, "c2").Return(directoryClinics()[1], nil)
		adapter := new(MockBookingAdapter)

		svc := services.NewClinicDirectoryService(repo, newAvailabilityService("carefiniti", adapter))
		slot, err := svc.NextSlotForClinic(context.Background(), "c2")

		require.NoError(t, err)
		assert.Nil(t, slot)
		adapter.AssertNotCalled(t, "FindNextAvailableSlot", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown clinic is not found", func(t *testing.T) {
		repo := new(MockClinicRepository)
		repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("clinic not found"))

		svc := services.NewClinicDirectoryService(repo, newAvailabilityService("carefiniti", new(MockBookingAdapter)))
		_, err := svc.NextSlotForClinic(context.Background(), "missing")

		assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
	})

	t.Run("blank id is a validation error", func(t *testing.T) {
		svc := services.NewClinicDirectoryService(new(MockClinicRepository), newAvailabilityService("carefiniti", new(MockBookingAdapter)))
		_, err := svc.NextSlotForClinic(context.Background(), "  ")

		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	})
}

func TestClinicDirectoryService_CalendarForClinic(t *testing.T) {
	start, err := entities.ParseDate("2025-11-04")
	require.NoError(t, err)

	repo := new(MockClinicRepository)
	repo.On("GetByID", mock.Anything, "c1").Return(directoryClinics()[0], nil)

	adapter := &dayAdapter{byDay: func(ctx context.Context, q providers.SlotQuery) ([]entities.Slot, error) {
		d := q.StartDate
		return []entities.Slot{{StartTime: at(d.Day, 15, 0), Modality: entities.ModalityPhone}}, nil
	}}

	svc := services.NewClinicDirectoryService(repo, newAvailabilityService("carefiniti", adapter))
	window, err := svc.CalendarForClinic(context.Background(), "c1", start, 3)

	require.NoError(t, err)
	assert.Len(t, window, 3)
	for _, q := range adapter.recorded() {
		assert.Equal(t, "m", q.Config.StringOr("location", ""))
	}
}

func TestClinicDirectoryService_NextSlotsForClinics(t *testing.T) {
	repo := new(MockClinicRepository)
	repo.On("GetByIDs", mock.Anything, []string{"c1", "c2", "c3"}).Return(directoryClinics()[:3], nil)

	adapter := new(MockBookingAdapter)
	adapter.On("FindNextAvailableSlot", mock.Anything, "a1", 14, mock.Anything).
		Return(&entities.Slot{StartTime: at(4, 9, 0), Modality: entities.ModalityInPerson}, nil)

	svc := services.NewClinicDirectoryService(repo, newAvailabilityService("carefiniti", adapter))
	slots, err := svc.NextSlotsForClinics(context.Background(), []string{"c1", "c2", "c3"})

	require.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Contains(t, slots, "c1")

	empty, err := svc.NextSlotsForClinics(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

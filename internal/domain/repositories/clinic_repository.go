package repositories

import (
	"context"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
)

// ClinicRepository defines read access to the clinic directory
type ClinicRepository interface {
	// GetByID retrieves a clinic by ID
	GetByID(ctx context.Context, id string) (*entities.Clinic, error)

	// GetByIDs retrieves multiple clinics by their IDs
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Clinic, error)

	// List retrieves active clinics with filters
	List(ctx context.Context, filter ClinicFilter) ([]*entities.Clinic, error)
}

// ClinicFilter defines filters for listing clinics
type ClinicFilter struct {
	City   string
	Limit  int
	Offset int
}

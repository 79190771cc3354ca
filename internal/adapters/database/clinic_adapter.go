package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/domain/repositories"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/clients/postgres"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
	apperrors "github.com/woodsxwu/WalkInNow/pkg/errors"
)

const clinicsTable = "clinics"

var clinicColumns = []any{
	"id", "name", "slug", "description",
	"address", "city", "province", "postal_code",
	"latitude", "longitude", "phone", "website", "booking_url",
	"is_real_walk_in", "accepts_new_patients", "appointment_types",
	"api_provider", "provider_id", "api_config", "days_to_scan",
	"is_active", "created_at", "updated_at",
}

// ClinicAdapter implements the ClinicRepository interface. It only reads.
type ClinicAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewClinicAdapter creates a new clinic adapter
func NewClinicAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.ClinicRepository {
	return &ClinicAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

func (a *ClinicAdapter) selectClinics() *goqu.SelectDataset {
	return a.db.From(clinicsTable).Select(clinicColumns...).Where(goqu.Ex{"is_active": true})
}

// GetByID retrieves an active clinic by ID
func (a *ClinicAdapter) GetByID(ctx context.Context, id string) (*entities.Clinic, error) {
	query, args, err := a.selectClinics().Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	start := time.Now()
	clinic, err := scanClinic(a.client.DB().QueryRowContext(ctx, query, args...))
	observability.RecordDBMetric(ctx, a.metrics, "clinics.get_by_id", time.Since(start))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get clinic", err)
	}
	return clinic, nil
}

// GetByIDs retrieves active clinics by ID. Unknown IDs are skipped.
func (a *ClinicAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Clinic, error) {
	if len(ids) == 0 {
		return []*entities.Clinic{}, nil
	}

	query, args, err := a.selectClinics().
		Where(goqu.Ex{"id": ids}).
		Order(goqu.C("name").Asc(), goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.query(ctx, "clinics.get_by_ids", query, args)
}

// List retrieves active clinics ordered by name
func (a *ClinicAdapter) List(ctx context.Context, filter repositories.ClinicFilter) ([]*entities.Clinic, error) {
	ds := a.selectClinics()
	if city := strings.TrimSpace(filter.City); city != "" {
		ds = ds.Where(goqu.Func("LOWER", goqu.C("city")).Eq(strings.ToLower(city)))
	}
	ds = ds.Order(goqu.C("name").Asc(), goqu.C("id").Asc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.query(ctx, "clinics.list", query, args)
}

func (a *ClinicAdapter) query(ctx context.Context, operation, query string, args []any) ([]*entities.Clinic, error) {
	start := time.Now()
	defer func() {
		observability.RecordDBMetric(ctx, a.metrics, operation, time.Since(start))
	}()

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query clinics", err)
	}
	defer rows.Close()

	clinics := make([]*entities.Clinic, 0)
	for rows.Next() {
		clinic, err := scanClinic(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan clinic", err)
		}
		clinics = append(clinics, clinic)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate clinics", err)
	}
	return clinics, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClinic(row rowScanner) (*entities.Clinic, error) {
	var (
		c                             entities.Clinic
		slug, description, postalCode sql.NullString
		phone, website, bookingURL    sql.NullString
		apiProvider, providerID       sql.NullString
		latitude, longitude           sql.NullFloat64
		daysToScan                    sql.NullInt64
		appointmentTypes              pq.StringArray
		apiConfig                     []byte
	)

	err := row.Scan(
		&c.ID,
		&c.Name,
		&slug,
		&description,
		&c.Address.Street,
		&c.Address.City,
		&c.Address.Province,
		&postalCode,
		&latitude,
		&longitude,
		&phone,
		&website,
		&bookingURL,
		&c.IsRealWalkIn,
		&c.AcceptsNewPatients,
		&appointmentTypes,
		&apiProvider,
		&providerID,
		&apiConfig,
		&daysToScan,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Slug = slug.String
	c.Description = description.String
	c.Address.PostalCode = postalCode.String
	c.Location.Latitude = latitude.Float64
	c.Location.Longitude = longitude.Float64
	c.Phone = phone.String
	c.Website = website.String
	c.BookingURL = bookingURL.String
	c.APIProvider = apiProvider.String
	c.ProviderAccountID = providerID.String
	c.DaysToScan = int(daysToScan.Int64)
	if len(apiConfig) > 0 {
		c.APIConfig = append([]byte(nil), apiConfig...)
	}
	for _, t := range appointmentTypes {
		if m, err := entities.ParseModality(t); err == nil {
			c.AppointmentTypes = append(c.AppointmentTypes, m)
		}
	}
	return &c, nil
}

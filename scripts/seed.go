package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/clients/postgres"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
	"github.com/woodsxwu/WalkInNow/pkg/config"
)

const clinicsSchema = `
CREATE TABLE IF NOT EXISTS clinics (
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	slug                 TEXT UNIQUE,
	description          TEXT,
	address              TEXT NOT NULL DEFAULT '',
	city                 TEXT NOT NULL DEFAULT '',
	province             TEXT NOT NULL DEFAULT '',
	postal_code          TEXT,
	latitude             DOUBLE PRECISION,
	longitude            DOUBLE PRECISION,
	phone                TEXT,
	website              TEXT,
	booking_url          TEXT,
	is_real_walk_in      BOOLEAN NOT NULL DEFAULT FALSE,
	accepts_new_patients BOOLEAN NOT NULL DEFAULT FALSE,
	appointment_types    TEXT[] NOT NULL DEFAULT '{}',
	api_provider         TEXT,
	provider_id          TEXT,
	api_config           JSONB,
	days_to_scan         INTEGER,
	is_active            BOOLEAN NOT NULL DEFAULT TRUE,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS clinics_city_idx ON clinics (LOWER(city)) WHERE is_active;
`

type seedClinic struct {
	entities.Clinic
	config entities.ProviderConfig
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("walkinnow-seed", cfg.App.Env)

	ctx := context.Background()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer pgClient.Close()

	if _, err := pgClient.DB().ExecContext(ctx, clinicsSchema); err != nil {
		log.Fatal().Err(err).Msg("failed to create schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating clinics before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE clinics`); err != nil {
			log.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	db := goqu.New("postgres", pgClient.DB())
	now := time.Now().UTC()

	inserted := 0
	for _, c := range sampleClinics() {
		record := goqu.Record{
			"id":                   uuid.NewString(),
			"name":                 c.Name,
			"slug":                 c.Slug,
			"address":              c.Address.Street,
			"city":                 c.Address.City,
			"province":             c.Address.Province,
			"postal_code":          c.Address.PostalCode,
			"latitude":             c.Location.Latitude,
			"longitude":            c.Location.Longitude,
			"phone":                c.Phone,
			"is_real_walk_in":      c.IsRealWalkIn,
			"accepts_new_patients": c.AcceptsNewPatients,
			"appointment_types":    modalityArray(c.AppointmentTypes),
			"api_provider":         c.APIProvider,
			"provider_id":          nullable(c.ProviderAccountID),
			"days_to_scan":         c.DaysToScan,
			"is_active":            true,
			"created_at":           now,
			"updated_at":           now,
		}
		if c.config != nil {
			raw, err := json.Marshal(c.config)
			if err != nil {
				log.Fatal().Err(err).Str("clinic", c.Name).Msg("invalid provider config")
			}
			record["api_config"] = string(raw)
		}

		query, args, err := db.Insert("clinics").
			Prepared(true).
			Rows(record).
			OnConflict(goqu.DoNothing()).
			ToSQL()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build insert")
		}

		res, err := pgClient.DB().ExecContext(ctx, query, args...)
		if err != nil {
			log.Error().Err(err).Str("clinic", c.Name).Msg("failed to insert clinic")
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	log.Info().Int("inserted", inserted).Msg("seeding complete")
}

func sampleClinics() []seedClinic {
	return []seedClinic{
		{
			Clinic: entities.Clinic{
				Name: "Queen West Medical Centre", Slug: "queen-west-medical",
				Address:            entities.Address{Street: "781 Queen St W", City: "Toronto", Province: "ON", PostalCode: "M6J 1G1"},
				Location:           entities.Location{Latitude: 43.6456, Longitude: -79.4082},
				Phone:              "416-555-0101",
				AcceptsNewPatients: true,
				AppointmentTypes:   []entities.Modality{entities.ModalityInPerson, entities.ModalityPhone, entities.ModalityVideo},
				APIProvider:        "carefiniti", ProviderAccountID: "3040", DaysToScan: 14,
			},
			config: entities.ProviderConfig{"location": "m"},
		},
		{
			Clinic: entities.Clinic{
				Name: "Annex Family Health", Slug: "annex-family-health",
				Address:          entities.Address{Street: "344 Bloor St W", City: "Toronto", Province: "ON", PostalCode: "M5S 1W9"},
				Location:         entities.Location{Latitude: 43.6660, Longitude: -79.4069},
				Phone:            "416-555-0144",
				AppointmentTypes: []entities.Modality{entities.ModalityVideo, entities.ModalityPhone},
				APIProvider:      "ocean", ProviderAccountID: "ocean-annex", DaysToScan: 7,
			},
			config: entities.ProviderConfig{"locationId": "annex-1"},
		},
		{
			Clinic: entities.Clinic{
				Name: "Commercial Drive Clinic", Slug: "commercial-drive-clinic",
				Address:          entities.Address{Street: "1701 Commercial Dr", City: "Vancouver", Province: "BC", PostalCode: "V5N 4A4"},
				Location:         entities.Location{Latitude: 49.2693, Longitude: -123.0696},
				AppointmentTypes: []entities.Modality{entities.ModalityInPerson},
				APIProvider:      "carefiniti", ProviderAccountID: "5120",
			},
			config: entities.ProviderConfig{"location": "v", "timezone": "America/Vancouver"},
		},
		{
			Clinic: entities.Clinic{
				Name: "Kensington Walk-In", Slug: "kensington-walk-in",
				Address:          entities.Address{Street: "222 Spadina Ave", City: "Toronto", Province: "ON", PostalCode: "M5T 2C2"},
				Location:         entities.Location{Latitude: 43.6520, Longitude: -79.3980},
				IsRealWalkIn:     true,
				AppointmentTypes: []entities.Modality{entities.ModalityInPerson},
				APIProvider:      entities.ProviderNone,
			},
		},
	}
}

func modalityArray(ms []entities.Modality) pq.StringArray {
	out := make(pq.StringArray, 0, len(ms))
	for _, m := range ms {
		out = append(out, string(m))
	}
	return out
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

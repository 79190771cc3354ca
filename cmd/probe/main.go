// Command probe queries one booking provider directly and prints the
// normalized result as JSON. It is meant for checking a clinic's booking
// configuration before it is saved to the directory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/woodsxwu/WalkInNow/internal/adapters/providers/booking"
	"github.com/woodsxwu/WalkInNow/internal/application/services"
	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
	"github.com/woodsxwu/WalkInNow/pkg/config"
)

func main() {
	var (
		provider  = flag.String("provider", "", "booking provider name (carefiniti, ocean, mock)")
		account   = flag.String("account", "", "provider account id")
		rawConfig = flag.String("config", "", "provider config as a JSON object")
		days      = flag.Int("days", 0, "days to scan for the next slot (0 uses the configured default)")
		calendar  = flag.Int("calendar", 0, "print a calendar window of this many days instead of the next slot")
		start     = flag.String("start", "", "calendar window start as YYYY-MM-DD (defaults to today)")
	)
	flag.Parse()

	if err := run(*provider, *account, *rawConfig, *days, *calendar, *start); err != nil {
		fmt.Fprintln(os.Stderr, "probe:", err)
		os.Exit(2)
	}
}

func run(provider, account, rawConfig string, days, calendar int, start string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	observability.InitLoggerWithOutput("walkinnow-probe", cfg.App.Env, os.Stderr)

	if provider == "" || account == "" {
		return fmt.Errorf("-provider and -account are required")
	}

	bc := entities.BookingConfig{
		ClinicID:          "probe",
		ProviderName:      provider,
		ProviderAccountID: account,
		DaysToScan:        days,
	}
	if rawConfig != "" {
		if err := json.Unmarshal([]byte(rawConfig), &bc.ProviderConfig); err != nil {
			return fmt.Errorf("invalid -config: %w", err)
		}
	}

	var windowStart entities.Date
	if start != "" {
		if windowStart, err = entities.ParseDate(start); err != nil {
			return err
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		return err
	}
	registry := booking.NewDefaultRegistry(cfg, metrics)
	registry.Register(booking.MockName, booking.NewMockAdapter(nil))
	if _, ok := registry.Resolve(provider); !ok {
		return fmt.Errorf("unknown provider %q (registered: %v)", provider, registry.Names())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	availability := services.NewAvailabilityService(registry, services.AvailabilitySettingsFromConfig(cfg.Booking))
	log.Debug().Str("provider", provider).Str("account_id", account).Msg("probing provider")

	var result any
	if calendar > 0 {
		result = availability.GetSlotsForCalendarWindow(ctx, bc, windowStart, calendar)
	} else {
		result = map[string]*entities.Slot{
			"next_available_slot": availability.GetNextAvailableSlot(ctx, bc),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// Command seed bulk-loads fundraising items from a JSON file, for first-time
// setup and demo environments. Amounts are rupees with up to two decimals.
//
// Usage:
//
//	seed -file items.json [-replace]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shrusti-bit/project-shelter/db"
	"github.com/shrusti-bit/project-shelter/internal/adapter/repo"
	"github.com/shrusti-bit/project-shelter/internal/domain"
	"github.com/shrusti-bit/project-shelter/internal/event"
	"github.com/shrusti-bit/project-shelter/internal/infra"
	"github.com/shrusti-bit/project-shelter/internal/ledger"
)

type seedItem struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	TargetAmount float64 `json:"targetAmount"`
}

func main() {
	var (
		fileFlag    string
		replaceFlag bool
	)
	flag.StringVar(&fileFlag, "file", "", "path to a JSON array of items to load")
	flag.BoolVar(&replaceFlag, "replace", false, "delete all existing items before loading")
	flag.Parse()

	if strings.TrimSpace(fileFlag) == "" {
		exitWithError(errors.New("-file is required"))
	}

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "seed")

	raw, err := os.ReadFile(fileFlag)
	if err != nil {
		exitWithError(fmt.Errorf("failed to read seed file: %w", err))
	}
	var seeds []seedItem
	if err := json.Unmarshal(raw, &seeds); err != nil {
		exitWithError(fmt.Errorf("failed to parse seed file: %w", err))
	}
	if len(seeds) == 0 {
		exitWithError(errors.New("seed file contains no items"))
	}

	if err := infra.Migrate(cfg.DatabaseURL, db.Migrations()); err != nil {
		exitWithError(fmt.Errorf("failed to apply migrations: %w", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer dbpool.Close()

	items := repo.NewItemRepository(dbpool)
	donations := repo.NewDonationRepository(dbpool)
	activity := repo.NewActivityRepository(dbpool)
	notifications := repo.NewNotificationRepository(dbpool)
	analytics := repo.NewAnalyticsRepository(dbpool)
	sink := event.NewSink(activity, notifications, analytics, logger)
	svc := ledger.NewService(items, donations, event.NewBus(), sink, logger)

	if replaceFlag {
		existing, err := items.List(ctx)
		if err != nil {
			exitWithError(fmt.Errorf("failed to list existing items: %w", err))
		}
		for _, item := range existing {
			if err := svc.DeleteItem(ctx, item.ID, "seed"); err != nil {
				exitWithError(fmt.Errorf("failed to delete item %s: %w", item.ID, err))
			}
		}
		logger.Info().Int("deleted", len(existing)).Msg("cleared existing items")
	}

	loaded := 0
	for i, s := range seeds {
		item, err := svc.CreateItem(ctx, s.Name, s.Description, domain.AmountFromDecimal(s.TargetAmount), "seed")
		if err != nil {
			exitWithError(fmt.Errorf("item %d (%q): %w", i, s.Name, err))
		}
		logger.Info().Str("id", item.ID).Str("name", item.Name).Msg("item loaded")
		loaded++
	}

	fmt.Printf("loaded %d item(s)\n", loaded)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

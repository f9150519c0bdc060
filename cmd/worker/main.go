package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shrusti-bit/project-shelter/internal/adapter/repo"
	"github.com/shrusti-bit/project-shelter/internal/event"
	"github.com/shrusti-bit/project-shelter/internal/infra"
	"github.com/shrusti-bit/project-shelter/internal/jobs"
)

const ledgerAuditInterval = 10 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	items := repo.NewItemRepository(dbpool)
	donations := repo.NewDonationRepository(dbpool)
	activity := repo.NewActivityRepository(dbpool)
	notifications := repo.NewNotificationRepository(dbpool)
	analytics := repo.NewAnalyticsRepository(dbpool)
	sink := event.NewSink(activity, notifications, analytics, logger)

	manager, err := jobs.NewManager(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create scheduler")
	}
	manager.Register(jobs.NewLedgerAuditJob(items, sink, ledgerAuditInterval, logger))
	manager.Register(jobs.NewPendingDigestJob(donations, sink, cfg.PendingDigestAge, logger))
	manager.Register(jobs.NewAnalyticsRollupJob(analytics, sink, logger))
	manager.Start()
	logger.Info().Msg("worker started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	manager.Stop()
	logger.Info().Msg("worker stopped")
}

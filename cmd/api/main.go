package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shrusti-bit/project-shelter/db"
	"github.com/shrusti-bit/project-shelter/internal/adapter/repo"
	"github.com/shrusti-bit/project-shelter/internal/event"
	"github.com/shrusti-bit/project-shelter/internal/http/handlers"
	httpapi "github.com/shrusti-bit/project-shelter/internal/http/httpapi"
	"github.com/shrusti-bit/project-shelter/internal/infra"
	"github.com/shrusti-bit/project-shelter/internal/ledger"
	"github.com/shrusti-bit/project-shelter/internal/storage"
	"github.com/shrusti-bit/project-shelter/internal/upload"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	if err := infra.Migrate(cfg.DatabaseURL, db.Migrations()); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}

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
	settings := repo.NewSettingsRepository(dbpool)
	analytics := repo.NewAnalyticsRepository(dbpool)

	bus := event.NewBus()
	sink := event.NewSink(activity, notifications, analytics, logger)
	svc := ledger.NewService(items, donations, bus, sink, logger)

	files, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("failed to open file store")
	}
	var client *upload.Client
	if cfg.UploadEndpoint != "" {
		client = upload.NewClient(cfg.UploadEndpoint, &http.Client{Timeout: 30 * time.Second}, logger)
	}
	uploads := upload.NewService(client, files, cfg.PublicBaseURL, logger)

	app := handlers.NewApp(svc, uploads, settings, activity, notifications, analytics, sink, bus, cfg, logger)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/bahsow/fleetdesk/internal/config"
	"github.com/bahsow/fleetdesk/internal/repository/mongodb"
	"github.com/bahsow/fleetdesk/internal/repository/sheets"
	"github.com/bahsow/fleetdesk/internal/scheduler"
	"github.com/bahsow/fleetdesk/internal/server/handlers"
	"github.com/bahsow/fleetdesk/internal/server/router"
	analyticssvc "github.com/bahsow/fleetdesk/internal/service/analytics"
	fleetsvc "github.com/bahsow/fleetdesk/internal/service/fleet"
	reportingsvc "github.com/bahsow/fleetdesk/internal/service/reporting"
	"github.com/bahsow/fleetdesk/internal/storage"
	"github.com/bahsow/fleetdesk/pkg/clients/notify"
	"github.com/bahsow/fleetdesk/pkg/logger"
)

// newHTTPServer carries no WriteTimeout: GET /api/v1/cars/watch holds a
// streaming response open for the life of the subscription, and a fixed write
// deadline would tear every stream down once it fires.
func newHTTPServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var photoStore storage.PhotoStore
	if cfg.Storage.Enabled() {
		minioStore, err := storage.NewMinioStore(context.Background(), storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		}, baseLogger.Named("storage.minio"))
		if err != nil {
			baseLogger.Fatal("failed to init photo storage", zap.Error(err))
		}
		photoStore = minioStore
		baseLogger.Info("photo storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		baseLogger.Warn("storage endpoint missing, photo uploads disabled")
	}

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		baseLogger.Info("sheets export enabled")
	} else {
		baseLogger.Warn("spreadsheet id missing, report export disabled")
	}

	var notifier notify.Client
	if cfg.Notify.Enabled() {
		notifier = notify.NewClient(cfg.Notify)
		baseLogger.Info("report webhook enabled")
	} else {
		baseLogger.Warn("webhook url missing, notifications disabled")
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
	}

	aggregator := analyticssvc.NewAggregator(loc, baseLogger.Named("svc.analytics"))
	fleetSvc := fleetsvc.NewService(mongoRepo, photoStore, baseLogger.Named("svc.fleet"))
	reportingSvc := reportingsvc.NewService(mongoRepo, aggregator, sheetsRepo, notifier, baseLogger.Named("svc.reporting"))

	fleetHandler := handlers.NewFleetHandler(fleetSvc, baseLogger.Named("handlers.fleet"))
	analyticsHandler := handlers.NewAnalyticsHandler(reportingSvc, baseLogger.Named("handlers.analytics"))
	engine := router.New(fleetHandler, analyticsHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, reportingSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := newHTTPServer(cfg.Server.Port, engine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

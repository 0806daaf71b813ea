package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"camportal/internal/config"
	"camportal/internal/database"
	"camportal/internal/database/migration"
	handlers "camportal/internal/http/handler"
	"camportal/internal/http/middleware"
	"camportal/internal/logger"
	"camportal/internal/metrics"
	"camportal/internal/otel"
	"camportal/internal/report"
	"camportal/internal/repository/postgres"
	"camportal/internal/rtcam"
	"camportal/internal/service"
	"camportal/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}
	defer shutdownTracing(context.Background())

	// PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}

	// S3-compatible object storage for generated workbooks
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalw("failed to initialize object storage", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	fleetMetrics, err := metrics.NewFleet(reg)
	if err != nil {
		log.Fatalw("failed to register metrics", "error", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalw("failed to register http metrics", "error", err)
	}

	// Provider client, services
	api := rtcam.New(cfg.RT)

	fleetSvc := service.NewFleetService(api, cfg.Cache, fleetMetrics)
	defer fleetSvc.Close()
	archiveSvc := service.NewArchiveService(api, cfg.Cache)
	defer archiveSvc.Close()

	reportRepo := postgres.NewReportPostgres(db)
	collector := report.NewCollector(api, log, cfg.Report)
	reportSvc := service.NewReportService(reportRepo, objStore, collector, report.NewBuilder(), log, fleetMetrics)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestLogger(log))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, handlers.Services{
		Fleet:    fleetSvc,
		Archives: archiveSvc,
		Reports:  reportSvc,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorw("failed to start server", "error", err)
			stop()
		}
	}()
	log.Infow("server_started", "port", cfg.Port)

	<-ctx.Done()
	stop()
	log.Infow("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = app.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warnw("server shutdown timeout", "timeout", shutdownTimeout)
	}
}

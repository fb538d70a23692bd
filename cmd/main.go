package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tournament-stats/config"
	"github.com/Dosada05/tournament-stats/db"
	"github.com/Dosada05/tournament-stats/handlers"
	"github.com/Dosada05/tournament-stats/metrics"
	"github.com/Dosada05/tournament-stats/repositories"
	api "github.com/Dosada05/tournament-stats/routes"
	"github.com/Dosada05/tournament-stats/services"
	"github.com/Dosada05/tournament-stats/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title Tournament Stats API
// @version 1.0
// @description Match lifecycle, standings, statistics, leaderboards and analytics for tournaments.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued by the identity service: "Bearer <jwt>".
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("log_level", cfg.LogLevel.String()),
		slog.Bool("snapshots", cfg.R2.Enabled()),
	)

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx, dbConn)
	cancelMigrate()
	if err != nil {
		logger.Error("failed to apply database schema", slog.Any("error", err))
		os.Exit(1)
	}

	// Cloudflare R2 is optional; without it dashboard snapshots are disabled.
	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(context.Background(), cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewPrometheus(registry)
	if err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	// Repositories
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	resultRepo := repositories.NewPostgresMatchResultRepository(dbConn)
	standingRepo := repositories.NewPostgresTournamentStandingRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	logger.Info("Repositories initialized")

	// Services
	matchService := services.NewMatchService(matchRepo, recorder, logger, nil)
	resultService := services.NewMatchResultService(resultRepo, matchRepo, logger)
	standingsService := services.NewStandingsService(
		standingRepo,
		matchRepo,
		resultRepo,
		registrationRepo,
		tournamentRepo,
		cfg.PointsScheme,
		recorder,
		logger,
		nil,
	)
	statisticsService := services.NewStatisticsService(playerRepo, teamRepo, tournamentRepo, matchRepo, registrationRepo, logger)
	leaderboardService := services.NewLeaderboardService(playerRepo, teamRepo, matchRepo, registrationRepo, recorder, logger)
	growthService := services.NewGrowthService(playerRepo, teamRepo, tournamentRepo, logger, nil)
	dashboardService := services.NewDashboardService(
		playerRepo,
		teamRepo,
		tournamentRepo,
		matchRepo,
		registrationRepo,
		leaderboardService,
		statisticsService,
		growthService,
		recorder,
		logger,
		nil,
	)
	exportService := services.NewExportService(leaderboardService, dashboardService, uploader, logger)
	logger.Info("Services initialized")

	shutdownCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	if cfg.SnapshotInterval > 0 && exportService.SnapshotsEnabled() {
		go runSnapshotScheduler(shutdownCtx, exportService, cfg.SnapshotInterval, logger)
	}

	// HTTP handlers
	matchHandler := handlers.NewMatchHandler(matchService)
	resultHandler := handlers.NewMatchResultHandler(resultService)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	statisticsHandler := handlers.NewStatisticsHandler(statisticsService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, exportService)
	analyticsHandler := handlers.NewAnalyticsHandler(dashboardService, growthService, exportService)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			JWTSecret:          cfg.JWTSecretKey,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			Logger:             logger,
			Metrics:            recorder,
			MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		},
		matchHandler,
		resultHandler,
		standingsHandler,
		statisticsHandler,
		leaderboardHandler,
		analyticsHandler,
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		stopBackground()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// runSnapshotScheduler stores a dashboard snapshot every interval until ctx is done.
func runSnapshotScheduler(ctx context.Context, exports services.ExportService, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("Snapshot scheduler started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Snapshot scheduler stopped")
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, interval)
			snapshot, err := exports.CreateDashboardSnapshot(runCtx)
			cancel()
			if err != nil {
				logger.Error("Scheduler: dashboard snapshot failed", slog.Any("error", err))
				continue
			}
			logger.Info("Scheduler: dashboard snapshot stored", slog.String("key", snapshot.Key))
		}
	}
}

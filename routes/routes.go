package routes

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/tournament-stats/handlers"
	"github.com/Dosada05/tournament-stats/metrics"
	"github.com/Dosada05/tournament-stats/middleware"
	"github.com/Dosada05/tournament-stats/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/tournament-stats/docs"
)

type Options struct {
	JWTSecret          string
	CORSAllowedOrigins []string
	Logger             *slog.Logger
	Metrics            metrics.Recorder
	// MetricsHandler serves /metrics; nil leaves the route out.
	MetricsHandler http.Handler
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	matchHandler *handlers.MatchHandler,
	resultHandler *handlers.MatchResultHandler,
	standingsHandler *handlers.StandingsHandler,
	statisticsHandler *handlers.StatisticsHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	analyticsHandler *handlers.AnalyticsHandler,
) {
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(middleware.Metrics(opts.Metrics))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", handlers.HealthHandler)
	if opts.MetricsHandler != nil {
		router.Handle("/metrics", opts.MetricsHandler)
	}
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	organizerOnly := middleware.Authorize(models.RoleAdmin, models.RoleOrganizer)

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", matchHandler.ListHandler)
		r.Get("/{matchID}", matchHandler.GetByIDHandler)
		r.Get("/{matchID}/results", resultHandler.ListHandler)
		r.Get("/{matchID}/summary", resultHandler.SummaryHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizerOnly)

			r.Post("/", matchHandler.CreateHandler)
			r.Put("/{matchID}", matchHandler.UpdateHandler)
			r.Delete("/{matchID}", matchHandler.DeleteHandler)

			r.Post("/{matchID}/start", matchHandler.StartHandler)
			r.Post("/{matchID}/complete", matchHandler.CompleteHandler)
			r.Post("/{matchID}/cancel", matchHandler.CancelHandler)
			r.Post("/{matchID}/postpone", matchHandler.PostponeHandler)
			r.Post("/{matchID}/forfeit", matchHandler.ForfeitHandler)
			r.Patch("/{matchID}/status", matchHandler.SetStatusHandler)

			r.Post("/bulk/status", matchHandler.BulkStatusHandler)
			r.Post("/bulk/cancel", matchHandler.BulkCancelHandler)

			r.Post("/{matchID}/results", resultHandler.CreateHandler)
			r.Post("/{matchID}/results/bulk", resultHandler.BulkCreateHandler)
		})
	})

	router.Route("/match-results/{resultID}", func(r chi.Router) {
		r.Get("/", resultHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizerOnly)
			r.Put("/", resultHandler.UpdateHandler)
			r.Delete("/", resultHandler.DeleteHandler)
		})
	})

	router.Route("/tournaments/{tournamentID}/standings", func(r chi.Router) {
		r.Get("/", standingsHandler.ListHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizerOnly)
			r.Put("/", standingsHandler.BulkUpsertHandler)
			r.Post("/recalculate", standingsHandler.RecalculateHandler)
			r.Post("/compute", standingsHandler.ComputeHandler)
		})
	})

	router.Route("/statistics", func(r chi.Router) {
		r.Get("/players/{playerID}", statisticsHandler.PlayerHandler)
		r.Get("/teams/{teamID}", statisticsHandler.TeamHandler)
		r.Get("/tournaments", statisticsHandler.ListTournamentsHandler)
		r.Get("/tournaments/{tournamentID}", statisticsHandler.TournamentHandler)
	})

	router.Route("/leaderboards", func(r chi.Router) {
		r.Get("/", leaderboardHandler.GetHandler)
		r.Get("/export", leaderboardHandler.ExportHandler)
	})

	router.Route("/analytics", func(r chi.Router) {
		r.Get("/dashboard", analyticsHandler.DashboardHandler)
		r.Get("/growth", analyticsHandler.GrowthHandler)

		r.With(authenticate, organizerOnly).Post("/dashboard/snapshots", analyticsHandler.SnapshotHandler)
	})
}

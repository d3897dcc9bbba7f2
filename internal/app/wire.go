package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tenpin/leaguebook/internal/auth"
	"github.com/tenpin/leaguebook/internal/guard"
	"github.com/tenpin/leaguebook/internal/handler"
	"github.com/tenpin/leaguebook/internal/infra"
	"github.com/tenpin/leaguebook/internal/repository"
	"github.com/tenpin/leaguebook/internal/service"
	"github.com/tenpin/leaguebook/internal/standings"
)

// Extraction circuit breaker settings.
const (
	extractionFailThreshold = 5
	extractionResetTimeout  = 30 * time.Second
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Store   repository.Store
	JWTMgr  *auth.JWTManager
	Logger  *slog.Logger
	Metrics *infra.Metrics // nil disables /metrics
	// Extractor is nil when photo extraction is not configured.
	Extractor           service.Extractor
	ExtractionRateLimit int // requests per client per minute
	CORSAllowedOrigins  string
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	store := deps.Store
	logger := deps.Logger

	// Core
	engine := standings.NewEngine(store, logger, deps.Metrics)

	// Services
	leagueSvc := service.NewLeagueService(store, engine, logger)
	rosterSvc := service.NewRosterService(store, engine, logger)
	scheduleSvc := service.NewScheduleService(store, deps.Metrics, logger)
	extractionSvc := service.NewExtractionService(
		deps.Extractor,
		store,
		guard.NewRateLimiter(deps.ExtractionRateLimit, time.Minute),
		guard.NewCircuitBreaker(extractionFailThreshold, extractionResetTimeout),
		deps.Metrics,
		logger,
	)

	// Handlers
	leagueHandler := handler.NewLeagueHandler(leagueSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
	gameHandler := handler.NewGameHandler(scheduleSvc)
	extractionHandler := handler.NewExtractionHandler(extractionSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger, deps.Metrics))
	r.Use(handler.CORS(deps.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Operational (no auth)
	r.Get("/health", handler.HealthHandler(store))
	r.Get("/openapi.json", handler.OpenAPIHandler())
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Public reads
		r.Get("/dashboard", leagueHandler.Dashboard)
		r.Get("/leagues", leagueHandler.List)
		r.Get("/leagues/{id}", leagueHandler.Overview)
		r.Get("/leagues/{id}/info", leagueHandler.Info)
		r.Get("/leagues/{id}/teams", leagueHandler.Teams)
		r.Get("/leagues/{id}/standings", leagueHandler.Standings)
		r.Get("/leagues/{id}/standings.xlsx", leagueHandler.StandingsXLSX)
		r.Get("/leagues/{id}/standings.png", leagueHandler.StandingsChart)
		r.Get("/leagues/{id}/scores", leagueHandler.Scores)
		r.Get("/teams/{id}", rosterHandler.GetTeam)
		r.Get("/bowlers/{id}", rosterHandler.GetBowler)
		r.Get("/games/{id}", gameHandler.Get)

		// Score entry: secretaries and admins
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(deps.JWTMgr))
			r.Use(auth.RequireRole(auth.ScoreRoles()...))

			r.Post("/games/{id}/scores", gameHandler.SubmitScores)
			r.Post("/extract/roster", extractionHandler.Roster)
			r.Post("/extract/scores", extractionHandler.Scores)
		})

		// League management: admins only
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(deps.JWTMgr))
			r.Use(auth.RequireRole(auth.ManageRoles()...))

			r.Post("/leagues", leagueHandler.Create)
			r.Patch("/leagues/{id}", leagueHandler.Update)
			r.Delete("/leagues/{id}", leagueHandler.Delete)
			r.Post("/leagues/{id}/calculate-finals", leagueHandler.CalculateFinals)

			r.Post("/teams", rosterHandler.CreateTeam)
			r.Patch("/teams/{id}", rosterHandler.UpdateTeam)
			r.Delete("/teams/{id}", rosterHandler.DeleteTeam)

			r.Post("/bowlers", rosterHandler.CreateBowler)
			r.Patch("/bowlers/{id}", rosterHandler.UpdateBowler)
			r.Delete("/bowlers/{id}", rosterHandler.DeleteBowler)

			r.Post("/games", gameHandler.Create)
			r.Delete("/games/{id}", gameHandler.Delete)
		})
	})

	return r
}

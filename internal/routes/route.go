package routes

import (
	"context"
	"net/http"
	"time"

	"hazard-admin/internal/auth"
	"hazard-admin/internal/config"
	"hazard-admin/internal/handlers"
	"hazard-admin/internal/logger"
	mdlwr "hazard-admin/internal/middleware"
	"hazard-admin/internal/observability"
	"hazard-admin/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies is everything the router hands to its handlers.
type Dependencies struct {
	Config  *config.Config
	Store   *services.ZoneStore
	Metrics *observability.Metrics
	JWT     *auth.JWTManager // nil unless AUTH_ENABLED
	Clock   clockwork.Clock
}

// NewRouter builds the HTTP API. ctx bounds background work such as the rate
// limiter's visitor cleanup.
func NewRouter(ctx context.Context, deps Dependencies, logr *logger.Logger) http.Handler {
	cfg := deps.Config
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	limiter := mdlwr.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute, logr.Logger)
	go limiter.Cleanup(ctx)

	zoneHandler := handlers.NewZoneHandler(deps.Store, logr.Logger)
	editHandler := handlers.NewEditHandler(deps.Store, logr.Logger)
	catalogHandler := handlers.NewCatalogHandler(deps.Store.Catalog(), deps.Store.MinRadius())
	transferHandler := handlers.NewTransferHandler(deps.Store, cfg.MaxImportBytes, deps.Clock, deps.Metrics, logr.Logger)

	// Writes require a bearer token only when auth is switched on.
	protect := func(next http.Handler) http.Handler { return next }
	var authHandler *handlers.AuthHandler
	if deps.JWT != nil {
		authSvc := services.NewAuthService(deps.JWT, cfg, logr.Logger)
		authHandler = handlers.NewAuthHandler(authSvc, logr.Logger, cfg)
		protect = mdlwr.NewAuthMiddleware(deps.JWT, logr.Logger).JWTAuth
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.Middleware)

		if authHandler != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", authHandler.LoginLocal)
				r.Post("/ldap", authHandler.LoginLDAP)
				r.Post("/refresh", authHandler.Refresh)
			})
		}

		r.Get("/catalog", catalogHandler.GetCatalog)

		r.Route("/zones", func(r chi.Router) {
			r.Get("/", zoneHandler.ListZones)
			r.Get("/geojson", zoneHandler.GetGeoJSON)
			r.Get("/containing", zoneHandler.GetContaining)
			r.Post("/draft/radius", zoneHandler.StepDraftRadius)
			r.Get("/{id}", zoneHandler.GetZone)
			r.Get("/{id}/view", zoneHandler.GetZoneView)

			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Post("/", zoneHandler.CreateZone)
				r.Delete("/", zoneHandler.ClearZones)
				r.Put("/{id}", zoneHandler.UpdateZone)
				r.Delete("/{id}", zoneHandler.DeleteZone)
				r.Post("/{id}/edit", editHandler.BeginEdit)
			})
		})

		r.Route("/edit", func(r chi.Router) {
			r.Get("/", editHandler.GetEdit)

			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Put("/", editHandler.CommitEdit)
				r.Delete("/", editHandler.DiscardEdit)
				r.Post("/radius", editHandler.StepRadius)
			})
		})

		r.Route("/transfer", func(r chi.Router) {
			r.Get("/export", transferHandler.Export)
			r.With(protect).Post("/import", transferHandler.Import)
		})
	})

	return r
}

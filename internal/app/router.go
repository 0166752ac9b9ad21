package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/datadrop/datadrop/internal/admin"
	"github.com/datadrop/datadrop/internal/auth"
	"github.com/datadrop/datadrop/internal/observability"
	"github.com/datadrop/datadrop/internal/platform/httpx"
	"github.com/datadrop/datadrop/internal/storage"
	"github.com/datadrop/datadrop/internal/uploads"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Guard          *auth.Guard
	AuthHandler    *auth.Handler
	UploadHandler  *uploads.Handler
	StorageHandler *storage.Handler
	AdminHandler   *admin.Handler
	Pool           *pgxpool.Pool
	Redis          *redis.Client
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with datadrop defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{
			"message": "Datadrop API",
			"version": "1.0.0",
		})
	})

	r.Get("/health", healthHandler(params.Pool, params.Redis))

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(params.Guard.RequireUser)
			params.UploadHandler.MountRoutes(r)
			params.StorageHandler.MountRoutes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(params.Guard.RequireAdmin)
			params.AdminHandler.MountRoutes(r)
		})
	})

	return r
}

func healthHandler(pool *pgxpool.Pool, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ctx := errgroup.WithContext(r.Context())
		if pool != nil {
			g.Go(func() error { return pool.Ping(ctx) })
		}
		if rdb != nil {
			g.Go(func() error { return rdb.Ping(ctx).Err() })
		}
		if err := g.Wait(); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

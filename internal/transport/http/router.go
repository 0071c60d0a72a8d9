// Package httptransport assembles the public router. It owns no business
// logic; module handlers register their own routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	adminmodule "beam/internal/admin"
	"beam/internal/platform/config"
	"beam/internal/platform/metrics"
	"beam/internal/platform/middleware"
	planhandler "beam/internal/plan/handler"
	registrationhandler "beam/internal/registration/handler"
	"beam/pkg/platform/httputil"
)

// Deps carries everything the router mounts.
type Deps struct {
	Registration *registrationhandler.Handler
	Plans        *planhandler.Handler
	Admin        *adminmodule.Handler
	Metrics      *metrics.Metrics
	Config       config.Config
	Logger       *slog.Logger
	Health       func() map[string]string
}

// NewRouter wires middleware and mounts every module.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Timeout(30 * time.Second))

	// The wizard runs in a browser on another origin.
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}).Handler)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"service": "beam-api",
			"status":  "running",
		})
	})
	r.Get("/health", handleHealth(d.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	d.Registration.Register(r)
	d.Plans.Register(r)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(d.Config.AdminToken, d.Config.AdminTokenHash, d.Logger))
		d.Admin.Register(r)
	})

	return r
}

func handleHealth(checks func() map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		results := map[string]string{}
		if checks != nil {
			results = checks()
		}
		status, overall := http.StatusOK, "healthy"
		for _, v := range results {
			if v != "ok" {
				status, overall = http.StatusServiceUnavailable, "degraded"
			}
		}
		httputil.WriteJSON(w, status, map[string]any{
			"status": overall,
			"checks": results,
		})
	}
}

package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mobywatel/internal/audit"
	"mobywatel/internal/platform/metrics"
	"mobywatel/internal/platform/middleware"
)

// Deps collects everything the router needs. Handlers are built by the
// caller so tests can wire a subset.
type Deps struct {
	Auth     *AuthHandler
	Citizen  *CitizenHandler
	Official *OfficialHandler
	Admin    *AdminHandler
	Photo    *PhotoHandler
	Audit    *audit.Recorder
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Health   func(r chi.Router)
}

// NewRouter assembles the full route table behind the shared middleware
// chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Latency(deps.Metrics))
	if deps.Audit != nil {
		r.Use(middleware.Audit(deps.Audit))
	}

	r.Handle("/metrics", promhttp.Handler())
	if deps.Health != nil {
		deps.Health(r)
	} else {
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	}

	deps.Auth.Register(r)
	deps.Citizen.Register(r)
	deps.Official.Register(r)
	deps.Admin.Register(r)
	deps.Photo.Register(r)
	return r
}

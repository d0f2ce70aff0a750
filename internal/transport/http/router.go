package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rwa-ledger/internal/bond"
	"rwa-ledger/internal/carbon"
	"rwa-ledger/internal/oil"
	"rwa-ledger/internal/platform/metrics"
	"rwa-ledger/internal/platform/middleware"
	"rwa-ledger/internal/token"
)

// RouterConfig carries everything the router mounts. Each asset gets its
// lifecycle routes plus a token passthrough to its own ledger.
type RouterConfig struct {
	Bond         *bond.Service
	BondLedger   token.Ledger
	Carbon       *carbon.Service
	CarbonLedger token.Ledger
	Oil          *oil.Service
	OilLedger    token.Ledger

	Validator middleware.TokenValidator
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// NewRouter wires the full HTTP surface: per-asset lifecycle routes, token
// passthroughs, health and metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.Trace("rwa-ledger"))
	r.Use(middleware.Latency(cfg.Metrics, "all"))

	requireAuth := middleware.RequireAuth(cfg.Validator, cfg.Logger)

	r.Route("/bond", func(r chi.Router) {
		NewBondHandler(cfg.Bond).Register(r, requireAuth)
		NewTokenHandler(cfg.BondLedger).Register(r, requireAuth)
	})
	r.Route("/carbon", func(r chi.Router) {
		NewCarbonHandler(cfg.Carbon).Register(r, requireAuth)
		NewTokenHandler(cfg.CarbonLedger).Register(r, requireAuth)
	})
	r.Route("/oil", func(r chi.Router) {
		NewOilHandler(cfg.Oil).Register(r, requireAuth)
		NewTokenHandler(cfg.OilLedger).Register(r, requireAuth)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trademaster-labs/trademaster/internal/database"
	mw "github.com/trademaster-labs/trademaster/internal/middleware"
	inats "github.com/trademaster-labs/trademaster/internal/nats"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AdminRateLimiter   func(http.Handler) http.Handler
}

// NewRouter assembles the admin API router with health and metrics
// endpoints.
func NewRouter(pool *pgxpool.Pool, natsClient *inats.Client, tokens *TokenManager, cfg RouterConfig, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe, always 200 with no dependency checks.
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe checks DB and NATS.
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if natsClient != nil && !natsClient.Healthy() {
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else if natsClient == nil {
			health["nats"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Admin API v1, token-protected and optionally rate-limited.
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AdminRateLimiter != nil {
			r.Use(cfg.AdminRateLimiter)
		}
		r.Use(tokens.Middleware)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/stats", h.GetStats)
			r.Get("/trades", h.ListTrades)

			r.Route("/memories", func(r chi.Router) {
				r.Get("/", h.ListMemories)
				r.Post("/", h.CreateMemory)
				r.Delete("/", h.DeleteMemories)
			})

			r.Post("/conversation/reset", h.ResetConversation)
		})
	})

	return r
}

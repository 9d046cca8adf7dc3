package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/folio/pkg/observability"
)

// OutboxStats reports relay progress. *outbox.Processor satisfies it.
type OutboxStats interface {
	GetStats() outbox.Stats
}

// NewWorkerHandler serves the event worker's health endpoints: /healthz reports the
// outbox relay and /readyz runs the registered health checks.
func NewWorkerHandler(relay OutboxStats, health *observability.HealthRegistry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		stats := relay.GetStats()
		status := http.StatusOK
		state := "ok"
		if !stats.IsRunning {
			status = http.StatusServiceUnavailable
			state = "stopped"
		}
		writeJSON(w, status, map[string]any{
			"status":            state,
			"running":           stats.IsRunning,
			"published":         stats.PublishedCount,
			"failed":            stats.FailedCount,
			"dead":              stats.DeadCount,
			"lag_seconds":       stats.LagSeconds,
			"last_processed_at": stats.LastProcessedAt,
			"last_error_at":     stats.LastErrorAt,
			"last_error":        stats.LastError,
		})
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if health == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
			return
		}
		overall := health.GetOverallHealth(r.Context())
		if overall.Status == observability.HealthStatusUnhealthy {
			writeJSON(w, http.StatusServiceUnavailable, overall)
			return
		}
		writeJSON(w, http.StatusOK, overall)
	})

	return r
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"thecrew/internal/httputil"
)

// Pinger checks a backing service; the postgres pool satisfies it
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and, when a database is configured, its reachability
type HealthHandler struct {
	db     Pinger // nil with the in-memory backend
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HealthCheck reports service health
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Error("health check failed", "error", err)
			httputil.RespondError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks   map[string]Check
	draining func() bool
	log      *slog.Logger
}

// create a new instance of the health handler. draining may be nil.
func NewHealthHandler(log *slog.Logger, checks map[string]Check, draining func() bool) *HealthHandler {
	if log == nil {
		log = slog.Default()
	}
	if draining == nil {
		draining = func() bool { return false }
	}
	return &HealthHandler{checks: checks, draining: draining, log: log}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz pings every dependency and answers 503 if any of them fails or the
// server is draining.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.draining() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(cctx); err != nil {
			h.log.WarnContext(ctx.Request.Context(), "readiness check failed", "check", name, "err", err)
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "failed": failed})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

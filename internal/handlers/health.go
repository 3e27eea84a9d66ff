package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/netsentry-io/netsentry/common/httputil"
	"github.com/netsentry-io/netsentry/internal/repository"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	repo repository.Repository
}

func NewHealthHandler(repo repository.Repository) *HealthHandler {
	return &HealthHandler{repo: repo}
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready checks that storage answers within a short deadline.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := h.repo.ListCredentials(ctx, "readiness-probe"); err != nil {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/netsentry-io/netsentry/common/httputil"
	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/internal/aggregate"
	"github.com/netsentry-io/netsentry/internal/keys"
	"github.com/netsentry-io/netsentry/internal/middleware"
)

// StatsHandler serves the dashboard aggregate reads. Every route takes
// a credential ID and checks tenant ownership before touching data.
type StatsHandler struct {
	aggregates *aggregate.Service
	keys       *keys.Service
	logger     *logging.Logger
}

func NewStatsHandler(aggregates *aggregate.Service, keySvc *keys.Service, logger *logging.Logger) *StatsHandler {
	return &StatsHandler{aggregates: aggregates, keys: keySvc, logger: logger}
}

// owned resolves the credential in the path and enforces ownership.
func (h *StatsHandler) owned(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := h.keys.Get(r.Context(), id, middleware.TenantID(r.Context())); err != nil {
		respondError(w, h.logger, err)
		return "", false
	}
	return id, true
}

// Rollup returns the summary over the recent incident window.
func (h *StatsHandler) Rollup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.owned(w, r)
	if !ok {
		return
	}

	summary, err := h.aggregates.Rollup(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// Series returns the minute-bucketed chart series. Query parameters:
// range (today, 7d, 30d, 90d) and protocols (comma-separated codes).
func (h *StatsHandler) Series(w http.ResponseWriter, r *http.Request) {
	id, ok := h.owned(w, r)
	if !ok {
		return
	}

	from, to, err := aggregate.ParseRange(r.URL.Query().Get("range"), time.Now())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	protocols, err := parseProtocols(r.URL.Query().Get("protocols"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid protocols parameter")
		return
	}

	series, err := h.aggregates.Series(r.Context(), id, from, to, protocols)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, series)
}

// Incidents returns the newest incidents for the credential.
func (h *StatsHandler) Incidents(w http.ResponseWriter, r *http.Request) {
	id, ok := h.owned(w, r)
	if !ok {
		return
	}

	incidents, err := h.aggregates.RecentIncidents(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, incidents)
}

// ThreatIPs returns the most recently updated per-IP aggregates.
func (h *StatsHandler) ThreatIPs(w http.ResponseWriter, r *http.Request) {
	id, ok := h.owned(w, r)
	if !ok {
		return
	}

	records, err := h.aggregates.RecentThreatIPs(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func parseProtocols(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

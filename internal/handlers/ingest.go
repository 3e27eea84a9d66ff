package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/netsentry-io/netsentry/common/httputil"
	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/internal/apperr"
	"github.com/netsentry-io/netsentry/internal/ingest"
	"github.com/netsentry-io/netsentry/internal/models"
)

// AuthKeyHeader carries the detector's ingest token.
const AuthKeyHeader = "Auth-Key"

// IngestHandler serves the detector-facing endpoints.
type IngestHandler struct {
	service *ingest.Service
	logger  *logging.Logger
}

func NewIngestHandler(service *ingest.Service, logger *logging.Logger) *IngestHandler {
	return &IngestHandler{service: service, logger: logger}
}

// HandleReport ingests one classified telemetry report.
func (h *IngestHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	var req models.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	defer r.Body.Close()

	resp, err := h.service.IngestReport(r.Context(), r.Header.Get(AuthKeyHeader), &req)
	if err != nil {
		// A delivery failure arrives after the incident write committed;
		// the stored outcome is returned with the failure as metadata.
		if resp != nil && errors.Is(err, apperr.ErrChannel) {
			h.logger.WarnContext(r.Context(), "alert delivery failed",
				logging.Error(err),
			)
			resp.AlertError = err.Error()
			httputil.WriteJSON(w, http.StatusOK, resp)
			return
		}
		respondError(w, h.logger, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleThreatIPs ingests a per-IP aggregate batch.
func (h *IngestHandler) HandleThreatIPs(w http.ResponseWriter, r *http.Request) {
	var req models.ThreatIPBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	defer r.Body.Close()

	written, err := h.service.IngestThreatIPs(r.Context(), r.Header.Get(AuthKeyHeader), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"processed": written,
	})
}

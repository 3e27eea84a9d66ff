package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/netsentry-io/netsentry/common/httputil"
	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/internal/aggregate"
	"github.com/netsentry-io/netsentry/internal/middleware"
)

// UsageHandler serves tenant usage reports in JSON and CSV form.
type UsageHandler struct {
	aggregates *aggregate.Service
	logger     *logging.Logger
}

func NewUsageHandler(aggregates *aggregate.Service, logger *logging.Logger) *UsageHandler {
	return &UsageHandler{aggregates: aggregates, logger: logger}
}

func (h *UsageHandler) report(w http.ResponseWriter, r *http.Request) (*aggregate.UsageReport, bool) {
	from, to, err := aggregate.ParseRange(r.URL.Query().Get("range"), time.Now())
	if err != nil {
		respondError(w, h.logger, err)
		return nil, false
	}

	report, err := h.aggregates.Usage(r.Context(), middleware.TenantID(r.Context()), from, to)
	if err != nil {
		respondError(w, h.logger, err)
		return nil, false
	}
	return report, true
}

// Report returns the windowed usage summary.
func (h *UsageHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// Export streams the usage summary as CSV.
func (h *UsageHandler) Export(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="usage.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"date", "reports", "ip_batches"})
	for _, day := range report.Days {
		_ = cw.Write([]string{day.Date, strconv.Itoa(day.Reports), strconv.Itoa(day.IPBatches)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("failed to write usage csv", logging.Error(err))
	}
}

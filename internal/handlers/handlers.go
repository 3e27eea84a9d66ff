// Package handlers exposes the HTTP surface of the pipeline: the
// detector-facing ingest endpoints and the dashboard API.
package handlers

import (
	"net/http"

	"github.com/netsentry-io/netsentry/common/httputil"
	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/internal/apperr"
)

// respondError maps a pipeline error onto its HTTP status. Server-side
// failures are logged; client errors just echo the message.
func respondError(w http.ResponseWriter, logger *logging.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		logger.Error("request failed", logging.Error(err))
		httputil.WriteError(w, status, "internal server error")
		return
	}
	httputil.WriteError(w, status, err.Error())
}

// Package server wires the HTTP routes and owns the server lifecycle.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	commonmw "github.com/netsentry-io/netsentry/common/middleware"
	"github.com/netsentry-io/netsentry/internal/handlers"
	"github.com/netsentry-io/netsentry/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Ingest      *handlers.IngestHandler
	Auth        *handlers.AuthHandler
	Keys        *handlers.KeysHandler
	Stats       *handlers.StatsHandler
	Preferences *handlers.PreferencesHandler
	Usage       *handlers.UsageHandler
	Health      *handlers.HealthHandler
}

// NewRouter constructs the route table. Detector endpoints carry their
// own token auth; the dashboard API sits behind the session middleware.
func NewRouter(h Handlers, auth *middleware.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	// Detector-facing ingest endpoints, authenticated by ingest token
	mux.HandleFunc("POST /api/v1/ingest/report", h.Ingest.HandleReport)
	mux.HandleFunc("POST /api/v1/ingest/ip-threats", h.Ingest.HandleThreatIPs)

	// Session exchange
	mux.HandleFunc("POST /api/v1/auth/session", h.Auth.CreateSession)

	// Credential management
	mux.HandleFunc("POST /api/v1/keys", auth.RequireSession(h.Keys.Create))
	mux.HandleFunc("GET /api/v1/keys", auth.RequireSession(h.Keys.List))
	mux.HandleFunc("GET /api/v1/keys/{id}", auth.RequireSession(h.Keys.Get))
	mux.HandleFunc("PATCH /api/v1/keys/{id}", auth.RequireSession(h.Keys.Update))
	mux.HandleFunc("DELETE /api/v1/keys/{id}", auth.RequireSession(h.Keys.Delete))
	mux.HandleFunc("PUT /api/v1/keys/{id}/status", auth.RequireSession(h.Keys.SetStatus))
	mux.HandleFunc("POST /api/v1/keys/{id}/reveal", auth.RequireSession(h.Keys.Reveal))
	mux.HandleFunc("POST /api/v1/keys/{id}/reveal-ingest", auth.RequireSession(h.Keys.RevealIngestToken))
	mux.HandleFunc("PUT /api/v1/keys/{id}/callback", auth.RequireSession(h.Keys.SetCallback))
	mux.HandleFunc("POST /api/v1/keys/{id}/callback/test", auth.RequireSession(h.Keys.TestCallback))

	// Dashboard aggregates
	mux.HandleFunc("GET /api/v1/stats/{id}/rollup", auth.RequireSession(h.Stats.Rollup))
	mux.HandleFunc("GET /api/v1/stats/{id}/series", auth.RequireSession(h.Stats.Series))
	mux.HandleFunc("GET /api/v1/stats/{id}/incidents", auth.RequireSession(h.Stats.Incidents))
	mux.HandleFunc("GET /api/v1/stats/{id}/threat-ips", auth.RequireSession(h.Stats.ThreatIPs))

	// Notification preferences
	mux.HandleFunc("GET /api/v1/notifications", auth.RequireSession(h.Preferences.Get))
	mux.HandleFunc("PUT /api/v1/notifications", auth.RequireSession(h.Preferences.Update))

	// Usage metering
	mux.HandleFunc("GET /api/v1/usage", auth.RequireSession(h.Usage.Report))
	mux.HandleFunc("GET /api/v1/usage/export", auth.RequireSession(h.Usage.Export))

	// Health endpoints
	mux.HandleFunc("GET /healthz", h.Health.Health)
	mux.HandleFunc("GET /readyz", h.Health.Ready)

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	cors := commonmw.CORS(commonmw.DefaultCORSConfig())
	return commonmw.RequestID(cors(mux))
}

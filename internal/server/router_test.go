package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/internal/aggregate"
	"github.com/netsentry-io/netsentry/internal/alert"
	"github.com/netsentry-io/netsentry/internal/events"
	"github.com/netsentry-io/netsentry/internal/handlers"
	"github.com/netsentry-io/netsentry/internal/ingest"
	"github.com/netsentry-io/netsentry/internal/keys"
	"github.com/netsentry-io/netsentry/internal/middleware"
	"github.com/netsentry-io/netsentry/internal/models"
	"github.com/netsentry-io/netsentry/internal/ratelimit"
	"github.com/netsentry-io/netsentry/internal/repository"
	"github.com/netsentry-io/netsentry/pkg/tokens"
)

type nullChannel struct{}

func (nullChannel) Send(_ context.Context, _ string, _ *models.Incident) error { return nil }

type failingChannel struct{ err error }

func (f failingChannel) Send(_ context.Context, _ string, _ *models.Incident) error { return f.err }

type testServer struct {
	router      http.Handler
	keys        *keys.Service
	ingestToken string
	apiKey      string
	credID      string
	session     string
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithChannel(t, nullChannel{})
}

func newTestServerWithChannel(t *testing.T, ch alert.Channel) *testServer {
	t.Helper()

	logger := logging.New(slog.LevelError, "text")
	repo := repository.NewInMemoryRepository()
	keySvc := keys.NewService(repo, "router-test-salt", logger)
	dispatcher := alert.NewDispatcher(repo, ch, logger)
	publisher := events.NewPublisher(nil, logger)
	ingestSvc := ingest.NewService(repo, keySvc, dispatcher, publisher, &ratelimit.NoOpRateLimiter{}, 100, logger)
	aggSvc := aggregate.NewService(repo, nil, logger)
	tg := tokens.NewTokenGenerator("router-test-jwt-secret", 15*time.Minute)

	router := NewRouter(Handlers{
		Ingest:      handlers.NewIngestHandler(ingestSvc, logger),
		Auth:        handlers.NewAuthHandler(keySvc, tg, logger),
		Keys:        handlers.NewKeysHandler(keySvc, logger),
		Stats:       handlers.NewStatsHandler(aggSvc, keySvc, logger),
		Preferences: handlers.NewPreferencesHandler(dispatcher, repo, logger),
		Usage:       handlers.NewUsageHandler(aggSvc, logger),
		Health:      handlers.NewHealthHandler(repo),
	}, middleware.NewAuthMiddleware(tg))

	cred, apiKey, ingestToken, err := keySvc.Issue(context.Background(), "tenant-1", "sensor", "")
	require.NoError(t, err)

	ts := &testServer{
		router:      router,
		keys:        keySvc,
		ingestToken: ingestToken,
		apiKey:      apiKey,
		credID:      cred.ID,
	}

	// Exchange the API key for a session token through the real endpoint.
	rec := ts.do(http.MethodPost, "/api/v1/auth/session", map[string]string{"api_key": apiKey}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sess struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	ts.session = sess.Token

	return ts
}

func (ts *testServer) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) doSession(method, path string, body any) *httptest.ResponseRecorder {
	return ts.do(method, path, body, map[string]string{"Authorization": "Bearer " + ts.session})
}

// reportTime is pinned so every report in a test lands in one minute
// bucket and stays inside the default query windows.
var reportTime = time.Now().UTC().Add(-time.Hour).Truncate(time.Minute)

func ingestBody() *models.ReportRequest {
	return &models.ReportRequest{
		Label:      "UDP_FLOOD",
		Confidence: "92%",
		Timestamp:  reportTime.Format(time.RFC3339),
		Flow:       models.FlowDescriptor{SourceIP: "203.0.113.7", Protocol: 17},
	}
}

func TestRouter_IngestReport(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/ingest/report", ingestBody(),
		map[string]string{"Auth-Key": ts.ingestToken})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "high", resp.Severity)
	assert.Equal(t, "active", resp.Status)
	assert.True(t, resp.EmailAlertEnabled)
}

func TestRouter_IngestReportAlertFailureKeepsOutcome(t *testing.T) {
	ts := newTestServerWithChannel(t, failingChannel{err: errors.New("smtp unreachable")})

	// A configured recipient makes the dispatcher attempt delivery.
	put := ts.doSession(http.MethodPut, "/api/v1/notifications",
		models.UpdatePreferenceRequest{Email: "ops@example.com"})
	require.Equal(t, http.StatusOK, put.Code)

	rec := ts.do(http.MethodPost, "/api/v1/ingest/report", ingestBody(),
		map[string]string{"Auth-Key": ts.ingestToken})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "high", resp.Severity)
	assert.Equal(t, "active", resp.Status)
	assert.True(t, resp.EmailAlertEnabled)
	assert.Contains(t, resp.AlertError, "smtp unreachable")

	// The incident write stands despite the failed delivery.
	list := ts.doSession(http.MethodGet, "/api/v1/stats/"+ts.credID+"/incidents", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var incidents []models.Incident
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &incidents))
	assert.Len(t, incidents, 1)
}

func TestRouter_IngestReportAuthOutcomes(t *testing.T) {
	ts := newTestServer(t)

	// Missing key
	rec := ts.do(http.MethodPost, "/api/v1/ingest/report", ingestBody(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown key
	rec = ts.do(http.MethodPost, "/api/v1/ingest/report", ingestBody(),
		map[string]string{"Auth-Key": "bogus-token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Inactive key
	setStatus := ts.doSession(http.MethodPut, "/api/v1/keys/"+ts.credID+"/status",
		models.SetKeyStatusRequest{Status: "inactive"})
	require.Equal(t, http.StatusOK, setStatus.Code)

	rec = ts.do(http.MethodPost, "/api/v1/ingest/report", ingestBody(),
		map[string]string{"Auth-Key": ts.ingestToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_IngestThreatIPs(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/ingest/ip-threats", models.ThreatIPBatchRequest{
		TotalUniqueThreatIPs: 2,
		ThreatIPList: []models.ThreatIPEntry{
			{SourceIP: "203.0.113.1", TotalHits: 20000},
			{SourceIP: "203.0.113.2", TotalHits: 10},
		},
	}, map[string]string{"Auth-Key": ts.ingestToken})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 2, resp["processed"])

	// Empty list is rejected
	rec = ts.do(http.MethodPost, "/api/v1/ingest/ip-threats", models.ThreatIPBatchRequest{},
		map[string]string{"Auth-Key": ts.ingestToken})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_KeysLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// Create
	rec := ts.doSession(http.MethodPost, "/api/v1/keys", models.CreateKeyRequest{Name: "second sensor"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.CreateKeyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.APIKey)
	assert.NotEmpty(t, created.IngestToken)
	assert.Equal(t, "second sensor", created.Credential.Name)

	// List shows both credentials
	rec = ts.doSession(http.MethodGet, "/api/v1/keys", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.CredentialResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	// Reveal reproduces the issued key
	rec = ts.doSession(http.MethodPost, "/api/v1/keys/"+created.Credential.ID+"/reveal", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var revealed models.RevealResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &revealed))
	assert.Equal(t, created.APIKey, revealed.Secret)

	// Rename
	rec = ts.doSession(http.MethodPatch, "/api/v1/keys/"+created.Credential.ID,
		models.UpdateKeyRequest{Name: "renamed"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Delete
	rec = ts.doSession(http.MethodDelete, "/api/v1/keys/"+created.Credential.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.doSession(http.MethodGet, "/api/v1/keys/"+created.Credential.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_DashboardRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/keys", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/keys", nil, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_SessionExchangeRejectsBadKey(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/auth/session", map[string]string{"api_key": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/auth/session", map[string]string{"api_key": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_StatsEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 3; i++ {
		rec := ts.do(http.MethodPost, "/api/v1/ingest/report", ingestBody(),
			map[string]string{"Auth-Key": ts.ingestToken})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := ts.doSession(http.MethodGet, "/api/v1/stats/"+ts.credID+"/rollup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary aggregate.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.TotalThreats)

	rec = ts.doSession(http.MethodGet, "/api/v1/stats/"+ts.credID+"/series?range=7d", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var series []aggregate.Bucket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	require.Len(t, series, 1)
	assert.Equal(t, 3, series[0].Requests)

	rec = ts.doSession(http.MethodGet, "/api/v1/stats/"+ts.credID+"/series?range=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.doSession(http.MethodGet, "/api/v1/stats/"+ts.credID+"/incidents", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.doSession(http.MethodGet, "/api/v1/stats/unknown-credential/rollup", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_StatsOwnershipEnforced(t *testing.T) {
	ts := newTestServer(t)

	other, _, _, err := ts.keys.Issue(context.Background(), "tenant-2", "other sensor", "")
	require.NoError(t, err)

	rec := ts.doSession(http.MethodGet, "/api/v1/stats/"+other.ID+"/rollup", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_Notifications(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.doSession(http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pref models.NotificationPreference
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pref))
	assert.True(t, pref.EmailAlerts)
	assert.Empty(t, pref.Email)

	enabled := false
	rec = ts.doSession(http.MethodPut, "/api/v1/notifications", models.UpdatePreferenceRequest{
		EmailAlerts: &enabled,
		Email:       "ops@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pref))
	assert.False(t, pref.EmailAlerts)
	assert.Equal(t, "ops@example.com", pref.Email)
}

func TestRouter_Usage(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/ingest/report", ingestBody(),
		map[string]string{"Auth-Key": ts.ingestToken})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.doSession(http.MethodGet, "/api/v1/usage?range=7d", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report aggregate.UsageReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.TotalRequests)
	require.Len(t, report.Days, 1)
	assert.Equal(t, 1, report.Days[0].Reports)

	rec = ts.doSession(http.MethodGet, "/api/v1/usage/export?range=7d", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "date,reports,ip_batches"))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := ts.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code, fmt.Sprintf("%s should be healthy", path))
	}

	rec := ts.do(http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())

	rec = ts.do(http.MethodGet, "/nonexistent", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_RequestIDHeader(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/healthz", nil, nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

package seeder

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsentry-io/netsentry/cli/internal/client"
	"github.com/netsentry-io/netsentry/internal/models"
)

func TestGeneratorReport(t *testing.T) {
	gen := NewGenerator(42)
	for i := 0; i < 50; i++ {
		r := gen.Report(time.Hour)
		assert.NotEmpty(t, r.Label)
		assert.NotEmpty(t, r.Flow.SourceIP)
		assert.NotZero(t, r.Flow.Protocol)

		ts, err := time.Parse(time.RFC3339, r.Timestamp)
		require.NoError(t, err)
		assert.True(t, time.Since(ts) < 2*time.Hour)
	}
}

func TestGeneratorIsReproducible(t *testing.T) {
	a := NewGenerator(7).Report(0)
	b := NewGenerator(7).Report(0)
	assert.Equal(t, a.Label, b.Label)
	assert.Equal(t, a.Flow.SourceIP, b.Flow.SourceIP)
}

func TestGeneratorThreatIPBatch(t *testing.T) {
	batch := NewGenerator(1).ThreatIPBatch(5)
	assert.Equal(t, 5, batch.TotalUniqueThreatIPs)
	require.Len(t, batch.ThreatIPList, 5)
	for _, e := range batch.ThreatIPList {
		assert.NotEmpty(t, e.SourceIP)
		assert.Positive(t, e.TotalHits)
	}
}

func TestRunSendsReportsAndBatch(t *testing.T) {
	var reports, batches atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/ingest/report":
			reports.Add(1)
			json.NewEncoder(w).Encode(models.IngestResponse{Severity: "low", Status: "resolved"})
		case "/api/v1/ingest/ip-threats":
			batches.Add(1)
			json.NewEncoder(w).Encode(map[string]any{"status": "ok", "processed": 3})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	var progress int
	res, err := Run(client.New(srv.URL, ""), "tok", Options{
		Count:       10,
		IPBatchSize: 3,
		Seed:        1,
		Progress:    func(sent, total int) { progress = sent },
	})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Reports)
	assert.Equal(t, 0, res.Failures)
	assert.Equal(t, 3, res.ThreatIPs)
	assert.Equal(t, 10, progress)
	assert.EqualValues(t, 10, reports.Load())
	assert.EqualValues(t, 1, batches.Load())
	assert.Equal(t, 10, res.BySeverity["low"])
}

func TestRunCountsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "unknown credential"})
	}))
	defer srv.Close()

	res, err := Run(client.New(srv.URL, ""), "bad", Options{Count: 3, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Reports)
	assert.Equal(t, 3, res.Failures)
}

func TestRunRejectsZeroCount(t *testing.T) {
	_, err := Run(client.New("http://localhost", ""), "tok", Options{})
	assert.Error(t, err)
}

package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsentry-io/netsentry/internal/models"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/auth/session", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "my-api-key", body["api_key"])

		json.NewEncoder(w).Encode(map[string]string{"token": "session-token"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	token, err := c.Login("my-api-key")
	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
	assert.Equal(t, "session-token", c.session)
}

func TestSessionHeaderAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sess-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]models.CredentialResponse{{ID: "cred-1", Name: "sensor"}})
	}))
	defer srv.Close()

	c := New(srv.URL, "sess-1")
	keys, err := c.ListKeys()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "sensor", keys[0].Name)
}

func TestSendReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/ingest/report", r.URL.Path)
		assert.Equal(t, "ingest-tok", r.Header.Get("Auth-Key"))

		var req models.ReportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SYN_FLOOD", req.Label)

		json.NewEncoder(w).Encode(models.IngestResponse{Severity: "high", Status: "active"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	resp, err := c.SendReport("ingest-tok", &models.ReportRequest{Label: "SYN_FLOOD", Confidence: 0.9})
	require.NoError(t, err)
	assert.Equal(t, "high", resp.Severity)
}

func TestErrorBodySurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "credential is inactive"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.SendReport("tok", &models.ReportRequest{Label: "BENIGN"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "credential is inactive")
}

func TestDeleteKey_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "sess")
	assert.NoError(t, c.DeleteKey("cred-1"))
	assert.Error(t, c.DeleteKey(""))
}

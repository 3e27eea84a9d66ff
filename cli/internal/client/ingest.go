package client

import (
	"net/http"

	"github.com/netsentry-io/netsentry/internal/models"
)

// SendReport submits one telemetry report with the ingest token.
func (c *Client) SendReport(ingestToken string, report *models.ReportRequest) (*models.IngestResponse, error) {
	var resp models.IngestResponse
	err := c.do(http.MethodPost, "/api/v1/ingest/report", report,
		map[string]string{"Auth-Key": ingestToken}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendThreatIPs submits one per-IP aggregate batch.
func (c *Client) SendThreatIPs(ingestToken string, batch *models.ThreatIPBatchRequest) (int, error) {
	var resp struct {
		Processed int `json:"processed"`
	}
	err := c.do(http.MethodPost, "/api/v1/ingest/ip-threats", batch,
		map[string]string{"Auth-Key": ingestToken}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Processed, nil
}

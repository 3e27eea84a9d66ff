package client

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/netsentry-io/netsentry/internal/aggregate"
	"github.com/netsentry-io/netsentry/internal/models"
)

func (c *Client) Rollup(credentialID string) (*aggregate.Summary, error) {
	var resp aggregate.Summary
	if err := c.do(http.MethodGet, "/api/v1/stats/"+credentialID+"/rollup", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Series(credentialID, rangeToken string, protocols []int) ([]aggregate.Bucket, error) {
	q := url.Values{}
	if rangeToken != "" {
		q.Set("range", rangeToken)
	}
	if len(protocols) > 0 {
		parts := make([]string, len(protocols))
		for i, p := range protocols {
			parts[i] = strconv.Itoa(p)
		}
		q.Set("protocols", strings.Join(parts, ","))
	}

	path := "/api/v1/stats/" + credentialID + "/series"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp []aggregate.Bucket
	if err := c.do(http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Incidents(credentialID string) ([]models.Incident, error) {
	var resp []models.Incident
	if err := c.do(http.MethodGet, "/api/v1/stats/"+credentialID+"/incidents", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ThreatIPs(credentialID string) ([]models.ThreatIPRecord, error) {
	var resp []models.ThreatIPRecord
	if err := c.do(http.MethodGet, "/api/v1/stats/"+credentialID+"/threat-ips", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetPreference() (*models.NotificationPreference, error) {
	var resp models.NotificationPreference
	if err := c.do(http.MethodGet, "/api/v1/notifications", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdatePreference(req models.UpdatePreferenceRequest) (*models.NotificationPreference, error) {
	var resp models.NotificationPreference
	if err := c.do(http.MethodPut, "/api/v1/notifications", req, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Usage(rangeToken string) (*aggregate.UsageReport, error) {
	path := "/api/v1/usage"
	if rangeToken != "" {
		path += "?range=" + url.QueryEscape(rangeToken)
	}

	var resp aggregate.UsageReport
	if err := c.do(http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

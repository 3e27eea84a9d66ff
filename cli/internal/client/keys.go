package client

import (
	"fmt"
	"net/http"

	"github.com/netsentry-io/netsentry/internal/models"
)

func (c *Client) CreateKey(name, description string) (*models.CreateKeyResponse, error) {
	var resp models.CreateKeyResponse
	err := c.do(http.MethodPost, "/api/v1/keys",
		models.CreateKeyRequest{Name: name, Description: description}, nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListKeys() ([]models.CredentialResponse, error) {
	var resp []models.CredentialResponse
	if err := c.do(http.MethodGet, "/api/v1/keys", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetKey(id string) (*models.CredentialResponse, error) {
	var resp models.CredentialResponse
	if err := c.do(http.MethodGet, "/api/v1/keys/"+id, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RevealKey(id string) (string, error) {
	var resp models.RevealResponse
	if err := c.do(http.MethodPost, "/api/v1/keys/"+id+"/reveal", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Secret, nil
}

func (c *Client) RevealIngestToken(id string) (string, error) {
	var resp models.RevealResponse
	if err := c.do(http.MethodPost, "/api/v1/keys/"+id+"/reveal-ingest", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Secret, nil
}

func (c *Client) SetKeyStatus(id, status string) error {
	return c.do(http.MethodPut, "/api/v1/keys/"+id+"/status",
		models.SetKeyStatusRequest{Status: status}, nil, nil)
}

func (c *Client) SetCallback(id, url string) error {
	return c.do(http.MethodPut, "/api/v1/keys/"+id+"/callback",
		models.SetCallbackRequest{URL: url}, nil, nil)
}

func (c *Client) TestCallback(id string) error {
	return c.do(http.MethodPost, "/api/v1/keys/"+id+"/callback/test", nil, nil, nil)
}

func (c *Client) DeleteKey(id string) error {
	if id == "" {
		return fmt.Errorf("key id is required")
	}
	return c.do(http.MethodDelete, "/api/v1/keys/"+id, nil, nil, nil)
}

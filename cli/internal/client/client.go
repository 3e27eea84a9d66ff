// Package client is the HTTP client for the NetSentry API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to one NetSentry server. Session-authenticated calls
// require a session token; ingest calls carry the ingest token instead.
type Client struct {
	baseURL string
	session string
	http    *http.Client
}

func New(baseURL, sessionToken string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: sessionToken,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// apiError is the server's {"error": "..."} body.
type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(method, path string, body any, headers map[string]string, out any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session != "" {
		req.Header.Set("Authorization", "Bearer "+c.session)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Login exchanges an API key for a session token. The token is also
// installed on the client for subsequent calls.
func (c *Client) Login(apiKey string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(http.MethodPost, "/api/v1/auth/session",
		map[string]string{"api_key": apiKey}, nil, &resp)
	if err != nil {
		return "", err
	}
	c.session = resp.Token
	return resp.Token, nil
}

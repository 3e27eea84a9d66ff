package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:    "x-forwarded-for single",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.5"},
			want:    "203.0.113.5",
		},
		{
			name:    "x-forwarded-for chain takes first",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1, 10.0.0.2"},
			want:    "203.0.113.5",
		},
		{
			name:    "x-real-ip fallback",
			headers: map[string]string{"X-Real-IP": "198.51.100.9"},
			want:    "198.51.100.9",
		},
		{
			name:   "remote addr fallback",
			remote: "192.0.2.1:4455",
			want:   "192.0.2.1:4455",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.remote != "" {
				req.RemoteAddr = tt.remote
			}
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid bearer", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(req); got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseIntParam(t *testing.T) {
	if got := ParseIntParam("", 7); got != 7 {
		t.Errorf("empty param: got %d, want 7", got)
	}
	if got := ParseIntParam("12", 7); got != 12 {
		t.Errorf("valid param: got %d, want 12", got)
	}
	if got := ParseIntParam("junk", 7); got != 7 {
		t.Errorf("invalid param: got %d, want 7", got)
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=500", nil)
	p := ParsePagination(req, 50, 100)
	if p.Page != 3 {
		t.Errorf("page = %d, want 3", p.Page)
	}
	if p.Limit != 100 {
		t.Errorf("limit clamped = %d, want 100", p.Limit)
	}
	if p.Offset() != 200 {
		t.Errorf("offset = %d, want 200", p.Offset())
	}

	req = httptest.NewRequest(http.MethodGet, "/?page=0", nil)
	p = ParsePagination(req, 50, 100)
	if p.Page != 1 || p.Limit != 50 {
		t.Errorf("defaults: got page=%d limit=%d", p.Page, p.Limit)
	}
}

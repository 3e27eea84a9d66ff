package httputil

import (
	"net/http"
	"strconv"
	"strings"
)

// GetClientIP extracts the real client IP address from request headers.
// Proxy headers are checked in order:
//  1. X-Forwarded-For (first IP in the comma-separated list is the client)
//  2. X-Real-IP
//  3. RemoteAddr
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// Returns empty string when the header is missing or malformed.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ParseIntParam parses an integer query parameter with a default value.
// Returns defaultVal if the parameter is empty or invalid.
func ParseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return defaultVal
}

// Pagination represents common pagination parameters for API responses.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total,omitempty"`
}

// ParsePagination extracts page/limit query parameters with sane bounds.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	page := ParseIntParam(r.URL.Query().Get("page"), 1)
	limit := ParseIntParam(r.URL.Query().Get("limit"), defaultLimit)

	if limit > maxLimit {
		limit = maxLimit
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if page < 1 {
		page = 1
	}

	return Pagination{Page: page, Limit: limit}
}

// Offset returns the SQL OFFSET for the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

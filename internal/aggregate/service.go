package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/internal/apperr"
	"github.com/netsentry-io/netsentry/internal/models"
	"github.com/netsentry-io/netsentry/internal/repository"
)

// rollupCacheTTL bounds how stale a cached rollup may get.
const rollupCacheTTL = 60 * time.Second

// Service serves dashboard aggregates. Reads only; the cache is an
// optional redis client and the service degrades to direct reads
// without one.
type Service struct {
	repo   repository.Repository
	cache  *redis.Client
	logger *logging.Logger
}

// NewService creates an aggregation service. cache may be nil.
func NewService(repo repository.Repository, cache *redis.Client, logger *logging.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// ParseRange resolves a range token (today, 7d, 30d, 90d) into a
// half-open window ending now.
func ParseRange(token string, now time.Time) (time.Time, time.Time, error) {
	to := now
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "", "today":
		year, month, day := now.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location()), to, nil
	case "7d":
		return now.AddDate(0, 0, -7), to, nil
	case "30d":
		return now.AddDate(0, 0, -30), to, nil
	case "90d":
		return now.AddDate(0, 0, -90), to, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown range %q", apperr.ErrInvalidInput, token)
	}
}

// Rollup computes the per-credential summary over the recent window,
// serving from cache when one is configured.
func (s *Service) Rollup(ctx context.Context, credentialID string) (*Summary, error) {
	cacheKey := "rollup:" + credentialID

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached Summary
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	incidents, err := s.repo.RecentIncidents(ctx, credentialID, rollupWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load incidents for rollup: %w", err)
	}

	summary := ComputeSummary(incidents)

	if s.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, rollupCacheTTL).Err(); err != nil {
				s.logger.WarnContext(ctx, "rollup cache write failed",
					logging.CredentialID(credentialID),
					logging.Error(err),
				)
			}
		}
	}

	return &summary, nil
}

// Series builds the minute-bucketed chart series for a window.
func (s *Service) Series(ctx context.Context, credentialID string, from, to time.Time, protocolFilter []int) ([]Bucket, error) {
	incidents, err := s.repo.IncidentsInWindow(ctx, credentialID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load incidents for series: %w", err)
	}
	return BuildSeries(incidents, protocolFilter), nil
}

// recentLimit caps the dashboard list reads.
const recentLimit = 100

// RecentIncidents returns the newest incidents for a credential.
func (s *Service) RecentIncidents(ctx context.Context, credentialID string) ([]*models.Incident, error) {
	return s.repo.RecentIncidents(ctx, credentialID, recentLimit)
}

// RecentThreatIPs returns the most recently updated IP aggregates.
func (s *Service) RecentThreatIPs(ctx context.Context, credentialID string) ([]*models.ThreatIPRecord, error) {
	return s.repo.ListThreatIPs(ctx, credentialID, recentLimit)
}

// UsageDay is one day of metering counts.
type UsageDay struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Reports   int    `json:"reports"`
	IPBatches int    `json:"ip_batches"`
}

// UsageReport is the tenant's windowed usage summary.
type UsageReport struct {
	TenantID      string     `json:"tenant_id"`
	From          time.Time  `json:"from"`
	To            time.Time  `json:"to"`
	TotalRequests int        `json:"total_requests"`
	Days          []UsageDay `json:"days"`
}

// Usage aggregates metering rows for a tenant into per-day counts.
func (s *Service) Usage(ctx context.Context, tenantID string, from, to time.Time) (*UsageReport, error) {
	records, err := s.repo.UsageInWindow(ctx, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage records: %w", err)
	}

	report := &UsageReport{
		TenantID: tenantID,
		From:     from,
		To:       to,
		Days:     []UsageDay{},
	}

	byDay := make(map[string]*UsageDay)
	for _, rec := range records {
		report.TotalRequests++

		day := rec.CreatedAt.UTC().Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &UsageDay{Date: day}
			byDay[day] = d
		}
		switch rec.Kind {
		case models.UsageKindIPBatch:
			d.IPBatches++
		default:
			d.Reports++
		}
	}

	for _, d := range byDay {
		report.Days = append(report.Days, *d)
	}
	sort.Slice(report.Days, func(i, j int) bool {
		return report.Days[i].Date < report.Days[j].Date
	})

	return report, nil
}

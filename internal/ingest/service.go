// Package ingest orchestrates the telemetry pipeline: authenticate the
// detector, classify the report, persist the incident, then fan out to
// metrics, events, and email alerting.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/internal/alert"
	"github.com/netsentry-io/netsentry/internal/apperr"
	"github.com/netsentry-io/netsentry/internal/classifier"
	"github.com/netsentry-io/netsentry/internal/events"
	"github.com/netsentry-io/netsentry/internal/keys"
	"github.com/netsentry-io/netsentry/internal/metrics"
	"github.com/netsentry-io/netsentry/internal/models"
	"github.com/netsentry-io/netsentry/internal/ratelimit"
	"github.com/netsentry-io/netsentry/internal/repository"
)

// Service ties the ingestion pipeline together. The incident write is
// the commit point: everything after it (metrics, events, alerting,
// usage accounting) must not undo it.
type Service struct {
	repo       repository.Repository
	keys       *keys.Service
	dispatcher *alert.Dispatcher
	publisher  *events.Publisher
	limiter    ratelimit.RateLimiter
	logger     *logging.Logger
	maxBatch   int
}

// NewService wires the pipeline. maxBatch caps the number of entries
// accepted in one per-IP batch.
func NewService(
	repo repository.Repository,
	keySvc *keys.Service,
	dispatcher *alert.Dispatcher,
	publisher *events.Publisher,
	limiter ratelimit.RateLimiter,
	maxBatch int,
	logger *logging.Logger,
) *Service {
	return &Service{
		repo:       repo,
		keys:       keySvc,
		dispatcher: dispatcher,
		publisher:  publisher,
		limiter:    limiter,
		logger:     logger,
		maxBatch:   maxBatch,
	}
}

// authenticate resolves the ingest token and applies the per-credential
// rate limit. Limiter backend failures fail open: dropping telemetry
// because Redis is down is worse than letting a burst through.
func (s *Service) authenticate(ctx context.Context, token string) (*models.Credential, error) {
	cred, err := s.keys.AuthenticateIngest(ctx, token)
	if err != nil {
		return nil, err
	}

	allowed, err := s.limiter.Allow(ctx, cred.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "rate limiter unavailable, allowing request",
			logging.CredentialID(cred.ID),
			logging.Error(err),
		)
		return cred, nil
	}
	if !allowed {
		return nil, fmt.Errorf("%w: credential %s", apperr.ErrRateLimited, cred.ID)
	}
	return cred, nil
}

// IngestReport runs one detector report through the full pipeline and
// returns the classification outcome. An alert delivery failure is
// returned as an error, but by then the incident is already stored.
func (s *Service) IngestReport(ctx context.Context, token string, req *models.ReportRequest) (*models.IngestResponse, error) {
	cred, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	inc, err := classifier.Classify(req, time.Now().UTC())
	metrics.ClassificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ReportsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	id, _ := uuid.NewV7()
	inc.ID = id.String()
	inc.CredentialID = cred.ID
	inc.TenantID = cred.TenantID

	if err := s.repo.CreateIncident(ctx, inc); err != nil {
		metrics.StorageErrors.Inc()
		metrics.ReportsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to store incident: %w", err)
	}

	metrics.ReportsTotal.WithLabelValues("accepted").Inc()
	metrics.IncidentsBySeverity.WithLabelValues(string(inc.Severity), string(inc.Category)).Inc()

	s.publisher.IncidentCreated(ctx, inc)
	s.recordUsage(ctx, cred, models.UsageKindReport)

	enabled, alertErr := s.maybeAlert(ctx, inc)

	resp := &models.IngestResponse{
		Severity:          string(inc.Severity),
		Status:            string(inc.Status),
		EmailAlertEnabled: enabled,
	}

	if alertErr != nil {
		return resp, alertErr
	}
	return resp, nil
}

// maybeAlert applies the alert decision and dispatches when it fires.
// The returned bool is the tenant's email-alert flag regardless of
// whether this incident triggered a send.
func (s *Service) maybeAlert(ctx context.Context, inc *models.Incident) (bool, error) {
	if !alert.ShouldAlert(inc) {
		pref, err := s.dispatcher.Preference(ctx, inc.TenantID)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load notification preference",
				logging.TenantID(inc.TenantID),
				logging.Error(err),
			)
			return false, nil
		}
		return pref.EmailAlerts, nil
	}

	enabled, err := s.dispatcher.Dispatch(ctx, inc)
	switch {
	case err == nil && enabled:
		metrics.AlertsDispatched.WithLabelValues("sent").Inc()
		s.publisher.AlertDispatched(ctx, inc, true, "")
		return enabled, nil
	case err == nil:
		metrics.AlertsDispatched.WithLabelValues("skipped").Inc()
		return enabled, nil
	case errors.Is(err, alert.ErrNoRecipient):
		metrics.AlertsDispatched.WithLabelValues("no_recipient").Inc()
		s.logger.WarnContext(ctx, "alert skipped, no contact address",
			logging.TenantID(inc.TenantID),
		)
		return enabled, nil
	default:
		metrics.AlertsDispatched.WithLabelValues("failed").Inc()
		s.publisher.AlertDispatched(ctx, inc, false, err.Error())
		return enabled, fmt.Errorf("%w: %w", apperr.ErrChannel, err)
	}
}

// IngestThreatIPs upserts a batch of per-IP aggregates. Each row
// replaces the previous blob for that (credential, IP) pair; the
// operator-set blocked flag is the only surviving field. Returns the
// number of rows written.
func (s *Service) IngestThreatIPs(ctx context.Context, token string, req *models.ThreatIPBatchRequest) (int, error) {
	cred, err := s.authenticate(ctx, token)
	if err != nil {
		return 0, err
	}

	if len(req.ThreatIPList) == 0 {
		return 0, fmt.Errorf("%w: threat_ip_list is required", apperr.ErrInvalidInput)
	}
	if s.maxBatch > 0 && len(req.ThreatIPList) > s.maxBatch {
		return 0, fmt.Errorf("%w: batch exceeds %d entries", apperr.ErrInvalidInput, s.maxBatch)
	}

	now := time.Now().UTC()
	written := 0
	for _, entry := range req.ThreatIPList {
		if entry.SourceIP == "" {
			s.logger.WarnContext(ctx, "skipping batch entry with empty source ip",
				logging.CredentialID(cred.ID),
			)
			continue
		}

		details := map[string]any{
			"total_hits": entry.TotalHits,
		}
		if entry.LastSeen != "" {
			details["last_seen"] = entry.LastSeen
		}
		if len(entry.Events) > 0 {
			details["events"] = entry.Events
		}

		rec := &models.ThreatIPRecord{
			CredentialID: cred.ID,
			IP:           entry.SourceIP,
			ThreatLevel:  models.ThreatLevelForHits(entry.TotalHits),
			Details:      details,
			UpdatedAt:    now,
		}

		if err := s.repo.UpsertThreatIP(ctx, rec); err != nil {
			metrics.StorageErrors.Inc()
			return written, fmt.Errorf("failed to upsert threat ip %s: %w", entry.SourceIP, err)
		}
		written++
	}

	metrics.ThreatIPBatchesTotal.Inc()
	metrics.ThreatIPRowsTotal.Add(float64(written))

	s.publisher.ThreatIPsUpdated(ctx, cred.ID, written)
	s.recordUsage(ctx, cred, models.UsageKindIPBatch)

	s.logger.InfoContext(ctx, "threat ip batch processed",
		logging.CredentialID(cred.ID),
		slog.Int("count", written),
	)
	return written, nil
}

// recordUsage writes a usage accounting row. Accounting is best effort
// and never fails the ingest.
func (s *Service) recordUsage(ctx context.Context, cred *models.Credential, kind string) {
	id, _ := uuid.NewV7()
	rec := &models.UsageRecord{
		ID:           id.String(),
		CredentialID: cred.ID,
		TenantID:     cred.TenantID,
		Kind:         kind,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUsageRecord(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "failed to record usage",
			logging.CredentialID(cred.ID),
			logging.Error(err),
		)
	}
}

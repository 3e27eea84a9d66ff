// Package events publishes pipeline events for live dashboard feeds.
package events

import (
	"context"
	"time"

	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/common/messaging"
	"github.com/netsentry-io/netsentry/internal/models"
)

// IncidentCreated is published after every persisted incident.
type IncidentCreated struct {
	IncidentID   string    `json:"incident_id"`
	CredentialID string    `json:"credential_id"`
	TenantID     string    `json:"tenant_id"`
	Label        string    `json:"label"`
	Severity     string    `json:"severity"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}

// ThreatIPsUpdated is published after a per-IP batch upsert.
type ThreatIPsUpdated struct {
	CredentialID string    `json:"credential_id"`
	Count        int       `json:"count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AlertDispatched is published after an email alert attempt.
type AlertDispatched struct {
	IncidentID string `json:"incident_id"`
	TenantID   string `json:"tenant_id"`
	Delivered  bool   `json:"delivered"`
	Reason     string `json:"reason,omitempty"`
}

// Publisher pushes pipeline events onto the message bus. Publishing is
// best effort: failures are logged, never surfaced to the ingest path.
type Publisher struct {
	client messaging.Publisher
	logger *logging.Logger
}

// NewPublisher wraps a messaging client. client may be nil, in which
// case every publish is a no-op.
func NewPublisher(client messaging.Publisher, logger *logging.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

func (p *Publisher) publish(ctx context.Context, subject string, payload any) {
	if p.client == nil {
		return
	}

	if err := p.client.PublishJSON(ctx, subject, payload); err != nil {
		p.logger.WarnContext(ctx, "failed to publish event",
			logging.Error(err),
		)
	}
}

// IncidentCreated announces a newly classified incident.
func (p *Publisher) IncidentCreated(ctx context.Context, inc *models.Incident) {
	p.publish(ctx, messaging.IncidentSubject(inc.CredentialID), IncidentCreated{
		IncidentID:   inc.ID,
		CredentialID: inc.CredentialID,
		TenantID:     inc.TenantID,
		Label:        inc.Label,
		Severity:     string(inc.Severity),
		Category:     string(inc.Category),
		Status:       string(inc.Status),
		Timestamp:    inc.Timestamp,
	})
}

// ThreatIPsUpdated announces a processed per-IP batch.
func (p *Publisher) ThreatIPsUpdated(ctx context.Context, credentialID string, count int) {
	p.publish(ctx, messaging.SubjectThreatIPsUpdated, ThreatIPsUpdated{
		CredentialID: credentialID,
		Count:        count,
		UpdatedAt:    time.Now().UTC(),
	})
}

// AlertDispatched announces the outcome of an email alert attempt.
func (p *Publisher) AlertDispatched(ctx context.Context, inc *models.Incident, delivered bool, reason string) {
	p.publish(ctx, messaging.SubjectAlertsDispatched, AlertDispatched{
		IncidentID: inc.ID,
		TenantID:   inc.TenantID,
		Delivered:  delivered,
		Reason:     reason,
	})
}

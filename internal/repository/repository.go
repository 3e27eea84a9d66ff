package repository

import (
	"context"
	"errors"
	"time"

	"github.com/netsentry-io/netsentry/internal/models"
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrPreferenceNotFound = errors.New("notification preference not found")
)

// Repository defines the persistence contracts the pipeline requires.
// All writes are atomic at the row level; per-IP aggregation relies on
// the store's upsert-on-conflict semantics, not in-process locking.
type Repository interface {
	// Credential operations
	CreateCredential(ctx context.Context, c *models.Credential) error
	GetCredential(ctx context.Context, id string) (*models.Credential, error)
	GetCredentialByKeyHash(ctx context.Context, hash string) (*models.Credential, error)
	GetCredentialByIngestTokenHash(ctx context.Context, hash string) (*models.Credential, error)
	ListCredentials(ctx context.Context, tenantID string) ([]*models.Credential, error)
	UpdateCredential(ctx context.Context, c *models.Credential) error
	TouchCredential(ctx context.Context, id string, usedAt time.Time) error
	DeleteCredential(ctx context.Context, id string) error

	// Incident operations
	CreateIncident(ctx context.Context, inc *models.Incident) error
	RecentIncidents(ctx context.Context, credentialID string, limit int) ([]*models.Incident, error)
	IncidentsInWindow(ctx context.Context, credentialID string, from, to time.Time) ([]*models.Incident, error)

	// Threat IP operations
	UpsertThreatIP(ctx context.Context, rec *models.ThreatIPRecord) error
	ListThreatIPs(ctx context.Context, credentialID string, limit int) ([]*models.ThreatIPRecord, error)

	// Notification preference operations
	GetPreference(ctx context.Context, tenantID string) (*models.NotificationPreference, error)
	UpsertPreference(ctx context.Context, p *models.NotificationPreference) error

	// Usage metering
	CreateUsageRecord(ctx context.Context, u *models.UsageRecord) error
	UsageInWindow(ctx context.Context, tenantID string, from, to time.Time) ([]*models.UsageRecord, error)

	// Utility
	Close() error
}

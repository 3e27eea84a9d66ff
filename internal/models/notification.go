package models

import "time"

// NotificationPreference is one per tenant, created lazily with email
// alerts enabled on first read.
type NotificationPreference struct {
	TenantID    string    `json:"tenant_id"`
	EmailAlerts bool      `json:"email_alerts"`
	Email       string    `json:"email,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultNotificationPreference returns the lazy-created row for a
// tenant that has never set preferences.
func DefaultNotificationPreference(tenantID string) *NotificationPreference {
	return &NotificationPreference{
		TenantID:    tenantID,
		EmailAlerts: true,
		UpdatedAt:   time.Now().UTC(),
	}
}

// UsageRecord is one append-only metering row per ingestion event.
type UsageRecord struct {
	ID           string    `json:"id"` // UUIDv7
	CredentialID string    `json:"credential_id"`
	TenantID     string    `json:"tenant_id"`
	Kind         string    `json:"kind"` // "report" or "ip_batch"
	CreatedAt    time.Time `json:"created_at"`
}

const (
	UsageKindReport  = "report"
	UsageKindIPBatch = "ip_batch"
)

package models

import "time"

// CredentialStatus is the lifecycle state of an API credential.
type CredentialStatus string

const (
	CredentialActive   CredentialStatus = "active"
	CredentialInactive CredentialStatus = "inactive"
)

// Credential is a tenant-issued API key. Two secrets hang off one
// credential: the dashboard-facing API secret and a separate ingest
// token presented by detectors. Both are derived deterministically
// from stored seeds, so only hashes and seeds are persisted.
type Credential struct {
	ID          string `json:"id"` // UUIDv7
	TenantID    string `json:"tenant_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// KeyHash and IngestTokenHash are salted one-way hashes used for
	// verification. The seeds allow re-derivation of the plaintext
	// through the reveal capability; they are never serialized.
	KeyHash         string `json:"-"`
	KeySeed         []byte `json:"-"`
	IngestTokenHash string `json:"-"`
	IngestTokenSeed []byte `json:"-"`

	Status      CredentialStatus `json:"status"`
	CallbackURL *string          `json:"callback_url,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// IsActive returns true if the credential can authenticate requests.
func (c *Credential) IsActive() bool {
	return c.Status == CredentialActive
}

// CredentialResponse is the API shape for a credential. Secrets and
// seeds are never included; issuance returns them separately.
type CredentialResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	CallbackURL *string    `json:"callback_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

// ToResponse converts a Credential to its API shape.
func (c *Credential) ToResponse() *CredentialResponse {
	return &CredentialResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Status:      string(c.Status),
		CallbackURL: c.CallbackURL,
		CreatedAt:   c.CreatedAt,
		LastUsedAt:  c.LastUsedAt,
	}
}

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/netsentry-io/netsentry/internal/models"
)

// InMemoryRepository implements Repository with in-process maps.
// Used for local development and as the test double.
type InMemoryRepository struct {
	credentials map[string]*models.Credential
	incidents   map[string][]*models.Incident // keyed by credential id
	threatIPs   map[string]*models.ThreatIPRecord
	preferences map[string]*models.NotificationPreference
	usage       []*models.UsageRecord
	mu          sync.RWMutex
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		credentials: make(map[string]*models.Credential),
		incidents:   make(map[string][]*models.Incident),
		threatIPs:   make(map[string]*models.ThreatIPRecord),
		preferences: make(map[string]*models.NotificationPreference),
	}
}

func threatIPKey(credentialID, ip string) string {
	return credentialID + "|" + ip
}

func copyCredential(c *models.Credential) *models.Credential {
	cp := *c
	return &cp
}

func (r *InMemoryRepository) CreateCredential(_ context.Context, c *models.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.credentials[c.ID] = copyCredential(c)
	return nil
}

func (r *InMemoryRepository) GetCredential(_ context.Context, id string) (*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.credentials[id]
	if !exists {
		return nil, ErrCredentialNotFound
	}
	return copyCredential(c), nil
}

func (r *InMemoryRepository) GetCredentialByKeyHash(_ context.Context, hash string) (*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.credentials {
		if c.KeyHash == hash {
			return copyCredential(c), nil
		}
	}
	return nil, ErrCredentialNotFound
}

func (r *InMemoryRepository) GetCredentialByIngestTokenHash(_ context.Context, hash string) (*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.credentials {
		if c.IngestTokenHash == hash {
			return copyCredential(c), nil
		}
	}
	return nil, ErrCredentialNotFound
}

func (r *InMemoryRepository) ListCredentials(_ context.Context, tenantID string) ([]*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	creds := []*models.Credential{}
	for _, c := range r.credentials {
		if c.TenantID == tenantID {
			creds = append(creds, copyCredential(c))
		}
	}

	sort.Slice(creds, func(i, j int) bool {
		return creds[i].CreatedAt.After(creds[j].CreatedAt)
	})
	return creds, nil
}

func (r *InMemoryRepository) UpdateCredential(_ context.Context, c *models.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.credentials[c.ID]
	if !exists {
		return ErrCredentialNotFound
	}

	existing.Name = c.Name
	existing.Description = c.Description
	existing.Status = c.Status
	existing.CallbackURL = c.CallbackURL
	return nil
}

func (r *InMemoryRepository) TouchCredential(_ context.Context, id string, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.credentials[id]
	if !exists {
		return ErrCredentialNotFound
	}
	c.LastUsedAt = &usedAt
	return nil
}

func (r *InMemoryRepository) DeleteCredential(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.credentials[id]; !exists {
		return ErrCredentialNotFound
	}
	delete(r.credentials, id)
	delete(r.incidents, id)
	return nil
}

func (r *InMemoryRepository) CreateIncident(_ context.Context, inc *models.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *inc
	r.incidents[inc.CredentialID] = append(r.incidents[inc.CredentialID], &cp)
	return nil
}

func (r *InMemoryRepository) RecentIncidents(_ context.Context, credentialID string, limit int) ([]*models.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.incidents[credentialID]
	out := make([]*models.Incident, len(all))
	for i, inc := range all {
		cp := *inc
		out[i] = &cp
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) IncidentsInWindow(_ context.Context, credentialID string, from, to time.Time) ([]*models.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.Incident{}
	for _, inc := range r.incidents[credentialID] {
		if !inc.Timestamp.Before(from) && inc.Timestamp.Before(to) {
			cp := *inc
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (r *InMemoryRepository) UpsertThreatIP(_ context.Context, rec *models.ThreatIPRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := threatIPKey(rec.CredentialID, rec.IP)
	cp := *rec
	if existing, exists := r.threatIPs[key]; exists {
		// The manual block flag is operator state and survives the replace.
		cp.Blocked = existing.Blocked
	}
	r.threatIPs[key] = &cp
	return nil
}

func (r *InMemoryRepository) ListThreatIPs(_ context.Context, credentialID string, limit int) ([]*models.ThreatIPRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.ThreatIPRecord{}
	for _, rec := range r.threatIPs {
		if rec.CredentialID == credentialID {
			cp := *rec
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) GetPreference(_ context.Context, tenantID string) (*models.NotificationPreference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.preferences[tenantID]
	if !exists {
		return nil, ErrPreferenceNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *InMemoryRepository) UpsertPreference(_ context.Context, p *models.NotificationPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *p
	r.preferences[p.TenantID] = &cp
	return nil
}

func (r *InMemoryRepository) CreateUsageRecord(_ context.Context, u *models.UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *u
	r.usage = append(r.usage, &cp)
	return nil
}

func (r *InMemoryRepository) UsageInWindow(_ context.Context, tenantID string, from, to time.Time) ([]*models.UsageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.UsageRecord{}
	for _, u := range r.usage {
		if u.TenantID == tenantID && !u.CreatedAt.Before(from) && u.CreatedAt.Before(to) {
			cp := *u
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) Close() error {
	return nil
}

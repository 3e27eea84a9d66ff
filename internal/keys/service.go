// Package keys implements the credential manager: issuance, verification,
// reveal, and lifecycle of per-tenant API credentials.
package keys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/internal/apperr"
	"github.com/netsentry-io/netsentry/internal/models"
	"github.com/netsentry-io/netsentry/internal/repository"
)

// Service handles credential issuance and verification. Secrets are
// derived from stored seeds, so the plaintext is recoverable only
// through the explicit reveal operations.
type Service struct {
	repo       repository.Repository
	salt       string
	logger     *logging.Logger
	httpClient *http.Client
}

// NewService creates a new credential service.
func NewService(repo repository.Repository, serverSalt string, logger *logging.Logger) *Service {
	return &Service{
		repo:       repo,
		salt:       serverSalt,
		logger:     logger,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Issue creates a credential and returns the plaintext API key and
// ingest token. Both are shown exactly once at issuance; afterwards
// only the reveal operations can reproduce them.
func (s *Service) Issue(ctx context.Context, tenantID, name, description string) (*models.Credential, string, string, error) {
	if name == "" {
		return nil, "", "", fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}

	keySeed, err := NewSeed()
	if err != nil {
		return nil, "", "", err
	}
	ingestSeed, err := NewSeed()
	if err != nil {
		return nil, "", "", err
	}

	apiKey, err := DeriveAPIKey(keySeed, s.salt)
	if err != nil {
		return nil, "", "", err
	}
	ingestToken, err := DeriveIngestToken(ingestSeed, s.salt)
	if err != nil {
		return nil, "", "", err
	}

	id, _ := uuid.NewV7()
	cred := &models.Credential{
		ID:              id.String(),
		TenantID:        tenantID,
		Name:            name,
		Description:     description,
		KeyHash:         HashSecret(apiKey, s.salt),
		KeySeed:         keySeed,
		IngestTokenHash: HashSecret(ingestToken, s.salt),
		IngestTokenSeed: ingestSeed,
		Status:          models.CredentialActive,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.repo.CreateCredential(ctx, cred); err != nil {
		return nil, "", "", fmt.Errorf("failed to persist credential: %w", err)
	}

	s.logger.InfoContext(ctx, "credential issued",
		logging.CredentialID(cred.ID),
		logging.TenantID(tenantID),
	)

	return cred, apiKey, ingestToken, nil
}

// Verify authenticates a dashboard-facing API key. The lookup goes by
// hash; the recomputed hash is compared in constant time against the
// stored one, and failures never reveal whether the key exists.
func (s *Service) Verify(ctx context.Context, token string) (*models.Credential, error) {
	if token == "" {
		return nil, apperr.ErrMissingKey
	}

	hash := HashSecret(token, s.salt)
	cred, err := s.repo.GetCredentialByKeyHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, apperr.ErrUnknownKey
		}
		return nil, err
	}

	if !HashEqual(hash, cred.KeyHash) {
		return nil, apperr.ErrUnknownKey
	}

	if !cred.IsActive() {
		return nil, apperr.ErrInactiveKey
	}

	s.touchAsync(cred.ID)
	return cred, nil
}

// AuthenticateIngest authenticates a detector's ingest token. The
// three failure modes stay distinct: missing, unknown, and inactive.
func (s *Service) AuthenticateIngest(ctx context.Context, token string) (*models.Credential, error) {
	if token == "" {
		return nil, apperr.ErrMissingKey
	}

	hash := HashSecret(token, s.salt)
	cred, err := s.repo.GetCredentialByIngestTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, apperr.ErrUnknownKey
		}
		return nil, err
	}

	if !HashEqual(hash, cred.IngestTokenHash) {
		return nil, apperr.ErrUnknownKey
	}

	if !cred.IsActive() {
		return nil, apperr.ErrInactiveKey
	}

	s.touchAsync(cred.ID)
	return cred, nil
}

// touchAsync updates last-used time off the request path.
func (s *Service) touchAsync(credentialID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.repo.TouchCredential(ctx, credentialID, time.Now().UTC()); err != nil {
			s.logger.Warn("failed to touch credential",
				logging.CredentialID(credentialID),
				logging.Error(err),
			)
		}
	}()
}

// owned fetches a credential and enforces tenant ownership.
func (s *Service) owned(ctx context.Context, id, tenantID string) (*models.Credential, error) {
	cred, err := s.repo.GetCredential(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if cred.TenantID != tenantID {
		return nil, apperr.ErrForbidden
	}
	return cred, nil
}

// Reveal re-derives the plaintext API key. Inactive credentials are
// reported as not found.
func (s *Service) Reveal(ctx context.Context, id, tenantID string) (string, error) {
	cred, err := s.owned(ctx, id, tenantID)
	if err != nil {
		return "", err
	}
	if !cred.IsActive() {
		return "", apperr.ErrNotFound
	}
	return DeriveAPIKey(cred.KeySeed, s.salt)
}

// RevealIngestToken re-derives the plaintext ingest token.
func (s *Service) RevealIngestToken(ctx context.Context, id, tenantID string) (string, error) {
	cred, err := s.owned(ctx, id, tenantID)
	if err != nil {
		return "", err
	}
	if !cred.IsActive() {
		return "", apperr.ErrNotFound
	}
	return DeriveIngestToken(cred.IngestTokenSeed, s.salt)
}

// SetStatus toggles a credential's lifecycle status. Idempotent.
func (s *Service) SetStatus(ctx context.Context, id, tenantID string, status models.CredentialStatus) (*models.Credential, error) {
	if status != models.CredentialActive && status != models.CredentialInactive {
		return nil, fmt.Errorf("%w: invalid status %q", apperr.ErrInvalidInput, status)
	}

	cred, err := s.owned(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if cred.Status == status {
		return cred, nil
	}

	cred.Status = status
	if err := s.repo.UpdateCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to update credential status: %w", err)
	}

	s.logger.InfoContext(ctx, "credential status changed",
		logging.CredentialID(id),
		slog.String("status", string(status)),
	)
	return cred, nil
}

// Rename updates name and description.
func (s *Service) Rename(ctx context.Context, id, tenantID, name, description string) (*models.Credential, error) {
	cred, err := s.owned(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		cred.Name = name
	}
	if description != "" {
		cred.Description = description
	}

	if err := s.repo.UpdateCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to rename credential: %w", err)
	}
	return cred, nil
}

// SetCallbackURL binds a callback URL to the credential.
func (s *Service) SetCallbackURL(ctx context.Context, id, tenantID, url string) (*models.Credential, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", apperr.ErrInvalidInput)
	}

	cred, err := s.owned(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	cred.CallbackURL = &url
	if err := s.repo.UpdateCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to set callback url: %w", err)
	}
	return cred, nil
}

// TestCallback probes the bound callback URL with the credential's API
// key as a bearer token and reports whether the endpoint answered 2xx.
func (s *Service) TestCallback(ctx context.Context, id, tenantID string) error {
	cred, err := s.owned(ctx, id, tenantID)
	if err != nil {
		return err
	}
	if cred.CallbackURL == nil || *cred.CallbackURL == "" {
		return fmt.Errorf("%w: no callback url bound", apperr.ErrInvalidInput)
	}

	apiKey, err := DeriveAPIKey(cred.KeySeed, s.salt)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, *cred.CallbackURL, nil)
	if err != nil {
		return fmt.Errorf("%w: invalid callback url", apperr.ErrInvalidInput)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("callback test failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback test failed: endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Delete hard-deletes a credential.
func (s *Service) Delete(ctx context.Context, id, tenantID string) error {
	if _, err := s.owned(ctx, id, tenantID); err != nil {
		return err
	}

	if err := s.repo.DeleteCredential(ctx, id); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	s.logger.InfoContext(ctx, "credential deleted",
		logging.CredentialID(id),
		logging.TenantID(tenantID),
	)
	return nil
}

// List returns all credentials owned by a tenant.
func (s *Service) List(ctx context.Context, tenantID string) ([]*models.Credential, error) {
	return s.repo.ListCredentials(ctx, tenantID)
}

// Get returns one credential, ownership checked.
func (s *Service) Get(ctx context.Context, id, tenantID string) (*models.Credential, error) {
	return s.owned(ctx, id, tenantID)
}

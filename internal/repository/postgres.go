package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/netsentry-io/netsentry/common/database"
	"github.com/netsentry-io/netsentry/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// CreateCredential persists a newly issued credential.
func (r *PostgresRepository) CreateCredential(ctx context.Context, c *models.Credential) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	query := `
		INSERT INTO credentials (
			id, tenant_id, name, description,
			key_hash, key_seed, ingest_token_hash, ingest_token_seed,
			status, callback_url, created_at, last_used_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.TenantID, c.Name, c.Description,
		c.KeyHash, c.KeySeed, c.IngestTokenHash, c.IngestTokenSeed,
		c.Status, c.CallbackURL, c.CreatedAt, c.LastUsedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}

	return nil
}

const credentialColumns = `
	id, tenant_id, name, description,
	key_hash, key_seed, ingest_token_hash, ingest_token_seed,
	status, callback_url, created_at, last_used_at
`

func scanCredential(row pgx.Row) (*models.Credential, error) {
	c := &models.Credential{}
	err := row.Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Description,
		&c.KeyHash, &c.KeySeed, &c.IngestTokenHash, &c.IngestTokenSeed,
		&c.Status, &c.CallbackURL, &c.CreatedAt, &c.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to scan credential: %w", err)
	}
	return c, nil
}

// GetCredential retrieves a credential by ID.
func (r *PostgresRepository) GetCredential(ctx context.Context, id string) (*models.Credential, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM credentials WHERE id = $1", credentialColumns)
	return scanCredential(r.pool.QueryRow(ctx, query, id))
}

// GetCredentialByKeyHash looks up a credential by its API key hash.
func (r *PostgresRepository) GetCredentialByKeyHash(ctx context.Context, hash string) (*models.Credential, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM credentials WHERE key_hash = $1", credentialColumns)
	return scanCredential(r.pool.QueryRow(ctx, query, hash))
}

// GetCredentialByIngestTokenHash looks up a credential by its ingest token hash.
func (r *PostgresRepository) GetCredentialByIngestTokenHash(ctx context.Context, hash string) (*models.Credential, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM credentials WHERE ingest_token_hash = $1", credentialColumns)
	return scanCredential(r.pool.QueryRow(ctx, query, hash))
}

// ListCredentials returns all credentials owned by a tenant, newest first.
func (r *PostgresRepository) ListCredentials(ctx context.Context, tenantID string) ([]*models.Credential, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	query := fmt.Sprintf(
		"SELECT %s FROM credentials WHERE tenant_id = $1 ORDER BY created_at DESC",
		credentialColumns,
	)

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	creds := []*models.Credential{}
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return creds, nil
}

// UpdateCredential writes the mutable fields of a credential.
func (r *PostgresRepository) UpdateCredential(ctx context.Context, c *models.Credential) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	query := `
		UPDATE credentials
		SET name = $1, description = $2, status = $3, callback_url = $4
		WHERE id = $5
	`

	result, err := r.pool.Exec(ctx, query, c.Name, c.Description, c.Status, c.CallbackURL, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}

	return nil
}

// TouchCredential updates last-used time.
func (r *PostgresRepository) TouchCredential(ctx context.Context, id string, usedAt time.Time) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, "UPDATE credentials SET last_used_at = $1 WHERE id = $2", usedAt, id)
	if err != nil {
		return fmt.Errorf("failed to touch credential: %w", err)
	}

	return nil
}

// DeleteCredential hard-deletes a credential and its dependent rows.
func (r *PostgresRepository) DeleteCredential(ctx context.Context, id string) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	result, err := r.pool.Exec(ctx, "DELETE FROM credentials WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}

	return nil
}

// CreateIncident writes a classified incident. The row carries every
// derived field; there is no update path.
func (r *PostgresRepository) CreateIncident(ctx context.Context, inc *models.Incident) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	query := `
		INSERT INTO incidents (
			id, credential_id, tenant_id, ts, label, confidence,
			category, severity, status,
			source_ip, destination_ip, port, protocol, duration,
			packet_count, byte_count, country, evidence
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.pool.Exec(ctx, query,
		inc.ID, inc.CredentialID, inc.TenantID, inc.Timestamp, inc.Label, inc.Confidence,
		inc.Category, inc.Severity, inc.Status,
		inc.Flow.SourceIP, inc.Flow.DestinationIP, inc.Flow.Port, inc.Flow.Protocol, inc.Flow.Duration,
		inc.Flow.PacketCount, inc.Flow.ByteCount, inc.Country, inc.Evidence,
	)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}

	return nil
}

const incidentColumns = `
	id, credential_id, tenant_id, ts, label, confidence,
	category, severity, status,
	source_ip, destination_ip, port, protocol, duration,
	packet_count, byte_count, country, evidence
`

func scanIncident(rows pgx.Rows) (*models.Incident, error) {
	inc := &models.Incident{}
	err := rows.Scan(
		&inc.ID, &inc.CredentialID, &inc.TenantID, &inc.Timestamp, &inc.Label, &inc.Confidence,
		&inc.Category, &inc.Severity, &inc.Status,
		&inc.Flow.SourceIP, &inc.Flow.DestinationIP, &inc.Flow.Port, &inc.Flow.Protocol, &inc.Flow.Duration,
		&inc.Flow.PacketCount, &inc.Flow.ByteCount, &inc.Country, &inc.Evidence,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan incident: %w", err)
	}
	return inc, nil
}

// RecentIncidents returns up to limit incidents for a credential,
// newest first.
func (r *PostgresRepository) RecentIncidents(ctx context.Context, credentialID string, limit int) ([]*models.Incident, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s FROM incidents
		WHERE credential_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`, incidentColumns)

	rows, err := r.pool.Query(ctx, query, credentialID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent incidents: %w", err)
	}
	defer rows.Close()

	incidents := []*models.Incident{}
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return incidents, nil
}

// IncidentsInWindow returns incidents within [from, to), ascending by time.
func (r *PostgresRepository) IncidentsInWindow(ctx context.Context, credentialID string, from, to time.Time) ([]*models.Incident, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s FROM incidents
		WHERE credential_id = $1 AND ts >= $2 AND ts < $3
		ORDER BY ts ASC
	`, incidentColumns)

	rows, err := r.pool.Query(ctx, query, credentialID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents in window: %w", err)
	}
	defer rows.Close()

	incidents := []*models.Incident{}
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return incidents, nil
}

// UpsertThreatIP replaces the aggregate row for (credential, ip).
// Last batch wins for the derived fields; the manual block flag is
// operator state and survives the replace.
func (r *PostgresRepository) UpsertThreatIP(ctx context.Context, rec *models.ThreatIPRecord) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	query := `
		INSERT INTO threat_ips (credential_id, ip, threat_level, details, blocked, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (credential_id, ip) DO UPDATE SET
			threat_level = EXCLUDED.threat_level,
			details = EXCLUDED.details,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		rec.CredentialID, rec.IP, rec.ThreatLevel, rec.Details, rec.Blocked, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert threat ip: %w", err)
	}

	return nil
}

// ListThreatIPs returns aggregated IPs for a credential, most recently
// updated first.
func (r *PostgresRepository) ListThreatIPs(ctx context.Context, credentialID string, limit int) ([]*models.ThreatIPRecord, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	query := `
		SELECT credential_id, ip, threat_level, details, blocked, updated_at
		FROM threat_ips
		WHERE credential_id = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, credentialID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list threat ips: %w", err)
	}
	defer rows.Close()

	recs := []*models.ThreatIPRecord{}
	for rows.Next() {
		rec := &models.ThreatIPRecord{}
		if err := rows.Scan(
			&rec.CredentialID, &rec.IP, &rec.ThreatLevel, &rec.Details, &rec.Blocked, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan threat ip: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return recs, nil
}

// GetPreference retrieves a tenant's notification preference.
func (r *PostgresRepository) GetPreference(ctx context.Context, tenantID string) (*models.NotificationPreference, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	query := `
		SELECT tenant_id, email_alerts, email, updated_at
		FROM notification_preferences
		WHERE tenant_id = $1
	`

	p := &models.NotificationPreference{}
	err := r.pool.QueryRow(ctx, query, tenantID).Scan(
		&p.TenantID, &p.EmailAlerts, &p.Email, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPreferenceNotFound
		}
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}

	return p, nil
}

// UpsertPreference writes a tenant's notification preference.
func (r *PostgresRepository) UpsertPreference(ctx context.Context, p *models.NotificationPreference) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	query := `
		INSERT INTO notification_preferences (tenant_id, email_alerts, email, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id) DO UPDATE SET
			email_alerts = EXCLUDED.email_alerts,
			email = EXCLUDED.email,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query, p.TenantID, p.EmailAlerts, p.Email, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}

	return nil
}

// CreateUsageRecord appends one metering row.
func (r *PostgresRepository) CreateUsageRecord(ctx context.Context, u *models.UsageRecord) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	query := `
		INSERT INTO usage_records (id, credential_id, tenant_id, kind, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, u.ID, u.CredentialID, u.TenantID, u.Kind, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create usage record: %w", err)
	}

	return nil
}

// UsageInWindow returns metering rows for a tenant within [from, to),
// ascending by time.
func (r *PostgresRepository) UsageInWindow(ctx context.Context, tenantID string, from, to time.Time) ([]*models.UsageRecord, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	query := `
		SELECT id, credential_id, tenant_id, kind, created_at
		FROM usage_records
		WHERE tenant_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer rows.Close()

	records := []*models.UsageRecord{}
	for rows.Next() {
		u := &models.UsageRecord{}
		if err := rows.Scan(&u.ID, &u.CredentialID, &u.TenantID, &u.Kind, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		records = append(records, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

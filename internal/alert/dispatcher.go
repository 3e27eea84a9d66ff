package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/internal/models"
	"github.com/netsentry-io/netsentry/internal/repository"
)

// ErrNoRecipient is returned when a tenant has alerts enabled but no
// contact address configured.
var ErrNoRecipient = errors.New("no contact address configured")

// Dispatcher checks the tenant's notification preference and sends the
// alert when enabled. It runs strictly after the incident write; a
// delivery failure is surfaced but never rolls that write back.
type Dispatcher struct {
	repo    repository.Repository
	channel Channel
	logger  *logging.Logger
}

// NewDispatcher creates a dispatcher over the given channel.
func NewDispatcher(repo repository.Repository, channel Channel, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, channel: channel, logger: logger}
}

// Preference returns the tenant's notification preference, creating
// the default (alerts enabled) row lazily on first read.
func (d *Dispatcher) Preference(ctx context.Context, tenantID string) (*models.NotificationPreference, error) {
	pref, err := d.repo.GetPreference(ctx, tenantID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, repository.ErrPreferenceNotFound) {
		return nil, err
	}

	pref = models.DefaultNotificationPreference(tenantID)
	if err := d.repo.UpsertPreference(ctx, pref); err != nil {
		return nil, fmt.Errorf("failed to create default preference: %w", err)
	}
	return pref, nil
}

// Dispatch sends an alert for the incident if the tenant has email
// alerts enabled. The returned bool reports whether alerts are
// enabled for the tenant; the error carries any delivery failure.
func (d *Dispatcher) Dispatch(ctx context.Context, inc *models.Incident) (bool, error) {
	pref, err := d.Preference(ctx, inc.TenantID)
	if err != nil {
		return false, err
	}
	if !pref.EmailAlerts {
		return false, nil
	}

	if pref.Email == "" {
		return true, ErrNoRecipient
	}

	if err := d.channel.Send(ctx, pref.Email, inc); err != nil {
		d.logger.ErrorContext(ctx, "alert dispatch failed",
			logging.TenantID(inc.TenantID),
			logging.Label(inc.Label),
			logging.Error(err),
		)
		return true, err
	}

	d.logger.InfoContext(ctx, "alert dispatched",
		logging.TenantID(inc.TenantID),
		logging.Label(inc.Label),
		logging.Severity(string(inc.Severity)),
	)
	return true, nil
}

package alert

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/internal/models"
	"github.com/netsentry-io/netsentry/internal/repository"
)

func TestShouldAlert(t *testing.T) {
	tests := []struct {
		name string
		inc  models.Incident
		want bool
	}{
		{
			name: "benign never alerts",
			inc:  models.Incident{Label: "BENIGN", Confidence: 0.99, Severity: models.SeverityLow},
			want: false,
		},
		{
			name: "high severity",
			inc:  models.Incident{Label: "Port_Scan", Confidence: 0.85, Severity: models.SeverityHigh},
			want: true,
		},
		{
			name: "confidence threshold",
			inc:  models.Incident{Label: "ZERO_DAY_X", Confidence: 0.9, Severity: models.SeverityMedium},
			want: true,
		},
		{
			name: "high impact family by substring",
			inc:  models.Incident{Label: "syn_flood", Confidence: 0.3, Severity: models.SeverityLow},
			want: true,
		},
		{
			name: "amplify family",
			inc:  models.Incident{Label: "UDP_AMPLIFY", Confidence: 0.1, Severity: models.SeverityLow},
			want: true,
		},
		{
			name: "slowloris family",
			inc:  models.Incident{Label: "Slowloris_Attack", Confidence: 0.2, Severity: models.SeverityLow},
			want: true,
		},
		{
			name: "low everything",
			inc:  models.Incident{Label: "Port_Scan", Confidence: 0.4, Severity: models.SeverityLow},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldAlert(&tt.inc))
		})
	}
}

// fakeChannel records sends and can be told to fail.
type fakeChannel struct {
	sent []string
	err  error
}

func (f *fakeChannel) Send(_ context.Context, to string, _ *models.Incident) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func newTestDispatcher(ch Channel) (*Dispatcher, *repository.InMemoryRepository) {
	repo := repository.NewInMemoryRepository()
	return NewDispatcher(repo, ch, logging.New(slog.LevelError, "text")), repo
}

func testIncident() *models.Incident {
	return &models.Incident{
		ID:         "inc-1",
		TenantID:   "tenant-1",
		Label:      "SYN_FLOOD",
		Confidence: 0.92,
		Severity:   models.SeverityHigh,
		Status:     models.IncidentActive,
		Timestamp:  time.Now().UTC(),
	}
}

func TestDispatcher_LazyDefaultPreference(t *testing.T) {
	ch := &fakeChannel{}
	d, repo := newTestDispatcher(ch)
	ctx := context.Background()

	pref, err := d.Preference(ctx, "tenant-1")
	require.NoError(t, err)
	assert.True(t, pref.EmailAlerts)

	// The default row was persisted
	stored, err := repo.GetPreference(ctx, "tenant-1")
	require.NoError(t, err)
	assert.True(t, stored.EmailAlerts)
}

func TestDispatcher_SendsWhenEnabled(t *testing.T) {
	ch := &fakeChannel{}
	d, repo := newTestDispatcher(ch)
	ctx := context.Background()

	require.NoError(t, repo.UpsertPreference(ctx, &models.NotificationPreference{
		TenantID:    "tenant-1",
		EmailAlerts: true,
		Email:       "ops@example.com",
	}))

	enabled, err := d.Dispatch(ctx, testIncident())
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, []string{"ops@example.com"}, ch.sent)
}

func TestDispatcher_DisabledSkipsSend(t *testing.T) {
	ch := &fakeChannel{}
	d, repo := newTestDispatcher(ch)
	ctx := context.Background()

	require.NoError(t, repo.UpsertPreference(ctx, &models.NotificationPreference{
		TenantID:    "tenant-1",
		EmailAlerts: false,
		Email:       "ops@example.com",
	}))

	enabled, err := d.Dispatch(ctx, testIncident())
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.Empty(t, ch.sent)
}

func TestDispatcher_DeliveryFailurePropagated(t *testing.T) {
	sendErr := errors.New("smtp: connection refused")
	ch := &fakeChannel{err: sendErr}
	d, repo := newTestDispatcher(ch)
	ctx := context.Background()

	require.NoError(t, repo.UpsertPreference(ctx, &models.NotificationPreference{
		TenantID:    "tenant-1",
		EmailAlerts: true,
		Email:       "ops@example.com",
	}))

	enabled, err := d.Dispatch(ctx, testIncident())
	assert.True(t, enabled)
	assert.ErrorIs(t, err, sendErr)
}

func TestDispatcher_NoRecipient(t *testing.T) {
	ch := &fakeChannel{}
	d, _ := newTestDispatcher(ch)

	// Lazy default has alerts enabled but no address
	enabled, err := d.Dispatch(context.Background(), testIncident())
	assert.True(t, enabled)
	assert.ErrorIs(t, err, ErrNoRecipient)
	assert.Empty(t, ch.sent)
}

func TestBuildMessage(t *testing.T) {
	inc := testIncident()
	inc.Flow = models.FlowDescriptor{SourceIP: "203.0.113.7", DestinationIP: "198.51.100.1", Port: 443}
	inc.Country = "KR"

	msg := string(buildMessage("alerts@netsentry.io", "ops@example.com", inc))

	assert.Contains(t, msg, "From: alerts@netsentry.io")
	assert.Contains(t, msg, "To: ops@example.com")
	assert.Contains(t, msg, "SYN_FLOOD")
	assert.Contains(t, msg, "203.0.113.7")
	assert.Contains(t, msg, "198.51.100.1:443")
	assert.Contains(t, msg, "Country:    KR")
	assert.Contains(t, msg, "Severity:   high")
}

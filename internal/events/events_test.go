package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/common/messaging"
	"github.com/netsentry-io/netsentry/internal/models"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	messages []published
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, published{subject: subject, data: data})
	return nil
}

func (f *fakePublisher) PublishJSON(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return f.Publish(ctx, subject, data)
}

func (f *fakePublisher) Close() error { return nil }

func testLogger() *logging.Logger {
	return logging.New(slog.LevelError, "text")
}

func TestPublisher_IncidentCreated(t *testing.T) {
	fake := &fakePublisher{}
	pub := NewPublisher(fake, testLogger())

	inc := &models.Incident{
		ID:           "inc-1",
		CredentialID: "cred-1",
		TenantID:     "tenant-1",
		Label:        "SYN_FLOOD",
		Severity:     models.SeverityHigh,
		Category:     models.CategoryDDoS,
		Status:       models.IncidentActive,
		Timestamp:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	pub.IncidentCreated(context.Background(), inc)

	require.Len(t, fake.messages, 1)
	assert.Equal(t, messaging.IncidentSubject("cred-1"), fake.messages[0].subject)

	var event IncidentCreated
	require.NoError(t, json.Unmarshal(fake.messages[0].data, &event))
	assert.Equal(t, "inc-1", event.IncidentID)
	assert.Equal(t, "SYN_FLOOD", event.Label)
	assert.Equal(t, "high", event.Severity)
	assert.Equal(t, "ddos", event.Category)
}

func TestPublisher_ThreatIPsUpdated(t *testing.T) {
	fake := &fakePublisher{}
	pub := NewPublisher(fake, testLogger())

	pub.ThreatIPsUpdated(context.Background(), "cred-2", 42)

	require.Len(t, fake.messages, 1)
	assert.Equal(t, messaging.SubjectThreatIPsUpdated, fake.messages[0].subject)

	var event ThreatIPsUpdated
	require.NoError(t, json.Unmarshal(fake.messages[0].data, &event))
	assert.Equal(t, "cred-2", event.CredentialID)
	assert.Equal(t, 42, event.Count)
	assert.False(t, event.UpdatedAt.IsZero())
}

func TestPublisher_AlertDispatched(t *testing.T) {
	fake := &fakePublisher{}
	pub := NewPublisher(fake, testLogger())

	inc := &models.Incident{ID: "inc-3", TenantID: "tenant-3"}
	pub.AlertDispatched(context.Background(), inc, false, "smtp unreachable")

	require.Len(t, fake.messages, 1)
	assert.Equal(t, messaging.SubjectAlertsDispatched, fake.messages[0].subject)

	var event AlertDispatched
	require.NoError(t, json.Unmarshal(fake.messages[0].data, &event))
	assert.False(t, event.Delivered)
	assert.Equal(t, "smtp unreachable", event.Reason)
}

func TestPublisher_NilClientIsNoOp(t *testing.T) {
	pub := NewPublisher(nil, testLogger())

	assert.NotPanics(t, func() {
		pub.IncidentCreated(context.Background(), &models.Incident{ID: "inc-4"})
		pub.ThreatIPsUpdated(context.Background(), "cred-4", 1)
	})
}

func TestPublisher_PublishErrorIsSwallowed(t *testing.T) {
	fake := &fakePublisher{err: errors.New("broker down")}
	pub := NewPublisher(fake, testLogger())

	assert.NotPanics(t, func() {
		pub.IncidentCreated(context.Background(), &models.Incident{ID: "inc-5"})
	})
	assert.Empty(t, fake.messages)
}

package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsentry-io/netsentry/internal/models"
)

func seriesIncident(ts time.Time, label string, protocol int) *models.Incident {
	return &models.Incident{
		Timestamp: ts,
		Label:     label,
		Flow:      models.FlowDescriptor{Protocol: protocol},
	}
}

func TestBuildSeries_MinuteBuckets(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	incidents := []*models.Incident{
		seriesIncident(base.Add(5*time.Second), "BENIGN", 6),
		seriesIncident(base.Add(40*time.Second), "SYN_FLOOD", 6),
		seriesIncident(base.Add(70*time.Second), "BENIGN", 17),
	}

	buckets := BuildSeries(incidents, nil)
	require.Len(t, buckets, 2)

	assert.Equal(t, base, buckets[0].Time)
	assert.Equal(t, 2, buckets[0].Requests)
	assert.Equal(t, 1, buckets[0].Threats)

	assert.Equal(t, base.Add(time.Minute), buckets[1].Time)
	assert.Equal(t, 1, buckets[1].Requests)
	assert.Equal(t, 0, buckets[1].Threats)
}

func TestBuildSeries_NormalNotAThreat(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	buckets := BuildSeries([]*models.Incident{
		seriesIncident(base, "normal", 6),
		seriesIncident(base, "BENIGN", 6),
		seriesIncident(base, "Port_Scan", 6),
	}, nil)

	require.Len(t, buckets, 1)
	assert.Equal(t, 3, buckets[0].Requests)
	assert.Equal(t, 1, buckets[0].Threats)
}

func TestBuildSeries_TruncatesToRecentBuckets(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	incidents := make([]*models.Incident, 0, 40)
	for i := 0; i < 40; i++ {
		incidents = append(incidents, seriesIncident(base.Add(time.Duration(i)*time.Minute), "BENIGN", 6))
	}

	buckets := BuildSeries(incidents, nil)
	require.Len(t, buckets, seriesBuckets)
	// Truncation keeps the most recent buckets, still ascending
	assert.Equal(t, base.Add(10*time.Minute), buckets[0].Time)
	assert.Equal(t, base.Add(39*time.Minute), buckets[len(buckets)-1].Time)
}

func TestBuildSeries_ProtocolFilter(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	incidents := []*models.Incident{
		seriesIncident(base, "BENIGN", 6),
		seriesIncident(base, "BENIGN", 17),
		seriesIncident(base, "BENIGN", 99), // unrecognized protocol code
	}

	// Selecting a strict subset filters rows
	buckets := BuildSeries(incidents, []int{6})
	require.Len(t, buckets, 1)
	assert.Equal(t, 1, buckets[0].Requests)

	// Selecting every known protocol must be a no-op, keeping even
	// unrecognized codes
	buckets = BuildSeries(incidents, []int{1, 6, 17})
	require.Len(t, buckets, 1)
	assert.Equal(t, 3, buckets[0].Requests)

	// Nil filter behaves the same
	buckets = BuildSeries(incidents, nil)
	require.Len(t, buckets, 1)
	assert.Equal(t, 3, buckets[0].Requests)
}

func TestParseRange(t *testing.T) {
	now := time.Date(2026, 3, 15, 13, 30, 0, 0, time.UTC)

	from, to, err := ParseRange("today", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, now, to)

	from, _, err = ParseRange("7d", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -7), from)

	from, _, err = ParseRange("30d", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -30), from)

	from, _, err = ParseRange("90d", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -90), from)

	_, _, err = ParseRange("1y", now)
	assert.Error(t, err)
}

func TestParseRange_EmptyDefaultsToToday(t *testing.T) {
	now := time.Date(2026, 3, 15, 13, 30, 0, 0, time.UTC)
	from, _, err := ParseRange("", now)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d-03-15", 2026), from.Format("2006-01-02"))
	assert.Equal(t, 0, from.Hour())
}

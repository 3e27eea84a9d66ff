// Package seeder generates synthetic detector traffic for testing and
// demos.
package seeder

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/netsentry-io/netsentry/internal/models"
)

// attackLabels are the detector classes a seeded report can carry.
var attackLabels = []string{
	"ICMP_FLOOD",
	"OTHER_TCP_FLOOD",
	"SYN_FLOOD",
	"UDP_AMPLIFY",
	"UDP_FLOOD",
	"PORT_SCAN",
	"SLOWLORIS_ATTACK",
}

// protocolForLabel picks a plausible transport for the attack class.
func protocolForLabel(label string) int {
	switch label {
	case "ICMP_FLOOD":
		return 1
	case "UDP_AMPLIFY", "UDP_FLOOD":
		return 17
	default:
		return 6
	}
}

// Generator produces randomized reports. Seeding the faker makes a run
// reproducible.
type Generator struct {
	faker *gofakeit.Faker

	// BenignRatio is the fraction of generated reports labeled BENIGN.
	BenignRatio float64
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		faker:       gofakeit.New(seed),
		BenignRatio: 0.6,
	}
}

// Report generates one synthetic detector report with a timestamp
// inside the spread window ending now.
func (g *Generator) Report(spread time.Duration) *models.ReportRequest {
	label := "BENIGN"
	confidence := g.faker.Float64Range(0.5, 0.99)
	if g.faker.Float64Range(0, 1) > g.BenignRatio {
		label = attackLabels[g.faker.Number(0, len(attackLabels)-1)]
	}

	ts := time.Now().UTC()
	if spread > 0 {
		ts = ts.Add(-time.Duration(g.faker.Number(0, int(spread.Seconds()))) * time.Second)
	}

	flowCount := g.faker.Number(1, 5000)

	return &models.ReportRequest{
		Label: label,
		// Mix numeric and percentage-string confidence like real
		// detectors do.
		Confidence: g.confidenceValue(confidence),
		Timestamp:  ts.Format(time.RFC3339),
		Country:    g.faker.CountryAbr(),
		Flow: models.FlowDescriptor{
			SourceIP:      g.faker.IPv4Address(),
			DestinationIP: g.faker.IPv4Address(),
			Port:          g.faker.Number(1, 65535),
			Protocol:      protocolForLabel(label),
			Duration:      g.faker.Float64Range(0.01, 120),
			PacketCount:   int64(g.faker.Number(10, 1_000_000)),
			ByteCount:     int64(g.faker.Number(1_000, 100_000_000)),
		},
		Features: map[string]any{
			"flow_count": flowCount,
		},
	}
}

func (g *Generator) confidenceValue(c float64) any {
	if g.faker.Bool() {
		return c
	}
	return fmt.Sprintf("%.0f%%", c*100)
}

// ThreatIPBatch generates a per-IP aggregate batch of n entries.
func (g *Generator) ThreatIPBatch(n int) *models.ThreatIPBatchRequest {
	entries := make([]models.ThreatIPEntry, n)
	for i := range entries {
		hits := int64(g.faker.Number(1, 50_000))
		entries[i] = models.ThreatIPEntry{
			SourceIP:  g.faker.IPv4Address(),
			TotalHits: hits,
			LastSeen:  time.Now().UTC().Format(time.RFC3339),
			Events: map[string]any{
				time.Now().UTC().Format("2006-01-02T15:04"): hits,
			},
		}
	}
	return &models.ThreatIPBatchRequest{
		TotalUniqueThreatIPs: n,
		ThreatIPList:         entries,
	}
}

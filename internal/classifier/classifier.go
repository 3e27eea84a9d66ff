// Package classifier turns raw detector reports into classified
// incidents. Classification is deterministic and side-effect free;
// persistence is the caller's job.
package classifier

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/netsentry-io/netsentry/internal/apperr"
	"github.com/netsentry-io/netsentry/internal/models"
)

// labelCategories is the fixed label-to-category table. Lookup is by
// uppercased label; anything unknown falls into the "other" bucket.
var labelCategories = map[string]models.Category{
	"BENIGN": models.CategoryNormal,

	"ICMP_FLOOD":      models.CategoryDDoS,
	"OTHER_TCP_FLOOD": models.CategoryDDoS,
	"SYN_FLOOD":       models.CategoryDDoS,
	"UDP_AMPLIFY":     models.CategoryDDoS,
	"UDP_FLOOD":       models.CategoryDDoS,

	"PORT_SCAN": models.CategoryReconnaissance,

	"SLOWLORIS_ATTACK": models.CategorySlowAttack,
}

// CategoryForLabel resolves the attack-family bucket for a label.
func CategoryForLabel(label string) models.Category {
	if cat, ok := labelCategories[strings.ToUpper(strings.TrimSpace(label))]; ok {
		return cat
	}
	return models.CategoryOther
}

// NormalizeConfidence converts a reported confidence value to [0,1].
// Percentage strings ("92%") are divided by 100; plain numbers are
// used as-is; anything unparseable or absent becomes 0. The result is
// clamped so downstream thresholds always see a valid probability.
func NormalizeConfidence(v any) float64 {
	var c float64
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		c = val
	case int:
		c = float64(val)
	case string:
		s := strings.TrimSpace(val)
		if strings.HasSuffix(s, "%") {
			n, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
			if err != nil {
				return 0
			}
			c = n / 100
		} else {
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0
			}
			c = n
		}
	default:
		return 0
	}

	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// severityFor derives the risk tier from label and confidence.
// Benign traffic is always low, regardless of confidence.
func severityFor(label string, confidence float64) models.Severity {
	switch {
	case models.IsBenignLabel(label):
		return models.SeverityLow
	case confidence >= 0.8:
		return models.SeverityHigh
	case confidence >= 0.5:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// timestampFormats accepted from detectors, tried in order.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Classify derives the incident record from an inbound report. The
// returned incident has no ID or credential attribution; the caller
// fills those in before persisting. receivedAt is the fallback time
// when the report carries no parseable timestamp; if both are missing
// the report is rejected.
func Classify(req *models.ReportRequest, receivedAt time.Time) (*models.Incident, error) {
	ts, ok := parseTimestamp(req.Timestamp)
	if !ok {
		if receivedAt.IsZero() {
			return nil, fmt.Errorf("%w: report has no parseable timestamp", apperr.ErrInvalidInput)
		}
		ts = receivedAt
	}

	confidence := NormalizeConfidence(req.Confidence)

	status := models.IncidentActive
	if models.IsBenignLabel(req.Label) {
		status = models.IncidentResolved
	}

	inc := &models.Incident{
		Timestamp:  ts.UTC(),
		Label:      req.Label,
		Confidence: confidence,
		Category:   CategoryForLabel(req.Label),
		Severity:   severityFor(req.Label, confidence),
		Status:     status,
		Flow:       req.Flow,
		Country:    req.Country,
		Evidence:   buildEvidence(req),
	}

	return inc, nil
}

// buildEvidence folds the schema-less report payloads into one opaque
// document. Detector feature fields sit at the top level so the
// flow-count accessor finds them.
func buildEvidence(req *models.ReportRequest) models.Evidence {
	if len(req.Features) == 0 && len(req.Candidates) == 0 && len(req.Probabilities) == 0 {
		return nil
	}

	ev := models.Evidence{}
	for k, v := range req.Features {
		ev[k] = v
	}
	if len(req.Candidates) > 0 {
		ev["candidates"] = req.Candidates
	}
	if len(req.Probabilities) > 0 {
		ev["probabilities"] = req.Probabilities
	}
	return ev
}

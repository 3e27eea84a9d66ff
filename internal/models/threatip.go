package models

import "time"

// ThreatLevel is the hit-volume tier assigned to an aggregated IP.
type ThreatLevel string

const (
	ThreatLevelLow    ThreatLevel = "low"
	ThreatLevelMedium ThreatLevel = "medium"
	ThreatLevelHigh   ThreatLevel = "high"
)

// ThreatLevelForHits derives the tier from a total hit count.
func ThreatLevelForHits(totalHits int64) ThreatLevel {
	switch {
	case totalHits > 10000:
		return ThreatLevelHigh
	case totalHits > 2000:
		return ThreatLevelMedium
	default:
		return ThreatLevelLow
	}
}

// ThreatIPRecord aggregates hits from one source IP against one
// credential. Unique on (credential_id, ip); batch ingestion replaces
// the row wholesale, last batch wins.
type ThreatIPRecord struct {
	CredentialID string      `json:"credential_id"`
	IP           string      `json:"ip"`
	ThreatLevel  ThreatLevel `json:"threat_level"`

	// Details holds the raw per-IP blob from the batch: total_hits,
	// last_seen, and per-timestamp event counters.
	Details map[string]any `json:"details,omitempty"`

	Blocked   bool      `json:"blocked"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalHits reads the total_hits field out of Details, 0 when absent.
func (r *ThreatIPRecord) TotalHits() int64 {
	if r.Details == nil {
		return 0
	}
	switch v := r.Details["total_hits"].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}

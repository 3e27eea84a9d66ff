package models

import (
	"strings"
	"time"
)

// Severity is the derived risk tier of an incident.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IncidentStatus tracks whether an incident needs attention.
type IncidentStatus string

const (
	IncidentActive   IncidentStatus = "active"
	IncidentResolved IncidentStatus = "resolved"
)

// Category buckets detection labels into attack families.
type Category string

const (
	CategoryDDoS           Category = "ddos"
	CategoryReconnaissance Category = "reconnaissance"
	CategorySlowAttack     Category = "slow-attack"
	CategoryNormal         Category = "normal"
	CategoryOther          Category = "other"
)

// FlowDescriptor carries the network-flow fields reported by the detector.
type FlowDescriptor struct {
	SourceIP      string  `json:"source_ip,omitempty"`
	DestinationIP string  `json:"destination_ip,omitempty"`
	Port          int     `json:"port,omitempty"`
	Protocol      int     `json:"protocol,omitempty"`
	Duration      float64 `json:"duration,omitempty"`
	PacketCount   int64   `json:"packet_count,omitempty"`
	ByteCount     int64   `json:"byte_count,omitempty"`
}

// Evidence is the schema-less document a detector attaches to a report
// (feature evidence, candidate rankings, probability map). Only the
// flow-count field has a typed reader; everything else is opaque.
type Evidence map[string]any

// FlowCount returns the numeric flow_count evidence field, or 0 when
// it is absent or not a number.
func (e Evidence) FlowCount() float64 {
	if e == nil {
		return 0
	}
	switch v := e["flow_count"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// Incident is one classified detector report. Severity, status and
// category are pure functions of (label, confidence); rows are written
// once and never updated.
type Incident struct {
	ID           string `json:"id"` // UUIDv7
	CredentialID string `json:"credential_id"`
	TenantID     string `json:"tenant_id"`

	Timestamp  time.Time      `json:"timestamp"`
	Label      string         `json:"label"`
	Confidence float64        `json:"confidence"` // normalized to [0,1]
	Category   Category       `json:"category"`
	Severity   Severity       `json:"severity"`
	Status     IncidentStatus `json:"status"`

	Flow     FlowDescriptor `json:"flow"`
	Country  string         `json:"country,omitempty"`
	Evidence Evidence       `json:"evidence,omitempty"`
}

// IsBenign reports whether the incident's label is the benign class.
func (i *Incident) IsBenign() bool {
	return IsBenignLabel(i.Label)
}

// IsBenignLabel matches the detector's benign class, case-insensitively.
func IsBenignLabel(label string) bool {
	return strings.EqualFold(label, "BENIGN")
}

// IsThreatLabel reports whether a label counts as a threat for series
// and rollup purposes. Both "benign" and "normal" are excluded.
func IsThreatLabel(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	return l != "benign" && l != "normal"
}

package models

// ReportRequest is the inbound telemetry payload from a detector.
// Confidence may be a JSON number or a percentage string ("92%").
type ReportRequest struct {
	Label      string         `json:"label"`
	Confidence any            `json:"confidence,omitempty"`
	Category   string         `json:"category,omitempty"`
	Timestamp  string         `json:"timestamp,omitempty"`
	Flow       FlowDescriptor `json:"flow,omitempty"`
	Country    string         `json:"country,omitempty"`

	// Free-form detector evidence, stored opaque.
	Candidates    []any          `json:"candidates,omitempty"`
	Features      map[string]any `json:"features,omitempty"`
	Probabilities map[string]any `json:"probabilities,omitempty"`
}

// IngestResponse is returned for a successfully ingested report.
// AlertError is set when the incident was stored but the alert email
// could not be delivered.
type IngestResponse struct {
	Severity          string `json:"severity"`
	Status            string `json:"status"`
	EmailAlertEnabled bool   `json:"emailAlertEnabled"`
	AlertError        string `json:"alert_error,omitempty"`
}

// ThreatIPEntry is one per-IP aggregate in a batch upload.
type ThreatIPEntry struct {
	SourceIP  string         `json:"source_ip"`
	TotalHits int64          `json:"total_hits"`
	LastSeen  string         `json:"last_seen,omitempty"`
	Events    map[string]any `json:"events,omitempty"`
}

// ThreatIPBatchRequest is the batch per-IP ingestion payload.
type ThreatIPBatchRequest struct {
	TotalUniqueThreatIPs int             `json:"total_unique_threat_ips"`
	ThreatIPList         []ThreatIPEntry `json:"threat_ip_list"`
}

type CreateKeyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateKeyResponse carries the plaintext secrets exactly once.
type CreateKeyResponse struct {
	Credential  *CredentialResponse `json:"credential"`
	APIKey      string              `json:"api_key"`
	IngestToken string              `json:"ingest_token"`
}

type UpdateKeyRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

type SetKeyStatusRequest struct {
	Status string `json:"status"` // "active" or "inactive"
}

type SetCallbackRequest struct {
	URL string `json:"url"`
}

type RevealResponse struct {
	Secret string `json:"secret"`
}

type UpdatePreferenceRequest struct {
	EmailAlerts *bool  `json:"email_alerts,omitempty"`
	Email       string `json:"email,omitempty"`
}

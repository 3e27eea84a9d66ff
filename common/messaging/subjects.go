// Package messaging defines standard subject names for the NetSentry message bus.
package messaging

// Subject constants for the NetSentry message bus.
// Follow the pattern: {domain}.{resource}.{action}
const (
	// Incident lifecycle subjects - published by the ingest pipeline
	SubjectIncidentsCreated = "ingest.incidents.created" // New classified incident stored

	// Threat IP subjects - published after batch aggregation
	SubjectThreatIPsUpdated = "ingest.threatips.updated" // Per-IP aggregate rows upserted

	// Alert subjects - published when the decision engine fires
	SubjectAlertsDispatched = "alerts.email.dispatched" // Email alert attempted (success or failure)

	// SubjectIncidentsAll matches the incident feed of every credential.
	SubjectIncidentsAll = SubjectIncidentsCreated + ".*"
)

// Queue group names for load-balanced consumers.
// Workers in the same queue group share messages (each message processed once).
const (
	QueueDashboardWorkers = "dashboard-workers" // Pool of live-feed fanout workers
)

// IncidentSubject returns the per-credential subject for incident events.
// Example: ingest.incidents.created.0198b2c4
func IncidentSubject(credentialID string) string {
	return SubjectIncidentsCreated + "." + credentialID
}

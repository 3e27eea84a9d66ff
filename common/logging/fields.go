package logging

import "log/slog"

// Common field names for consistent logging across the pipeline.
const (
	FieldService      = "service"
	FieldTenantID     = "tenant_id"
	FieldCredentialID = "credential_id"
	FieldIncidentID   = "incident_id"
	FieldIP           = "ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatus       = "status"
	FieldDuration     = "duration_ms"
	FieldError        = "error"
	FieldSeverity     = "severity"
	FieldLabel        = "label"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// TenantID returns a slog attribute for the owning tenant.
func TenantID(id string) slog.Attr {
	return slog.String(FieldTenantID, id)
}

// CredentialID returns a slog attribute for an API credential.
func CredentialID(id string) slog.Attr {
	return slog.String(FieldCredentialID, id)
}

// IncidentID returns a slog attribute for a classified incident.
func IncidentID(id string) slog.Attr {
	return slog.String(FieldIncidentID, id)
}

// IP returns a slog attribute for the IP address.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// Severity returns a slog attribute for an incident severity tier.
func Severity(s string) slog.Attr {
	return slog.String(FieldSeverity, s)
}

// Label returns a slog attribute for a raw detection label.
func Label(l string) slog.Attr {
	return slog.String(FieldLabel, l)
}

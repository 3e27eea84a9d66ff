// Package alert decides whether a classified incident warrants a
// notification and dispatches it over the email channel.
package alert

import (
	"strings"

	"github.com/netsentry-io/netsentry/internal/models"
)

// highImpactTokens are attack-family fragments that force an alert
// even below the severity and confidence thresholds. Matched
// case-insensitively as substrings of the raw label.
var highImpactTokens = []string{
	"FLOOD",
	"AMPLIFY",
	"SLOWLORIS",
}

// ShouldAlert reports whether an incident warrants a notification:
// the label must be non-benign, and at least one of severity high,
// confidence >= 0.9, or a high-impact family match must hold.
func ShouldAlert(inc *models.Incident) bool {
	if inc.IsBenign() {
		return false
	}

	if inc.Severity == models.SeverityHigh {
		return true
	}
	if inc.Confidence >= 0.9 {
		return true
	}

	label := strings.ToUpper(inc.Label)
	for _, token := range highImpactTokens {
		if strings.Contains(label, token) {
			return true
		}
	}
	return false
}

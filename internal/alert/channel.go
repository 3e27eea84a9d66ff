package alert

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/netsentry-io/netsentry/internal/models"
)

// Channel delivers an incident notification to a contact address.
type Channel interface {
	Send(ctx context.Context, to string, inc *models.Incident) error
}

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPChannel sends alert mail over plain SMTP with AUTH.
type SMTPChannel struct {
	cfg SMTPConfig
}

// NewSMTPChannel creates an email channel from config.
func NewSMTPChannel(cfg SMTPConfig) *SMTPChannel {
	return &SMTPChannel{cfg: cfg}
}

// Send delivers the alert. A failure here is reported to the caller
// but must never undo the already-persisted incident.
func (c *SMTPChannel) Send(_ context.Context, to string, inc *models.Incident) error {
	if to == "" {
		return fmt.Errorf("alert channel: no recipient address")
	}

	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
	auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)

	msg := buildMessage(c.cfg.From, to, inc)
	if err := smtp.SendMail(addr, auth, c.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("alert channel: %w", err)
	}
	return nil
}

// LogChannel stands in when no mail transport is configured. The alert
// decision still runs; delivery is a log line.
type LogChannel struct {
	Logf func(format string, args ...any)
}

func (c LogChannel) Send(_ context.Context, to string, inc *models.Incident) error {
	if c.Logf != nil {
		c.Logf("alert for %s (severity %s) would be sent to %s", inc.Label, inc.Severity, to)
	}
	return nil
}

// buildMessage renders the alert mail with the full incident payload.
func buildMessage(from, to string, inc *models.Incident) []byte {
	subject := fmt.Sprintf("[Threat Detected] %s (%s -> %s)",
		inc.Label, inc.Flow.SourceIP, inc.Flow.DestinationIP)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "A security threat was detected.\r\n\r\n")
	fmt.Fprintf(&b, "Detection:  %s\r\n", inc.Label)
	fmt.Fprintf(&b, "Severity:   %s\r\n", inc.Severity)
	fmt.Fprintf(&b, "Confidence: %.2f\r\n", inc.Confidence)
	fmt.Fprintf(&b, "Category:   %s\r\n", inc.Category)
	fmt.Fprintf(&b, "Time:       %s\r\n", inc.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Source:     %s\r\n", inc.Flow.SourceIP)
	fmt.Fprintf(&b, "Target:     %s:%d\r\n", inc.Flow.DestinationIP, inc.Flow.Port)
	if inc.Country != "" {
		fmt.Fprintf(&b, "Country:    %s\r\n", inc.Country)
	}
	b.WriteString("\r\nReview the full incident in the dashboard.\r\n")

	return []byte(b.String())
}

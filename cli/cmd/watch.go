package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsentry-io/netsentry/cli/pkg/output"
	"github.com/netsentry-io/netsentry/common/messaging"
	natsclient "github.com/netsentry-io/netsentry/common/messaging/nats"
	"github.com/netsentry-io/netsentry/internal/events"
)

var statsWatchCmd = &cobra.Command{
	Use:   "watch [CREDENTIAL_ID]",
	Short: "Live-tail pipeline events from the message bus",
	Long: `Subscribe to the incident, threat-IP, and alert feeds and print
events as they arrive. With a credential ID only that credential's
incident feed is followed; without one, every credential's.

Examples:
  nsentry stats watch
  nsentry stats watch 0198b2c4-... --nats-url nats://broker:4222
  nsentry stats watch --queue`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats-url")
		queue, _ := cmd.Flags().GetBool("queue")

		busCfg := natsclient.DefaultConfig()
		busCfg.URL = natsURL
		busCfg.Name = "nsentry-watch"
		busCfg.MaxReconnects = 10

		nc, err := natsclient.NewClient(busCfg)
		if err != nil {
			return err
		}
		defer nc.Close()
		if !nc.IsConnected() {
			return fmt.Errorf("not connected to %s", natsURL)
		}

		incidentSubject := messaging.SubjectIncidentsAll
		if len(args) == 1 {
			incidentSubject = messaging.IncidentSubject(args[0])
		}

		handler := func(_ context.Context, msg *messaging.Message) error {
			line, err := renderBusMessage(msg)
			if err != nil {
				return err
			}
			fmt.Println(line)
			return nil
		}

		subjects := []string{
			incidentSubject,
			messaging.SubjectThreatIPsUpdated,
			messaging.SubjectAlertsDispatched,
		}
		for _, subject := range subjects {
			var sub messaging.Subscription
			if queue {
				sub, err = nc.QueueSubscribe(subject, messaging.QueueDashboardWorkers, handler)
			} else {
				sub, err = nc.Subscribe(subject, handler)
			}
			if err != nil {
				return fmt.Errorf("subscribe %s: %w", subject, err)
			}
			output.Info("watching %s", sub.Subject())
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		return nc.Drain()
	},
}

// renderBusMessage formats one bus message as a terminal line.
func renderBusMessage(msg *messaging.Message) (string, error) {
	switch {
	case strings.HasPrefix(msg.Subject, messaging.SubjectIncidentsCreated):
		var ev events.IncidentCreated
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return "", fmt.Errorf("decode incident event: %w", err)
		}
		return fmt.Sprintf("%s  incident  %-8s %-16s cred=%s src=%s",
			ev.Timestamp.Format(time.RFC3339), ev.Severity, ev.Label, ev.CredentialID, ev.IncidentID), nil

	case msg.Subject == messaging.SubjectThreatIPsUpdated:
		var ev events.ThreatIPsUpdated
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return "", fmt.Errorf("decode threat-ip event: %w", err)
		}
		return fmt.Sprintf("%s  threat-ips  %d rows cred=%s",
			ev.UpdatedAt.Format(time.RFC3339), ev.Count, ev.CredentialID), nil

	case msg.Subject == messaging.SubjectAlertsDispatched:
		var ev events.AlertDispatched
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return "", fmt.Errorf("decode alert event: %w", err)
		}
		if ev.Delivered {
			return fmt.Sprintf("alert  delivered  incident=%s", ev.IncidentID), nil
		}
		return fmt.Sprintf("alert  FAILED  incident=%s reason=%s", ev.IncidentID, ev.Reason), nil

	default:
		return fmt.Sprintf("%s  %s", msg.Subject, string(msg.Data)), nil
	}
}

func init() {
	statsCmd.AddCommand(statsWatchCmd)

	statsWatchCmd.Flags().String("nats-url", "nats://localhost:4222", "NATS server URL")
	statsWatchCmd.Flags().Bool("queue", false, "Join the shared dashboard worker pool instead of a fan-out tail")
}

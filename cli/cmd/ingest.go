package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netsentry-io/netsentry/cli/internal/client"
	"github.com/netsentry-io/netsentry/cli/pkg/output"
	"github.com/netsentry-io/netsentry/internal/models"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Send telemetry to the pipeline",
}

// ingestClient resolves the server URL and ingest token from flags,
// falling back to the profile. Ingest endpoints are keyed by the
// ingest token, not the dashboard session, so login is optional.
func ingestClient(cmd *cobra.Command) (*client.Client, string, error) {
	server, _ := cmd.Flags().GetString("server")
	token, _ := cmd.Flags().GetString("token")

	profile, _ := cmd.Flags().GetString("profile")
	if p, err := cfg.GetProfile(profile); err == nil {
		if server == "" {
			server = p.ServerURL
		}
		if token == "" {
			token = p.IngestToken
		}
	}
	if server == "" {
		server = "http://localhost:8080"
	}
	if token == "" {
		return nil, "", fmt.Errorf("no ingest token; pass --token or save one with 'nsentry keys create --save-token'")
	}
	return client.New(server, ""), token, nil
}

var ingestReportCmd = &cobra.Command{
	Use:   "report FILE",
	Short: "Send one detector report from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, token, err := ingestClient(cmd)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var report models.ReportRequest
		if err := json.Unmarshal(data, &report); err != nil {
			return fmt.Errorf("invalid report file: %w", err)
		}

		resp, err := c.SendReport(token, &report)
		if err != nil {
			return err
		}
		output.Success("Ingested: severity=%s status=%s", resp.Severity, resp.Status)
		return nil
	},
}

var ingestIPsCmd = &cobra.Command{
	Use:   "ip-threats FILE",
	Short: "Send a per-IP aggregate batch from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, token, err := ingestClient(cmd)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var batch models.ThreatIPBatchRequest
		if err := json.Unmarshal(data, &batch); err != nil {
			return fmt.Errorf("invalid batch file: %w", err)
		}

		processed, err := c.SendThreatIPs(token, &batch)
		if err != nil {
			return err
		}
		output.Success("Processed %d threat IPs", processed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.AddCommand(ingestReportCmd)
	ingestCmd.AddCommand(ingestIPsCmd)

	ingestCmd.PersistentFlags().String("server", "", "Server URL (default from profile)")
	ingestCmd.PersistentFlags().String("token", "", "Ingest token (default from profile)")
}

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsentry-io/netsentry/cli/pkg/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Threat statistics commands",
	Long:  "Inspect per-credential rollups, time series, incidents, and threat IPs",
}

var statsRollupCmd = &cobra.Command{
	Use:   "rollup CREDENTIAL_ID",
	Short: "Show the threat rollup for a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient(cmd)
		if err != nil {
			return err
		}
		summary, err := c.Rollup(args[0])
		if err != nil {
			return err
		}

		if outputFormat(cmd) == "json" {
			return output.JSON(summary)
		}
		output.Info("Total threats:        %d", summary.TotalThreats)
		output.Info("DDoS incidents:       %d", summary.DDoSCount)
		output.Info("Attack traffic ratio: %.2f", summary.AttackTrafficRatio)
		output.Info("Avg flow count:       %.1f", summary.AvgFlowCount)
		return nil
	},
}

var statsSeriesCmd = &cobra.Command{
	Use:   "series CREDENTIAL_ID",
	Short: "Show the per-minute traffic series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient(cmd)
		if err != nil {
			return err
		}
		rangeToken, _ := cmd.Flags().GetString("range")
		protocols, err := parseProtocolsFlag(cmd)
		if err != nil {
			return err
		}

		buckets, err := c.Series(args[0], rangeToken, protocols)
		if err != nil {
			return err
		}

		if outputFormat(cmd) == "json" {
			return output.JSON(buckets)
		}
		table := output.NewTable("TIME", "REQUESTS", "THREATS")
		for _, b := range buckets {
			table.AddRow(b.Time.Format(time.RFC3339), strconv.Itoa(b.Requests), strconv.Itoa(b.Threats))
		}
		table.Render()
		return nil
	},
}

var statsIncidentsCmd = &cobra.Command{
	Use:   "incidents CREDENTIAL_ID",
	Short: "List recent incidents for a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient(cmd)
		if err != nil {
			return err
		}
		incidents, err := c.Incidents(args[0])
		if err != nil {
			return err
		}

		if outputFormat(cmd) == "json" {
			return output.JSON(incidents)
		}
		table := output.NewTable("TIME", "LABEL", "SEVERITY", "STATUS", "CONFIDENCE", "SOURCE")
		for _, inc := range incidents {
			table.AddRow(
				inc.Timestamp.Format(time.RFC3339),
				inc.Label,
				string(inc.Severity),
				string(inc.Status),
				fmt.Sprintf("%.2f", inc.Confidence),
				inc.Flow.SourceIP,
			)
		}
		table.Render()
		return nil
	},
}

var statsThreatIPsCmd = &cobra.Command{
	Use:   "threat-ips CREDENTIAL_ID",
	Short: "List tracked threat IPs for a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient(cmd)
		if err != nil {
			return err
		}
		records, err := c.ThreatIPs(args[0])
		if err != nil {
			return err
		}

		if outputFormat(cmd) == "json" {
			return output.JSON(records)
		}
		table := output.NewTable("IP", "LEVEL", "BLOCKED", "UPDATED")
		for _, r := range records {
			table.AddRow(r.IP, string(r.ThreatLevel), strconv.FormatBool(r.Blocked), r.UpdatedAt.Format(time.RFC3339))
		}
		table.Render()
		return nil
	},
}

func parseProtocolsFlag(cmd *cobra.Command) ([]int, error) {
	raw, _ := cmd.Flags().GetString("protocols")
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	protocols := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid protocol %q", part)
		}
		protocols = append(protocols, n)
	}
	return protocols, nil
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsRollupCmd)
	statsCmd.AddCommand(statsSeriesCmd)
	statsCmd.AddCommand(statsIncidentsCmd)
	statsCmd.AddCommand(statsThreatIPsCmd)

	statsSeriesCmd.Flags().String("range", "", "Time range: today, 7d, 30d, or 90d")
	statsSeriesCmd.Flags().String("protocols", "", "Comma-separated protocol numbers to filter (e.g. 6,17)")
}

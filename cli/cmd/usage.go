package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/netsentry-io/netsentry/cli/pkg/output"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show ingestion usage for the tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient(cmd)
		if err != nil {
			return err
		}
		rangeToken, _ := cmd.Flags().GetString("range")

		report, err := c.Usage(rangeToken)
		if err != nil {
			return err
		}

		if outputFormat(cmd) == "json" {
			return output.JSON(report)
		}
		output.Info("Window: %s to %s", report.From.Format("2006-01-02"), report.To.Format("2006-01-02"))
		output.Info("Total requests: %d", report.TotalRequests)
		table := output.NewTable("DATE", "REPORTS", "IP BATCHES")
		for _, day := range report.Days {
			table.AddRow(day.Date, strconv.Itoa(day.Reports), strconv.Itoa(day.IPBatches))
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.Flags().String("range", "", "Time range: today, 7d, 30d, or 90d")
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsentry-io/netsentry/cli/internal/seeder"
	"github.com/netsentry-io/netsentry/cli/pkg/output"
)

var (
	seederCount       int
	seederIPBatch     int
	seederSpread      string
	seederSeed        int64
	seederBenignRatio float64
)

var seederCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Synthetic traffic generator",
	Long: `Generate and send randomized detector reports for testing.

Examples:
  # 100 reports against the profile's server
  nsentry seeder run

  # Heavier, mostly-attack traffic spread over the last day
  nsentry seeder run --count 1000 --benign-ratio 0.2 --spread 24h

  # Reproducible run
  nsentry seeder run --seed 42`,
}

var seederRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the traffic seeder",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, token, err := ingestClient(cmd)
		if err != nil {
			return err
		}

		spread, err := time.ParseDuration(seederSpread)
		if err != nil {
			return fmt.Errorf("invalid --spread: %w", err)
		}
		seed := seederSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}

		res, err := seeder.Run(c, token, seeder.Options{
			Count:       seederCount,
			IPBatchSize: seederIPBatch,
			Spread:      spread,
			Seed:        seed,
			BenignRatio: seederBenignRatio,
			Progress: func(sent, total int) {
				if sent%100 == 0 || sent == total {
					fmt.Printf("\rsent %d/%d", sent, total)
				}
			},
		})
		fmt.Println()
		if err != nil {
			return err
		}

		output.Success("Seeded %d reports (%d failed)", res.Reports, res.Failures)
		for severity, n := range res.BySeverity {
			output.Info("  %-7s %d", severity, n)
		}
		if res.ThreatIPs > 0 {
			output.Info("Threat IP rows written: %d", res.ThreatIPs)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seederCmd)
	seederCmd.AddCommand(seederRunCmd)

	seederRunCmd.Flags().IntVar(&seederCount, "count", 100, "Number of reports to send")
	seederRunCmd.Flags().IntVar(&seederIPBatch, "ip-batch", 0, "Send a trailing threat-IP batch of this size")
	seederRunCmd.Flags().StringVar(&seederSpread, "spread", "1h", "Spread report timestamps over this window")
	seederRunCmd.Flags().Int64Var(&seederSeed, "seed", 0, "Random seed (0 = time-based)")
	seederRunCmd.Flags().Float64Var(&seederBenignRatio, "benign-ratio", 0.6, "Fraction of BENIGN reports")
	seederRunCmd.Flags().String("server", "", "Server URL (default from profile)")
	seederRunCmd.Flags().String("token", "", "Ingest token (default from profile)")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netsentry-io/netsentry/cli/internal/client"
	"github.com/netsentry-io/netsentry/cli/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "nsentry",
	Short: "NetSentry CLI",
	Long: `nsentry is the command-line interface for the NetSentry threat
telemetry pipeline.

Manage ingestion credentials, send detector reports, inspect threat
statistics, and configure alerting from your terminal.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.nsentry/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "default", "profile to use")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load config: %v\n", err)
		cfg = config.Default()
	}
}

// apiClient builds a client for the named profile, requiring a stored
// session token.
func apiClient(cmd *cobra.Command) (*client.Client, *config.Profile, error) {
	profile, _ := cmd.Flags().GetString("profile")
	p, err := cfg.GetProfile(profile)
	if err != nil {
		return nil, nil, fmt.Errorf("not logged in: %w", err)
	}
	if p.SessionToken == "" {
		return nil, nil, fmt.Errorf("no session for profile %q, run 'nsentry auth login'", profile)
	}
	return client.New(p.ServerURL, p.SessionToken), p, nil
}

func outputFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("output")
	return format
}

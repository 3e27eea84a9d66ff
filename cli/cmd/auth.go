package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netsentry-io/netsentry/cli/internal/client"
	"github.com/netsentry-io/netsentry/cli/internal/config"
	"github.com/netsentry-io/netsentry/cli/pkg/output"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Manage API key sessions for the NetSentry server",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with an API key",
	Long:  "Exchange an API key for a session token and save it to the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey, _ := cmd.Flags().GetString("api-key")
		server, _ := cmd.Flags().GetString("server")
		profile, _ := cmd.Flags().GetString("profile")

		if server == "" {
			if p, err := cfg.GetProfile(profile); err == nil && p.ServerURL != "" {
				server = p.ServerURL
			} else {
				server = "http://localhost:8080"
			}
		}

		c := client.New(server, "")
		token, err := c.Login(apiKey)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		p := &config.Profile{
			ServerURL:    server,
			APIKey:       apiKey,
			SessionToken: token,
		}
		if existing, err := cfg.GetProfile(profile); err == nil {
			p.IngestToken = existing.IngestToken
		}
		if err := cfg.SaveProfile(profile, p); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		output.Success("Logged in to %s", server)
		output.Info("Profile '%s' saved to ~/.nsentry/config.yaml", profile)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, _ := cmd.Flags().GetString("profile")
		if err := cfg.RemoveProfile(profile); err != nil {
			return err
		}
		output.Success("Logged out from profile '%s'", profile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)

	authLoginCmd.Flags().StringP("api-key", "k", "", "API key to exchange for a session")
	authLoginCmd.Flags().String("server", "", "Server URL (default from profile, else http://localhost:8080)")
	authLoginCmd.MarkFlagRequired("api-key")
}

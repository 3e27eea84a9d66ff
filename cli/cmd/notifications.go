package cmd

import (
	"github.com/spf13/cobra"

	"github.com/netsentry-io/netsentry/cli/pkg/output"
	"github.com/netsentry-io/netsentry/internal/models"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Alert notification preferences",
}

var notificationsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the tenant's notification preference",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient(cmd)
		if err != nil {
			return err
		}
		pref, err := c.GetPreference()
		if err != nil {
			return err
		}

		if outputFormat(cmd) == "json" {
			return output.JSON(pref)
		}
		state := "disabled"
		if pref.EmailAlerts {
			state = "enabled"
		}
		output.Info("Email alerts: %s", state)
		if pref.Email != "" {
			output.Info("Recipient:    %s", pref.Email)
		} else {
			output.Warn("No recipient configured; alerts will be skipped")
		}
		return nil
	},
}

var notificationsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the notification preference",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient(cmd)
		if err != nil {
			return err
		}

		var req models.UpdatePreferenceRequest
		if cmd.Flags().Changed("enabled") {
			enabled, _ := cmd.Flags().GetBool("enabled")
			req.EmailAlerts = &enabled
		}
		req.Email, _ = cmd.Flags().GetString("email")

		pref, err := c.UpdatePreference(req)
		if err != nil {
			return err
		}
		output.Success("Preference updated (alerts=%t, email=%s)", pref.EmailAlerts, pref.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(notificationsShowCmd)
	notificationsCmd.AddCommand(notificationsSetCmd)

	notificationsSetCmd.Flags().Bool("enabled", true, "Enable or disable email alerts")
	notificationsSetCmd.Flags().String("email", "", "Alert recipient address")
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsentry-io/netsentry/cli/pkg/output"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Ingestion credential commands",
	Long:  "Create, inspect, and manage ingestion credentials",
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient(cmd)
		if err != nil {
			return err
		}
		creds, err := c.ListKeys()
		if err != nil {
			return err
		}

		if outputFormat(cmd) == "json" {
			return output.JSON(creds)
		}

		table := output.NewTable("ID", "NAME", "STATUS", "CREATED", "LAST USED")
		for _, cred := range creds {
			lastUsed := "-"
			if cred.LastUsedAt != nil {
				lastUsed = cred.LastUsedAt.Format(time.RFC3339)
			}
			table.AddRow(cred.ID, cred.Name, cred.Status, cred.CreatedAt.Format("2006-01-02"), lastUsed)
		}
		table.Render()
		return nil
	},
}

var keysCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a credential",
	Long:  "Create a credential; the API key and ingest token are shown once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, p, err := apiClient(cmd)
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")

		resp, err := c.CreateKey(args[0], description)
		if err != nil {
			return err
		}

		output.Success("Created credential %s", resp.Credential.ID)
		output.Info("API key:      %s", resp.APIKey)
		output.Info("Ingest token: %s", resp.IngestToken)
		output.Warn("Store these now; they can be re-derived later via 'nsentry keys reveal'")

		if save, _ := cmd.Flags().GetBool("save-token"); save {
			profile, _ := cmd.Flags().GetString("profile")
			p.IngestToken = resp.IngestToken
			if err := cfg.SaveProfile(profile, p); err != nil {
				return fmt.Errorf("failed to save ingest token: %w", err)
			}
			output.Info("Ingest token saved to profile")
		}
		return nil
	},
}

var keysRevealCmd = &cobra.Command{
	Use:   "reveal ID",
	Short: "Re-derive a credential's API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient(cmd)
		if err != nil {
			return err
		}
		ingest, _ := cmd.Flags().GetBool("ingest")

		var secret string
		if ingest {
			secret, err = c.RevealIngestToken(args[0])
		} else {
			secret, err = c.RevealKey(args[0])
		}
		if err != nil {
			return err
		}
		fmt.Println(secret)
		return nil
	},
}

var keysStatusCmd = &cobra.Command{
	Use:   "status ID STATUS",
	Short: "Set a credential active or inactive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient(cmd)
		if err != nil {
			return err
		}
		if err := c.SetKeyStatus(args[0], args[1]); err != nil {
			return err
		}
		output.Success("Credential %s is now %s", args[0], args[1])
		return nil
	},
}

var keysCallbackCmd = &cobra.Command{
	Use:   "callback ID URL",
	Short: "Set a credential's callback URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient(cmd)
		if err != nil {
			return err
		}
		if err := c.SetCallback(args[0], args[1]); err != nil {
			return err
		}
		if test, _ := cmd.Flags().GetBool("test"); test {
			if err := c.TestCallback(args[0]); err != nil {
				return fmt.Errorf("callback saved but test delivery failed: %w", err)
			}
			output.Success("Callback saved and test delivery sent")
			return nil
		}
		output.Success("Callback saved")
		return nil
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := apiClient(cmd)
		if err != nil {
			return err
		}
		if err := c.DeleteKey(args[0]); err != nil {
			return err
		}
		output.Success("Deleted credential %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysListCmd)
	keysCmd.AddCommand(keysCreateCmd)
	keysCmd.AddCommand(keysRevealCmd)
	keysCmd.AddCommand(keysStatusCmd)
	keysCmd.AddCommand(keysCallbackCmd)
	keysCmd.AddCommand(keysDeleteCmd)

	keysCreateCmd.Flags().StringP("description", "d", "", "Credential description")
	keysCreateCmd.Flags().Bool("save-token", false, "Save the ingest token to the active profile")
	keysRevealCmd.Flags().Bool("ingest", false, "Reveal the ingest token instead of the API key")
	keysCallbackCmd.Flags().Bool("test", false, "Send a test delivery after saving")
}

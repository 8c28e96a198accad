package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/altruan/pulpobot/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect pulpobot configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (PULPOBOT_* prefix)
2. Config file (config.yaml)
3. Default values

Example:
  pulpobot config show`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault(configPath)
			}

			fmt.Println("pulpobot Configuration")
			fmt.Println("======================")

			fmt.Println("Pulpo WMS:")
			fmt.Printf("  Base URL:         %s\n", cfg.WMS.BaseURL)
			fmt.Printf("  Sandbox:          %t\n", cfg.WMS.Sandbox)
			fmt.Printf("  Username:         %s\n", cfg.WMS.Username)
			fmt.Printf("  Password:         %s\n", maskSecret(cfg.WMS.Password))
			fmt.Printf("  Rate Limit:       %d calls / %s\n", cfg.WMS.MaxCalls, cfg.WMS.TimeWindow)
			fmt.Printf("  Max Retries:      %d\n", cfg.WMS.MaxRetries)
			fmt.Printf("  Timeout:          %s\n", cfg.WMS.Timeout)

			fmt.Println("\nWeclapp:")
			fmt.Printf("  Base URL:         %s\n", cfg.Weclapp.BaseURL)
			fmt.Printf("  API Token:        %s\n", maskSecret(cfg.Weclapp.APIToken))
			fmt.Printf("  Rate Limit:       %.1f req/s\n", cfg.Weclapp.RequestsPerSecond)

			fmt.Println("\nRoster:")
			fmt.Printf("  Blob Container:   %s\n", cfg.Blob.Container)
			fmt.Printf("  Blob Name:        %s\n", cfg.Blob.BlobName)
			fmt.Printf("  Blob Configured:  %t\n", cfg.Blob.ConnectionString != "")
			fmt.Printf("  Spreadsheet:      %s\n", cfg.Sheets.SpreadsheetID)
			fmt.Printf("  Sheet Name:       %s\n", cfg.Sheets.SheetName)

			fmt.Println("\nAlerting:")
			fmt.Printf("  Teams Webhook:    %t\n", cfg.Alerting.TeamsWebhookURL != "")

			fmt.Println("\nWarehouse:")
			fmt.Printf("  Timezone:         %s\n", cfg.Warehouse.Timezone)
			fmt.Printf("  SKUs File:        %s\n", cfg.Warehouse.SkusFile)

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}

	return cmd
}

// maskSecret hides credential values in display output
func maskSecret(value string) string {
	if value == "" {
		return "(not set)"
	}
	return "********"
}

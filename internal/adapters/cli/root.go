package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pulpobot",
		Short: "pulpobot - picking orchestration for the Pulpo WMS",
		Long: `pulpobot plans warehouse picking for the Pulpo WMS: it batches
single-product orders, fills picking carts by trolley size, routes palette
and Partnerkunde orders to their pickers and keeps the picker roster fresh.

One invocation plans the queue once and exits; the scheduler decides how
often it runs.

Examples:
  pulpobot run
  pulpobot run --config /etc/pulpobot/config.yaml
  pulpobot config show`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search ./, ./configs, /etc/pulpobot)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/diary/internal/config"
	"github.com/existflow/diary/internal/logger"
)

func newConfigCmd(a *app) *cobra.Command {
	var (
		store         string
		timeout       time.Duration
		confirmDelete bool
		metricsAddr   string
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show settings, or persist new ones to ~/.diary/config.yaml.

Examples:
  diary config
  diary config --server https://diary.example.com
  diary config --store sqlite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// start from the file so one-off --server overrides are not persisted
			cfg, err := config.Load()
			if err != nil {
				cfg = config.DefaultConfig()
			}

			changed := false
			if cmd.Flags().Changed("server") {
				cfg.ServerURL, _ = cmd.Flags().GetString("server")
				changed = true
			}
			if cmd.Flags().Changed("store") {
				cfg.CredentialStore = store
				changed = true
			}
			if cmd.Flags().Changed("timeout") {
				cfg.RequestTimeout = timeout
				changed = true
			}
			if cmd.Flags().Changed("confirm-delete") {
				cfg.ConfirmDelete = confirmDelete
				changed = true
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
				changed = true
			}

			if changed {
				if err := cfg.Validate(); err != nil {
					return err
				}
				if err := cfg.Save(); err != nil {
					return err
				}
				logger.Info("Config saved", logger.F("path", config.Path()))
				a.println("✓ Settings saved")
			}

			a.printf("Server:         %s\n", cfg.ServerURL)
			a.printf("Timeout:        %s\n", cfg.RequestTimeout)
			a.printf("Store:          %s\n", cfg.CredentialStore)
			a.printf("Data dir:       %s\n", cfg.DataDir)
			a.printf("Confirm delete: %t\n", cfg.ConfirmDelete)
			if cfg.MetricsAddr != "" {
				a.printf("Metrics:        %s\n", cfg.MetricsAddr)
			}
			return nil
		},
	}

	// --server is inherited from the root command
	cmd.Flags().StringVar(&store, "store", "", "Credential store (file or sqlite)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Request timeout")
	cmd.Flags().BoolVar(&confirmDelete, "confirm-delete", true, "Ask before deleting notes")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics while the TUI runs (e.g. :9091)")
	return cmd
}

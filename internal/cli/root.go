package cli

import (
	"bufio"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/existflow/diary/internal/config"
	"github.com/existflow/diary/internal/logger"
	"github.com/existflow/diary/internal/tui"
)

// Execute runs the root command
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{}

	var (
		serverURL  string
		logLevel   string
		logFile    string
		logConsole bool
		startPath  string
	)

	rootCmd := &cobra.Command{
		Use:   "diary",
		Short: "Diary - personal journal in the terminal",
		Long: `Diary is a terminal client for a personal journal server.
Notes are tagged work, personal, ideas or reminders and live on the server.

Run 'diary' without arguments to launch the interactive TUI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load config from file (or defaults if not exists)
			cfg, err := config.Load()
			if err != nil {
				logger.Warn("Failed to load config, using defaults", logger.F("error", err))
				cfg = config.DefaultConfig()
			}

			// Override with CLI flags if provided
			configChanged := false
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
				configChanged = true
			}
			if cmd.Flags().Changed("log-file") {
				cfg.LogFile = logFile
				configChanged = true
			}
			if cmd.Flags().Changed("log-console") {
				cfg.LogConsole = logConsole
				configChanged = true
			}

			// Save config if changed via CLI flags
			if configChanged {
				if err := cfg.Save(); err != nil {
					logger.Warn("Failed to save config", logger.F("error", err))
				}
			}

			// --server is a one-off override; 'diary config --server' persists it
			if cmd.Flags().Changed("server") {
				cfg.ServerURL = serverURL
			}

			logConfig := logger.Config{
				Level:      logger.ParseLevel(cfg.LogLevel),
				FilePath:   cfg.LogFile,
				MaxSize:    10 * 1024 * 1024, // 10MB
				MaxAge:     7,
				MaxBackups: 5,
				Console:    cfg.LogConsole,
			}

			if err := logger.Init(logConfig); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			a.stdin = cmd.InOrStdin()
			a.in = bufio.NewReader(a.stdin)
			a.out = cmd.OutOrStdout()
			if err := a.open(cfg); err != nil {
				return err
			}

			logger.Info("Diary started", logger.F("command", cmd.Name()), logger.F("server", cfg.ServerURL))
			return nil
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			a.startMetrics()

			logger.Info("Launching TUI")
			m := tui.NewModel(a.session, a.notes, tui.Options{
				ServerURL:     a.cfg.ServerURL,
				ConfirmDelete: a.cfg.ConfirmDelete,
				StartPath:     startPath,
			})
			p := tea.NewProgram(m, tea.WithAltScreen())

			if _, err := p.Run(); err != nil {
				logger.Error("TUI error", logger.F("error", err))
				return fmt.Errorf("failed to run TUI: %w", err)
			}

			logger.Info("TUI exited normally")
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
			logger.Info("Diary exiting", logger.F("command", cmd.Name()))
			logger.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server URL for this invocation")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")
	rootCmd.Flags().StringVar(&startPath, "open", "/", "Screen to open first (/, /auth, /verify, /about, /faq, /how-to-start)")

	rootCmd.AddCommand(newAuthCmd(a))
	rootCmd.AddCommand(newNotesCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

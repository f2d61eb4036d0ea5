// Package command contains the CLI command constructors.
package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sohansahooo/vidshort/internal/config"
	"github.com/sohansahooo/vidshort/internal/logging"
)

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:          "vidshort [command] [flags]",
		Short:        "The vidshort short-video backend",
		Version:      version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			logger := logging.New(cfg.LogLevel)
			slog.SetDefault(logger)
			logger.DebugContext(cmd.Context(), "configuration loaded",
				slog.Int("port", cfg.AppPort),
				slog.String("sessionStore", cfg.Session.Store),
			)
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override VIDSHORT_LOG_LEVEL (debug, info, warn, error)")

	cmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		userCommand(),
	)

	return cmd
}

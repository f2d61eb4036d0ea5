package command

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sohansahooo/vidshort/internal/db"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|status|down]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "status", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}

			direction := "up"
			if len(args) > 0 {
				direction = args[0]
			}

			logger := slog.Default().With(slog.String("direction", direction))
			if err := db.Migrate(cmd.Context(), logger, cfg.DatabaseURL, direction); err != nil {
				return err
			}
			logger.InfoContext(cmd.Context(), "migrations finished")
			return nil
		},
	}
}

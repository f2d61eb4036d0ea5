package command

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sohansahooo/vidshort/internal/app"
	"github.com/sohansahooo/vidshort/internal/httpserver"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the vidshort HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			logger := slog.Default()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := application.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			addr := fmt.Sprintf(":%d", cfg.AppPort)
			listener, err := httpserver.Listen(ctx, addr)
			if err != nil {
				return err
			}

			grp, ctx := errgroup.WithContext(ctx)
			logger.InfoContext(ctx, "starting http server", slog.String("address", listener.Addr().String()))
			httpserver.New(application.Handler, logger).Serve(ctx, grp, listener, httpserver.ShutdownTimeout)

			err = grp.Wait()
			logger.Info("http server stopped")
			return err
		},
	}
}

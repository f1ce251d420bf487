package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"govbrief/internal/config"
	"govbrief/internal/logger"
	"govbrief/internal/server"
	"govbrief/internal/store"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Start the HTTP API for newsletter generation, preference management,
and workflow inspection. The server shuts down gracefully on SIGINT or
SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			st, err := store.NewStore(cfg.Storage.Directory)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			orch, cleanup, err := buildOrchestrator(cmd.Context(), cfg, offline)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := server.New(orch, st, cfg.Server)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				logger.Info("received signal, shutting down", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "use mock search and default scoring, no API keys needed")

	return cmd
}

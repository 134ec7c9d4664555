package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/restdb/internal/debug"
	"github.com/satishbabariya/restdb/internal/ui"
	"github.com/satishbabariya/restdb/internal/version"
)

const shutdownTimeout = 15 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(opts *rootOptions) *cobra.Command {
	var addr string
	var watchTemplates bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.container()
			if err != nil {
				return err
			}
			cfg := c.Config()
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := c.Connect(ctx); err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := c.Close(closeCtx); err != nil {
					debug.Warn("Close failed", "error", err)
				}
			}()

			if watchTemplates || cfg.Generators.Watch {
				if err := c.Watch(); err != nil {
					return fmt.Errorf("failed to watch templates: %w", err)
				}
			}

			if !debug.Enabled() {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      c.Router(),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			ui.PrintHeader("restdb "+version.Get().Version, fmt.Sprintf("%s on %s%s", cfg.Database.Provider, cfg.Server.Addr, cfg.Server.BasePath))

			errCh := make(chan error, 1)
			go func() {
				debug.Info("Listening", "addr", srv.Addr, "base_path", cfg.Server.BasePath)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			debug.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&watchTemplates, "watch", false, "reload template files when they change")
	return cmd
}

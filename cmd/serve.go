package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/recipeshift/internal/server"
	"github.com/desertthunder/recipeshift/internal/shared"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the admin HTTP server until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}
	defer r.close()

	config := shared.DefaultConfig()
	if r.config != nil {
		config = r.config
	}
	serverConfig := config.Server
	if cmd.IsSet("port") {
		serverConfig.Port = int(cmd.Int("port"))
	}

	lock, closeLock, err := server.NewRunLock(ctx, config.Lock)
	if err != nil {
		return err
	}
	defer closeLock()

	srv := server.New(server.Options{
		Config:  serverConfig,
		Admin:   r.admin,
		Metrics: r.metrics,
		Lock:    lock,
		Logger:  r.logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	r.logger.Info("admin server listening", "addr", srv.Addr, "lock", config.Lock.Backend)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		r.logger.Info("shutting down admin server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Package daemon runs the long-lived extraction service: a single-instance
// lock, the inbound HTTP API, and graceful shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"placepipe/internal/config"
	"placepipe/internal/logging"
)

const shutdownGrace = 10 * time.Second

// Daemon owns the service lifecycle.
type Daemon struct {
	cfg    *config.Config
	api    *APIServer
	logger *slog.Logger

	lock   *flock.Flock
	server *http.Server
}

// New builds a Daemon around a configured API server.
func New(cfg *config.Config, api *APIServer, logger *slog.Logger) *Daemon {
	return &Daemon{
		cfg:    cfg,
		api:    api,
		logger: logging.NewComponentLogger(logger, "daemon"),
	}
}

// Start acquires the instance lock and begins serving. It returns once the
// listener is running; Wait style blocking is the caller's job via the
// returned error channel.
func (d *Daemon) Start(ctx context.Context) (<-chan error, error) {
	if err := d.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	lockPath := filepath.Join(d.cfg.Server.LockDir, "placepipe.lock")
	d.lock = flock.New(lockPath)
	locked, err := d.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another instance is already running (lock %s)", lockPath)
	}

	d.server = d.api.HTTPServer(d.cfg.Server.Bind)

	errCh := make(chan error, 1)
	go func() {
		d.logger.InfoContext(ctx, "api server listening",
			logging.String("bind", d.cfg.Server.Bind))
		if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	return errCh, nil
}

// Stop drains in-flight requests and releases the instance lock.
func (d *Daemon) Stop(ctx context.Context) error {
	var firstErr error

	if d.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
		defer cancel()
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			firstErr = fmt.Errorf("shutdown api server: %w", err)
		}
	}

	if d.lock != nil {
		if err := d.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("release instance lock: %w", err)
		}
	}

	d.logger.InfoContext(ctx, "daemon stopped")
	return firstErr
}

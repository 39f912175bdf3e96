package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"placepipe/internal/daemon"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the extraction service",
		Long:  "Starts the HTTP API, accepts extraction requests from the backend, and delivers results to the configured callback.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, err := opts.buildLogger(cfg)
			if err != nil {
				return err
			}

			pipe, err := buildPipeline(cfg, newDeliverer(cfg, logger), logger)
			if err != nil {
				return err
			}

			api := daemon.NewAPIServer(cfg.Server.APIKey, pipe, logger)
			d := daemon.New(cfg, api, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh, err := d.Start(ctx)
			if err != nil {
				return err
			}

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}
			return d.Stop(context.Background())
		},
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"placepipe/internal/callback"
)

// captureDeliverer keeps the result local instead of posting it, for
// one-shot CLI runs.
type captureDeliverer struct {
	payload callback.Payload
}

func (c *captureDeliverer) Deliver(_ context.Context, payload callback.Payload) bool {
	c.payload = payload
	return true
}

func newExtractCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <url>",
		Short: "Extract places from a single URL and print the result",
		Long:  "Runs the full pipeline against one URL without contacting the backend callback. Useful for testing configuration and models.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, err := opts.buildLogger(cfg)
			if err != nil {
				return err
			}

			capture := &captureDeliverer{}
			pipe, err := buildPipeline(cfg, capture, logger)
			if err != nil {
				return err
			}

			pipe.Run(cmd.Context(), uuid.New(), args[0])

			if capture.payload.Status != callback.StatusSuccess {
				return fmt.Errorf("extraction failed for %s", args[0])
			}
			renderResult(cmd.OutOrStdout(), capture.payload)
			return nil
		},
	}
}

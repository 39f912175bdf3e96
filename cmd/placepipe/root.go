package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"placepipe/internal/config"
	"placepipe/internal/logging"
)

var version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "placepipe",
		Short:         "Extract place information from social media content",
		Long:          "placepipe downloads social media posts, transcribes their audio, reads their subtitle frames, and extracts the real-world places they mention.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (auto, console, json)")

	cmd.AddCommand(
		newServeCommand(opts),
		newExtractCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// loadConfig resolves configuration honoring the persistent flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, path, exists, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if !exists && o.configPath != "" {
		return nil, fmt.Errorf("config file not found at %s", path)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	return cfg, nil
}

func (o *rootOptions) buildLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

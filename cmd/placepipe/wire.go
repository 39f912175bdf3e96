package main

import (
	"fmt"
	"log/slog"
	"time"

	"placepipe/internal/callback"
	"placepipe/internal/config"
	"placepipe/internal/fileserver"
	"placepipe/internal/media/audio"
	"placepipe/internal/media/ffprobe"
	"placepipe/internal/media/frames"
	"placepipe/internal/pipeline"
	"placepipe/internal/services/gemini"
	"placepipe/internal/services/naver"
	"placepipe/internal/services/ollama"
	"placepipe/internal/services/whisper"
	"placepipe/internal/services/youtube"
	"placepipe/internal/services/ytdlp"
)

// buildPipeline assembles the stage collaborators from configuration. The
// deliverer is injected so the serve and extract commands can route results
// differently.
func buildPipeline(cfg *config.Config, deliverer pipeline.Deliverer, logger *slog.Logger) (*pipeline.Pipeline, error) {
	acquirer := ytdlp.New(cfg.Tools.YtDlp, logger)
	audioExtractor := audio.New(cfg.Tools.FFmpeg)
	prober := ffprobe.New(cfg.Tools.FFprobe)

	frameExtractor := frames.New(cfg.Tools.FFmpeg, prober, frames.Options{
		RegionYStartPercent: cfg.Frames.RegionYStartPercent,
		RegionHeightPercent: cfg.Frames.RegionHeightPercent,
		SampleFPS:           cfg.Frames.SampleFPS,
		HashThreshold:       cfg.Frames.HashThreshold,
	}, logger)

	transcriber := whisper.New(whisper.Options{
		Binary:   cfg.Whisper.Binary,
		Model:    cfg.Whisper.Model,
		Language: cfg.Whisper.Language,
		WorkDir:  cfg.Whisper.WorkDir,
	}, logger)

	placeExtractor, err := buildPlaceExtractor(cfg, logger)
	if err != nil {
		return nil, err
	}

	metadata := youtube.New(cfg.YouTube.BaseURL, cfg.YouTube.APIKey,
		time.Duration(cfg.YouTube.TimeoutSeconds)*time.Second, logger)

	var uploader pipeline.Uploader
	if cfg.FileServer.Enabled {
		uploader = fileserver.New(fileserver.Config{
			Host:      cfg.FileServer.Host,
			Port:      cfg.FileServer.Port,
			Username:  cfg.FileServer.Username,
			Password:  cfg.FileServer.Password,
			ShareName: cfg.FileServer.ShareName,
			RemoteDir: cfg.FileServer.RemoteDir,
		}, logger)
	}

	return pipeline.New(acquirer, audioExtractor, transcriber, frameExtractor,
		placeExtractor, metadata, uploader, deliverer, logger), nil
}

func buildPlaceExtractor(cfg *config.Config, logger *slog.Logger) (pipeline.PlaceExtractor, error) {
	switch cfg.Extraction.Backend {
	case "gemini":
		return gemini.New(gemini.Config{
			BaseURL: cfg.Gemini.BaseURL,
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second,
		}, logger), nil
	case "ollama":
		names := ollama.New(ollama.Config{
			BaseURL:     cfg.Ollama.BaseURL,
			APIKey:      cfg.Ollama.APIKey,
			Model:       cfg.Ollama.Model,
			MaxAttempts: cfg.Ollama.MaxAttempts,
			Timeout:     time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second,
		}, logger)
		backend := &pipeline.NarrowBackend{Names: names}
		if cfg.Naver.Enabled {
			backend.Enricher = naver.New(naver.Config{
				BaseURL:      cfg.Naver.BaseURL,
				ClientID:     cfg.Naver.ClientID,
				ClientSecret: cfg.Naver.ClientSecret,
				Timeout:      time.Duration(cfg.Naver.TimeoutSeconds) * time.Second,
			}, logger)
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown extraction backend %q", cfg.Extraction.Backend)
	}
}

func newDeliverer(cfg *config.Config, logger *slog.Logger) *callback.Deliverer {
	return callback.NewDeliverer(callback.Config{
		URL:     cfg.Backend.CallbackURL,
		APIKey:  cfg.Backend.APIKey,
		Timeout: time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
	}, logger)
}

package config

import (
	"fmt"
	"strings"
)

// normalize expands user paths and trims whitespace on values that are
// compared or joined later.
func (c *Config) normalize() error {
	pathFields := []*string{
		&c.Server.LockDir,
		&c.Logging.Dir,
		&c.Whisper.WorkDir,
	}
	for _, field := range pathFields {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return fmt.Errorf("normalize config paths: %w", err)
		}
		*field = expanded
	}

	c.Extraction.Backend = strings.ToLower(strings.TrimSpace(c.Extraction.Backend))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Backend.CallbackURL = strings.TrimSpace(c.Backend.CallbackURL)
	c.Gemini.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gemini.BaseURL), "/")
	c.Ollama.BaseURL = strings.TrimRight(strings.TrimSpace(c.Ollama.BaseURL), "/")
	c.Naver.BaseURL = strings.TrimRight(strings.TrimSpace(c.Naver.BaseURL), "/")
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")

	return nil
}

// Validate checks the configuration for missing or inconsistent values.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Backend.validate(); err != nil {
		return err
	}
	if err := c.Extraction.validate(c); err != nil {
		return err
	}
	if err := c.Frames.validate(); err != nil {
		return err
	}
	if err := c.Whisper.validate(); err != nil {
		return err
	}
	if err := c.FileServer.validate(); err != nil {
		return err
	}
	if err := c.Tools.validate(); err != nil {
		return err
	}
	return nil
}

func (s Server) validate() error {
	if strings.TrimSpace(s.Bind) == "" {
		return fmt.Errorf("server.bind is required")
	}
	if strings.TrimSpace(s.APIKey) == "" {
		return fmt.Errorf("server.api_key is required to authenticate inbound requests (create a config with 'placepipe config init')")
	}
	return nil
}

func (b Backend) validate() error {
	if strings.TrimSpace(b.CallbackURL) == "" {
		return fmt.Errorf("backend.callback_url is required for result delivery")
	}
	if !strings.HasPrefix(b.CallbackURL, "http://") && !strings.HasPrefix(b.CallbackURL, "https://") {
		return fmt.Errorf("backend.callback_url must be an http(s) URL, got %q", b.CallbackURL)
	}
	if b.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend.timeout_seconds must be positive")
	}
	return nil
}

func (e Extraction) validate(c *Config) error {
	switch e.Backend {
	case "gemini":
		if strings.TrimSpace(c.Gemini.APIKey) == "" {
			return fmt.Errorf("gemini.api_key is required when extraction.backend is \"gemini\"")
		}
		if strings.TrimSpace(c.Gemini.Model) == "" {
			return fmt.Errorf("gemini.model is required when extraction.backend is \"gemini\"")
		}
	case "ollama":
		if strings.TrimSpace(c.Ollama.BaseURL) == "" {
			return fmt.Errorf("ollama.base_url is required when extraction.backend is \"ollama\"")
		}
		if c.Ollama.MaxAttempts <= 0 {
			return fmt.Errorf("ollama.max_attempts must be positive")
		}
		if c.Naver.Enabled {
			if strings.TrimSpace(c.Naver.ClientID) == "" || strings.TrimSpace(c.Naver.ClientSecret) == "" {
				return fmt.Errorf("naver.client_id and naver.client_secret are required when naver.enabled is true")
			}
		}
	default:
		return fmt.Errorf("extraction.backend must be \"gemini\" or \"ollama\", got %q", e.Backend)
	}
	return nil
}

func (f Frames) validate() error {
	if f.RegionYStartPercent < 0 || f.RegionYStartPercent >= 1 {
		return fmt.Errorf("frames.region_y_start_percent must be in [0, 1), got %v", f.RegionYStartPercent)
	}
	if f.RegionHeightPercent <= 0 || f.RegionHeightPercent > 1 {
		return fmt.Errorf("frames.region_height_percent must be in (0, 1], got %v", f.RegionHeightPercent)
	}
	if f.RegionYStartPercent+f.RegionHeightPercent > 1 {
		return fmt.Errorf("frames region extends past the bottom of the frame")
	}
	if f.SampleFPS <= 0 {
		return fmt.Errorf("frames.sample_fps must be positive")
	}
	if f.HashThreshold < 0 {
		return fmt.Errorf("frames.hash_threshold must not be negative")
	}
	return nil
}

func (w Whisper) validate() error {
	if strings.TrimSpace(w.Binary) == "" {
		return fmt.Errorf("whisper.binary is required")
	}
	if strings.TrimSpace(w.Language) == "" {
		return fmt.Errorf("whisper.language is required")
	}
	return nil
}

func (f FileServer) validate() error {
	if !f.Enabled {
		return nil
	}
	if strings.TrimSpace(f.Host) == "" {
		return fmt.Errorf("file_server.host is required when file_server.enabled is true")
	}
	if strings.TrimSpace(f.ShareName) == "" {
		return fmt.Errorf("file_server.share_name is required when file_server.enabled is true")
	}
	if f.Port <= 0 || f.Port > 65535 {
		return fmt.Errorf("file_server.port must be a valid TCP port, got %d", f.Port)
	}
	return nil
}

func (t Tools) validate() error {
	if strings.TrimSpace(t.FFmpeg) == "" {
		return fmt.Errorf("tools.ffmpeg is required")
	}
	if strings.TrimSpace(t.FFprobe) == "" {
		return fmt.Errorf("tools.ffprobe is required")
	}
	if strings.TrimSpace(t.YtDlp) == "" {
		return fmt.Errorf("tools.ytdlp is required")
	}
	return nil
}

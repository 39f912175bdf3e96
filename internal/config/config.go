package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains the inbound HTTP API settings.
type Server struct {
	Bind   string `toml:"bind"`
	APIKey string `toml:"api_key"`
	// LockDir holds the single-instance lock file for the serve command.
	LockDir string `toml:"lock_dir"`
}

// Backend contains the outbound callback settings.
type Backend struct {
	CallbackURL    string `toml:"callback_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// YouTube contains configuration for the YouTube Data API metadata client.
type YouTube struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Gemini contains configuration for the hosted structured-extraction model.
type Gemini struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Ollama contains configuration for the narrow place-name extraction model.
type Ollama struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	MaxAttempts    int    `toml:"max_attempts"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Naver contains configuration for the place search/geocoding provider.
type Naver struct {
	Enabled        bool   `toml:"enabled"`
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Whisper contains speech-to-text settings.
type Whisper struct {
	Binary   string `toml:"binary"`
	Model    string `toml:"model"`
	Language string `toml:"language"`
	WorkDir  string `toml:"work_dir"`
}

// Frames contains subtitle-frame extraction tuning.
//
// The region parameters locate the on-screen band where subtitles
// conventionally render; the defaults select the bottom 40% of the frame.
type Frames struct {
	RegionYStartPercent float64 `toml:"region_y_start_percent"`
	RegionHeightPercent float64 `toml:"region_height_percent"`
	SampleFPS           int     `toml:"sample_fps"`
	HashThreshold       int     `toml:"hash_threshold"`
}

// Extraction selects and tunes the structured-extraction backend.
type Extraction struct {
	// Backend is "gemini" (hosted, schema-constrained) or "ollama"
	// (narrow place-name path enriched via Naver search).
	Backend string `toml:"backend"`
}

// FileServer contains the SMB share used for thumbnail artifacts.
type FileServer struct {
	Enabled   bool   `toml:"enabled"`
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	ShareName string `toml:"share_name"`
	RemoteDir string `toml:"remote_dir"`
}

// Tools names the external binaries the pipeline shells out to.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	YtDlp   string `toml:"ytdlp"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for the place extraction
// service.
//
// Configuration sections by subsystem:
//   - Server: inbound HTTP bind address and pre-shared key
//   - Backend: outbound callback URL and pre-shared key
//   - YouTube: Data API v3 metadata lookups
//   - Gemini / Ollama: structured-extraction backends
//   - Naver: place search enrichment for the narrow backend
//   - Whisper: speech-to-text command settings
//   - Frames: subtitle-frame extraction tuning
//   - FileServer: SMB share for thumbnail artifacts
//   - Tools: external binary names
//   - Logging: log format, level, and directory
type Config struct {
	Server     Server     `toml:"server"`
	Backend    Backend    `toml:"backend"`
	YouTube    YouTube    `toml:"youtube"`
	Gemini     Gemini     `toml:"gemini"`
	Ollama     Ollama     `toml:"ollama"`
	Naver      Naver      `toml:"naver"`
	Whisper    Whisper    `toml:"whisper"`
	Frames     Frames     `toml:"frames"`
	Extraction Extraction `toml:"extraction"`
	FileServer FileServer `toml:"file_server"`
	Tools      Tools      `toml:"tools"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/placepipe/config.toml")
}

// Load locates, parses, and validates a configuration file. A `.env` file in
// the working directory is honored first so secrets can live outside the
// TOML file, matching the deployment convention of the calling backend.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// applyEnvOverrides lets secrets come from the environment instead of the
// TOML file.
func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"PLACEPIPE_SERVER_API_KEY", &c.Server.APIKey},
		{"PLACEPIPE_BACKEND_API_KEY", &c.Backend.APIKey},
		{"PLACEPIPE_BACKEND_CALLBACK_URL", &c.Backend.CallbackURL},
		{"YOUTUBE_API_KEY", &c.YouTube.APIKey},
		{"GEMINI_API_KEY", &c.Gemini.APIKey},
		{"OLLAMA_API_KEY", &c.Ollama.APIKey},
		{"NAVER_CLIENT_ID", &c.Naver.ClientID},
		{"NAVER_CLIENT_SECRET", &c.Naver.ClientSecret},
		{"SMB_PASSWORD", &c.FileServer.Password},
	}
	for _, o := range overrides {
		if value := strings.TrimSpace(os.Getenv(o.env)); value != "" {
			*o.target = value
		}
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("placepipe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Logging.Dir, c.Server.LockDir}
	if strings.TrimSpace(c.Whisper.WorkDir) != "" {
		dirs = append(dirs, c.Whisper.WorkDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

func decodeSample(cfg *Config) error {
	return toml.Unmarshal([]byte(sampleConfig), cfg)
}

// WriteSample writes the sample configuration to the provided path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

func expandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", errors.New("path must not be empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else if strings.HasPrefix(trimmed, "~/") {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	return filepath.Abs(trimmed)
}

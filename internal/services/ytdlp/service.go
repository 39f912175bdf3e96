// Package ytdlp acquires social-media content through the yt-dlp tool. The
// media bytes stream straight to memory over stdout so nothing is staged on
// disk.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"placepipe/internal/logging"
	"placepipe/internal/services"
)

// Info carries the source metadata yt-dlp reports for a URL.
type Info struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Uploader    string `json:"uploader"`
	WebpageURL  string `json:"webpage_url"`
}

// Result is an acquired piece of content.
type Result struct {
	Data []byte
	Info Info
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Service wraps the yt-dlp binary.
type Service struct {
	binary string
	logger *slog.Logger
	run    commandRunner
}

// New returns a Service using the named yt-dlp binary.
func New(binary string, logger *slog.Logger) *Service {
	if strings.TrimSpace(binary) == "" {
		binary = "yt-dlp"
	}
	return &Service{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "ytdlp"),
		run:    runCommand,
	}
}

// Fetch downloads the content behind the URL along with its metadata. The
// metadata probe runs first so an unusable URL fails before the download.
func (s *Service) Fetch(ctx context.Context, url string) (*Result, error) {
	info, err := s.probe(ctx, url)
	if err != nil {
		return nil, err
	}

	data, err := s.download(ctx, url)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "content acquired",
		logging.String("source_id", info.ID),
		logging.Int("bytes", len(data)))
	return &Result{Data: data, Info: info}, nil
}

func (s *Service) probe(ctx context.Context, url string) (Info, error) {
	output, err := s.run(ctx, s.binary,
		"-q", "--no-warnings",
		"--dump-single-json", "--no-download",
		url)
	if err != nil {
		return Info{}, services.Wrap(services.ErrAcquisitionFailed, "acquire", "probe", "yt-dlp metadata probe failed", err)
	}

	var info Info
	if err := json.Unmarshal(output, &info); err != nil {
		return Info{}, services.Wrap(services.ErrAcquisitionFailed, "acquire", "probe", "parse yt-dlp metadata", err)
	}
	return info, nil
}

func (s *Service) download(ctx context.Context, url string) ([]byte, error) {
	data, err := s.run(ctx, s.binary,
		"-q", "--no-warnings",
		"-o", "-",
		url)
	if err != nil {
		return nil, services.Wrap(services.ErrAcquisitionFailed, "acquire", "download", "yt-dlp download failed", err)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrAcquisitionFailed, "acquire", "download", "yt-dlp produced no data", nil)
	}
	return data, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, detail)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// Package whisper transcribes extracted audio using an external Whisper CLI.
// The tool works on files, so the audio is staged in a per-request temp
// directory that is removed when transcription finishes.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"placepipe/internal/logging"
	"placepipe/internal/services"
)

// Transcript is the recognized speech of one audio track.
type Transcript struct {
	Text                string
	Language            string
	LanguageProbability float64
}

// Options configures the external transcription command.
type Options struct {
	Binary   string
	Model    string
	Language string
	WorkDir  string
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Service wraps the Whisper CLI.
type Service struct {
	opts   Options
	logger *slog.Logger
	run    commandRunner
}

// New returns a transcription Service.
func New(opts Options, logger *slog.Logger) *Service {
	return &Service{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "whisper"),
		run:    runCommand,
	}
}

// Transcribe runs speech recognition over a WAV document and returns the
// joined transcript text. The recognition language is forced by
// configuration; the reported language probability is informational only.
func (s *Service) Transcribe(ctx context.Context, wav []byte) (Transcript, error) {
	if len(wav) == 0 {
		return Transcript{}, services.Wrap(services.ErrTranscription, "transcribe", "prepare", "empty audio data", nil)
	}

	workDir, err := os.MkdirTemp(s.opts.WorkDir, "stt-")
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrTranscription, "transcribe", "prepare", "create work directory", err)
	}
	defer os.RemoveAll(workDir)

	audioPath := filepath.Join(workDir, "audio.wav")
	if err := os.WriteFile(audioPath, wav, 0o644); err != nil {
		return Transcript{}, services.Wrap(services.ErrTranscription, "transcribe", "prepare", "stage audio file", err)
	}

	args := []string{
		audioPath,
		"--model", s.opts.Model,
		"--language", s.opts.Language,
		"--output_format", "json",
		"--output_dir", workDir,
	}
	if _, err := s.run(ctx, s.opts.Binary, args...); err != nil {
		return Transcript{}, services.Wrap(services.ErrTranscription, "transcribe", "run", "whisper execution failed", err)
	}

	transcript, err := readResult(filepath.Join(workDir, "audio.json"))
	if err != nil {
		return Transcript{}, err
	}

	s.logger.InfoContext(ctx, "transcription complete",
		logging.String("language", transcript.Language),
		logging.Float64("language_probability", transcript.LanguageProbability),
		logging.Int("text_length", len(transcript.Text)))
	return transcript, nil
}

func readResult(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrTranscription, "transcribe", "collect", "read whisper output", err)
	}

	var payload struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Segments []struct {
			Text string `json:"text"`
		} `json:"segments"`
		LanguageProbability float64 `json:"language_probability"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return Transcript{}, services.Wrap(services.ErrTranscription, "transcribe", "collect", "parse whisper output", err)
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		parts := make([]string, 0, len(payload.Segments))
		for _, seg := range payload.Segments {
			if t := strings.TrimSpace(seg.Text); t != "" {
				parts = append(parts, t)
			}
		}
		text = strings.Join(parts, " ")
	}

	return Transcript{
		Text:                text,
		Language:            payload.Language,
		LanguageProbability: payload.LanguageProbability,
	}, nil
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

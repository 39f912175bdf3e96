// Package audio extracts a speech-recognition-ready audio track from
// in-memory video using ffmpeg pipes.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"placepipe/internal/services"
)

type commandRunner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// Extractor converts video bytes to mono 16 kHz PCM WAV, the input format
// expected by the transcription stage.
type Extractor struct {
	binary string
	run    commandRunner
}

// New returns an Extractor using the named ffmpeg binary.
func New(binary string) *Extractor {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Extractor{binary: binary, run: runCommand}
}

// Extract strips the video track and resamples the audio. The result is a
// complete WAV document held in memory.
func (e *Extractor) Extract(ctx context.Context, video []byte) ([]byte, error) {
	if len(video) == 0 {
		return nil, services.Wrap(services.ErrAudioExtraction, "audio", "extract", "empty video data", nil)
	}

	args := []string{
		"-i", "pipe:0",
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-f", "wav",
		"pipe:1",
	}

	wav, err := e.run(ctx, video, e.binary, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrAudioExtraction, "audio", "extract", "ffmpeg execution failed", err)
	}
	if len(wav) == 0 {
		return nil, services.Wrap(services.ErrAudioExtraction, "audio", "extract", "ffmpeg produced no audio", nil)
	}
	return wav, nil
}

func runCommand(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)

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

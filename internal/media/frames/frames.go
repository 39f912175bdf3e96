// Package frames extracts the distinct subtitle frames from a video. The
// extractor samples a cropped subtitle band at a low frame rate, keeps only
// samples where the band changed perceptually, then re-extracts a full
// frame at each change point.
package frames

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"placepipe/internal/logging"
	"placepipe/internal/media/ffprobe"
	"placepipe/internal/services"
)

// Options tunes sampling and dedup behavior.
type Options struct {
	RegionYStartPercent float64
	RegionHeightPercent float64
	SampleFPS           int
	HashThreshold       int
}

// Frame is one extracted subtitle frame. The image is a full-resolution PNG
// taken at the change-point timestamp.
type Frame struct {
	TimestampSeconds float64
	PNG              []byte
}

type dimensionProber interface {
	Dimensions(ctx context.Context, video []byte) (ffprobe.Dimensions, error)
}

type commandRunner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// Extractor performs the two-pass subtitle frame extraction.
type Extractor struct {
	ffmpeg string
	prober dimensionProber
	opts   Options
	logger *slog.Logger
	run    commandRunner
}

// New constructs an Extractor around the given ffmpeg binary and prober.
func New(ffmpegBinary string, prober dimensionProber, opts Options, logger *slog.Logger) *Extractor {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Extractor{
		ffmpeg: ffmpegBinary,
		prober: prober,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "frames"),
		run:    runCommand,
	}
}

// Extract returns the distinct subtitle frames of the video in timestamp
// order. A video whose subtitle band never changes yields a single frame.
func (e *Extractor) Extract(ctx context.Context, video []byte) ([]Frame, error) {
	if len(video) == 0 {
		return nil, services.Wrap(services.ErrExtractionBackend, "frames", "extract", "empty video data", nil)
	}

	dims, err := e.prober.Dimensions(ctx, video)
	if err != nil {
		return nil, err
	}
	region := ComputeRegion(dims, e.opts.RegionYStartPercent, e.opts.RegionHeightPercent)

	timestamps, err := e.sampleChangePoints(ctx, video, region)
	if err != nil {
		return nil, err
	}
	e.logger.DebugContext(ctx, "subtitle band change points selected",
		logging.Int("sample_count", len(timestamps)))

	frames := make([]Frame, 0, len(timestamps))
	for _, ts := range timestamps {
		frame, err := e.extractFullFrame(ctx, video, ts)
		if err != nil {
			e.logger.WarnContext(ctx, "frame extraction failed, skipping timestamp",
				logging.Float64("timestamp", ts),
				logging.Error(err))
			continue
		}
		if frame == nil {
			e.logger.WarnContext(ctx, "skipping unreadable frame",
				logging.Float64("timestamp", ts))
			continue
		}
		frames = append(frames, Frame{TimestampSeconds: ts, PNG: frame})
	}
	return frames, nil
}

// sampleChangePoints is pass one: decode the cropped subtitle band at the
// sampling rate and keep the timestamps where it changed.
func (e *Extractor) sampleChangePoints(ctx context.Context, video []byte, region Region) ([]float64, error) {
	args := []string{
		"-i", "pipe:0",
		"-vf", fmt.Sprintf("fps=%d,%s", e.opts.SampleFPS, region.CropFilter()),
		"-c:v", "png",
		"-f", "image2pipe",
		"pipe:1",
	}

	stream, err := e.run(ctx, video, e.ffmpeg, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrExtractionBackend, "frames", "sample", "ffmpeg sampling failed", err)
	}

	// An empty sample set is a valid outcome, not a failure.
	samples := splitPNGStream(stream)
	return selectChangeTimestamps(samples, e.opts.SampleFPS, e.opts.HashThreshold), nil
}

// extractFullFrame is pass two: seek to the timestamp and pull one full
// frame. A frame that ffmpeg emits but that does not decode as a PNG is
// reported as nil so the caller can skip it.
func (e *Extractor) extractFullFrame(ctx context.Context, video []byte, timestamp float64) ([]byte, error) {
	args := []string{
		"-ss", strconv.FormatFloat(timestamp, 'f', -1, 64),
		"-i", "pipe:0",
		"-vframes", "1",
		"-c:v", "png",
		"-f", "image2pipe",
		"pipe:1",
	}

	output, err := e.run(ctx, video, e.ffmpeg, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrExtractionBackend, "frames", "full_frame", "ffmpeg frame extraction failed", err)
	}
	if _, err := png.Decode(bytes.NewReader(output)); err != nil {
		return nil, nil
	}
	return output, nil
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

// Package ffprobe reads video stream geometry from in-memory media. The
// probe feeds the bytes over stdin so acquired content never touches disk.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"placepipe/internal/services"
)

// Dimensions is the pixel geometry of the primary video stream.
type Dimensions struct {
	Width  int
	Height int
}

type commandRunner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// Prober executes ffprobe against in-memory video data.
type Prober struct {
	binary string
	run    commandRunner
}

// New returns a Prober that shells out to the named ffprobe binary.
func New(binary string) *Prober {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary, run: runCommand}
}

// Dimensions probes the first video stream of the supplied media bytes.
func (p *Prober) Dimensions(ctx context.Context, video []byte) (Dimensions, error) {
	if len(video) == 0 {
		return Dimensions{}, services.Wrap(services.ErrDimensionProbe, "probe", "dimensions", "empty video data", nil)
	}

	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		"pipe:0",
	}

	output, err := p.run(ctx, video, p.binary, args...)
	if err != nil {
		return Dimensions{}, services.Wrap(services.ErrDimensionProbe, "probe", "dimensions", "ffprobe execution failed", err)
	}

	var payload struct {
		Streams []struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &payload); err != nil {
		return Dimensions{}, services.Wrap(services.ErrDimensionProbe, "probe", "dimensions", "parse ffprobe output", err)
	}
	if len(payload.Streams) == 0 {
		return Dimensions{}, services.Wrap(services.ErrDimensionProbe, "probe", "dimensions", "no video stream found", nil)
	}

	dims := Dimensions{Width: payload.Streams[0].Width, Height: payload.Streams[0].Height}
	if dims.Width <= 0 || dims.Height <= 0 {
		return Dimensions{}, services.Wrap(services.ErrDimensionProbe, "probe", "dimensions",
			fmt.Sprintf("invalid dimensions %dx%d", dims.Width, dims.Height), nil)
	}
	return dims, nil
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

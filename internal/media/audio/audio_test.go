package audio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"placepipe/internal/services"
)

func TestExtractBuildsPipeArguments(t *testing.T) {
	var argv []string
	e := New("")
	e.run = func(_ context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
		argv = append([]string{name}, args...)
		if len(stdin) == 0 {
			t.Fatal("stdin not wired to video bytes")
		}
		return []byte("RIFF...."), nil
	}

	wav, err := e.Extract(context.Background(), []byte("video"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(wav) == 0 {
		t.Fatal("Extract() returned empty audio")
	}

	joined := strings.Join(argv, " ")
	want := "ffmpeg -i pipe:0 -vn -acodec pcm_s16le -ar 16000 -ac 1 -f wav pipe:1"
	if joined != want {
		t.Fatalf("argv = %q, want %q", joined, want)
	}
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name   string
		video  []byte
		output []byte
		runErr error
	}{
		{name: "empty input", video: nil},
		{name: "ffmpeg failure", video: []byte("x"), runErr: errors.New("exit status 1")},
		{name: "no output", video: []byte("x"), output: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New("ffmpeg")
			e.run = func(context.Context, []byte, string, ...string) ([]byte, error) {
				return tt.output, tt.runErr
			}
			_, err := e.Extract(context.Background(), tt.video)
			if !errors.Is(err, services.ErrAudioExtraction) {
				t.Fatalf("error = %v, want ErrAudioExtraction", err)
			}
		})
	}
}

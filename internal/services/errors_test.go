package services

import (
	"errors"
	"testing"
)

func TestWrapTagsAndChains(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrAudioExtraction, "audio", "extract", "ffmpeg execution failed", cause)

	if !errors.Is(err, ErrAudioExtraction) {
		t.Fatal("wrapped error lost its sentinel")
	}
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error lost its cause")
	}
	want := "audio extraction failed: audio: extract: ffmpeg execution failed: exit status 1"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapWithoutCauseOrMarker(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatal("nil marker must default to ErrValidation")
	}
	if err.Error() != "validation error: service failure" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{Wrap(ErrUnsupportedSource, "routing", "classify", "x", nil), "unsupported_source"},
		{Wrap(ErrAcquisitionFailed, "acquire", "download", "x", nil), "acquisition_failed"},
		{Wrap(ErrTranscription, "transcribe", "run", "x", nil), "transcription_failed"},
		{Wrap(ErrExtractionBackend, "extract", "gemini", "x", nil), "extraction_backend_failed"},
		{errors.New("plain"), "internal"},
	}
	for _, tt := range tests {
		if got := Category(tt.err); got != tt.want {
			t.Errorf("Category(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

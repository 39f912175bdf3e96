package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for pipeline failure classification. Every stage error is
// tagged with exactly one of these so the orchestrator can report a
// meaningful failure category without inspecting error strings.
var (
	ErrUnsupportedSource = errors.New("unsupported source")
	ErrAcquisitionFailed = errors.New("acquisition failed")
	ErrAudioExtraction   = errors.New("audio extraction failed")
	ErrTranscription     = errors.New("transcription failed")
	ErrDimensionProbe    = errors.New("dimension probe failed")
	ErrExtractionBackend = errors.New("extraction backend failed")
	ErrConfiguration     = errors.New("configuration error")
	ErrValidation        = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker. The marker should be one of the exported
// sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Category returns a short label for the sentinel an error is tagged with,
// suitable for structured logging. Untagged errors report "internal".
func Category(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedSource):
		return "unsupported_source"
	case errors.Is(err, ErrAcquisitionFailed):
		return "acquisition_failed"
	case errors.Is(err, ErrAudioExtraction):
		return "audio_extraction_failed"
	case errors.Is(err, ErrTranscription):
		return "transcription_failed"
	case errors.Is(err, ErrDimensionProbe):
		return "dimension_probe_failed"
	case errors.Is(err, ErrExtractionBackend):
		return "extraction_backend_failed"
	case errors.Is(err, ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	default:
		return "internal"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

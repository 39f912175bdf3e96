// Package pipeline orchestrates a place extraction request end to end:
// classification, acquisition, transcription, subtitle frame extraction,
// structured place extraction, and callback delivery.
package pipeline

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"

	"placepipe/internal/callback"
	"placepipe/internal/extract"
	"placepipe/internal/logging"
	"placepipe/internal/media/frames"
	"placepipe/internal/router"
	"placepipe/internal/services"
	"placepipe/internal/services/whisper"
	"placepipe/internal/services/ytdlp"
)

// Acquirer downloads content and source metadata for a URL.
type Acquirer interface {
	Fetch(ctx context.Context, url string) (*ytdlp.Result, error)
}

// AudioExtractor pulls a transcription-ready audio track out of a video.
type AudioExtractor interface {
	Extract(ctx context.Context, video []byte) ([]byte, error)
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (whisper.Transcript, error)
}

// FrameExtractor returns the distinct subtitle frames of a video.
type FrameExtractor interface {
	Extract(ctx context.Context, video []byte) ([]frames.Frame, error)
}

// PlaceExtractor turns content text into structured places.
type PlaceExtractor interface {
	ExtractPlaces(ctx context.Context, text string) ([]extract.Place, error)
}

// MetadataResolver looks up display metadata for a YouTube video.
type MetadataResolver interface {
	VideoInfo(ctx context.Context, videoID string) extract.ContentInfo
}

// Uploader stores artifacts on the file share. Optional.
type Uploader interface {
	UploadBytes(ctx context.Context, data []byte, extension string) (string, error)
}

// Deliverer posts the result callback.
type Deliverer interface {
	Deliver(ctx context.Context, payload callback.Payload) bool
}

// Pipeline wires the stage collaborators together.
type Pipeline struct {
	acquirer  Acquirer
	audio     AudioExtractor
	stt       Transcriber
	frames    FrameExtractor
	places    PlaceExtractor
	metadata  MetadataResolver
	uploader  Uploader
	deliverer Deliverer
	logger    *slog.Logger
}

// New assembles a Pipeline. The uploader may be nil when no file share is
// configured; every other collaborator is required.
func New(
	acquirer Acquirer,
	audio AudioExtractor,
	stt Transcriber,
	frameExtractor FrameExtractor,
	places PlaceExtractor,
	metadata MetadataResolver,
	uploader Uploader,
	deliverer Deliverer,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		acquirer:  acquirer,
		audio:     audio,
		stt:       stt,
		frames:    frameExtractor,
		places:    places,
		metadata:  metadata,
		uploader:  uploader,
		deliverer: deliverer,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Launch starts processing in the background and returns immediately. The
// inbound API acknowledges before any work happens, so a panic anywhere in
// the run must not escape the goroutine.
func (p *Pipeline) Launch(contentID uuid.UUID, sourceURL string) {
	go func() {
		ctx := services.WithContentID(context.Background(), contentID.String())
		defer func() {
			if r := recover(); r != nil {
				p.logger.ErrorContext(ctx, "pipeline run panicked",
					logging.Any("panic", r),
					logging.String("stack", string(debug.Stack())))
				p.deliverer.Deliver(ctx, callback.BuildFailed(contentID, router.GuessPlatform(sourceURL)))
			}
		}()
		p.Run(ctx, contentID, sourceURL)
	}()
}

// Run processes one request to completion. Every outcome ends in exactly
// one callback: SUCCESS when extraction finished, FAILED otherwise. The
// returned flag reports whether the backend accepted the callback.
func (p *Pipeline) Run(ctx context.Context, contentID uuid.UUID, sourceURL string) bool {
	logger := logging.WithContext(ctx, p.logger)

	route, err := router.Classify(sourceURL)
	if err != nil {
		logger.ErrorContext(ctx, "source url rejected",
			logging.String("url", sourceURL),
			logging.Error(err))
		return p.deliverFailure(ctx, contentID, router.GuessPlatform(sourceURL))
	}

	record := extract.NewRecord(contentID, sourceURL, route.Platform, route.ContentType)
	logger.InfoContext(ctx, "extraction started",
		logging.String("platform", string(record.Platform)),
		logging.String("content_type", string(record.ContentType)))

	if err := p.process(ctx, record); err != nil {
		record.SetStatus(extract.StatusFailed)
		logger.ErrorContext(ctx, "extraction failed",
			logging.String("category", services.Category(err)),
			logging.Error(err))
		return p.deliverFailure(ctx, contentID, record.Platform)
	}

	record.SetStatus(extract.StatusDelivering)
	delivered := p.deliverer.Deliver(ctx, callback.BuildSuccess(record))
	if delivered {
		record.SetStatus(extract.StatusDelivered)
		logger.InfoContext(ctx, "extraction delivered",
			logging.Int("place_count", len(record.Places)))
	} else {
		record.SetStatus(extract.StatusAbandoned)
		logger.ErrorContext(ctx, "result abandoned, backend did not accept callback")
	}
	return delivered
}

func (p *Pipeline) process(ctx context.Context, record *extract.Record) error {
	if err := p.acquire(ctx, record); err != nil {
		return err
	}

	if record.ContentType == extract.ContentTypeVideo {
		if err := p.transcribe(ctx, record); err != nil {
			return err
		}
		if err := p.extractFrames(ctx, record); err != nil {
			return err
		}
	}

	return p.extractPlaces(ctx, record)
}

func (p *Pipeline) acquire(ctx context.Context, record *extract.Record) error {
	record.SetStatus(extract.StatusAcquiring)
	ctx = services.WithStage(ctx, "acquire")

	result, err := p.acquirer.Fetch(ctx, record.SourceURL)
	if err != nil {
		return err
	}

	switch record.ContentType {
	case extract.ContentTypeVideo:
		record.Media.Video = result.Data
	case extract.ContentTypeImage:
		record.Media.Image = result.Data
	}
	record.Text.Caption = result.Info.Description
	record.Metadata = p.resolveMetadata(ctx, record, result.Info)
	return nil
}

func (p *Pipeline) transcribe(ctx context.Context, record *extract.Record) error {
	record.SetStatus(extract.StatusTranscribing)
	ctx = services.WithStage(ctx, "transcribe")

	wav, err := p.audio.Extract(ctx, record.Media.Video)
	if err != nil {
		return err
	}
	transcript, err := p.stt.Transcribe(ctx, wav)
	if err != nil {
		return err
	}
	record.Text.Transcript = transcript.Text
	return nil
}

// extractFrames captures the distinct subtitle frames. Frame text is not
// read back yet, so the frames feed only the thumbnail fallback.
// TODO: run OCR over the subtitle band once a reliable Korean model is
// selected, and fold the recognized text into record.Text.SubtitleTexts.
func (p *Pipeline) extractFrames(ctx context.Context, record *extract.Record) error {
	ctx = services.WithStage(ctx, "frames")

	extracted, err := p.frames.Extract(ctx, record.Media.Video)
	if err != nil {
		return err
	}

	if p.uploader != nil && len(extracted) > 0 && record.Metadata.ThumbnailURL == "" {
		remotePath, err := p.uploader.UploadBytes(ctx, extracted[0].PNG, ".png")
		if err != nil {
			logging.WithContext(ctx, p.logger).WarnContext(ctx, "thumbnail upload failed",
				logging.Error(err))
		} else {
			record.Metadata.ThumbnailURL = remotePath
		}
	}
	return nil
}

func (p *Pipeline) extractPlaces(ctx context.Context, record *extract.Record) error {
	record.SetStatus(extract.StatusExtracting)
	ctx = services.WithStage(ctx, "extract")

	places, err := p.places.ExtractPlaces(ctx, record.Text.Combined())
	if err != nil {
		return err
	}
	record.Places = places
	return nil
}

func (p *Pipeline) deliverFailure(ctx context.Context, contentID uuid.UUID, platform extract.Platform) bool {
	delivered := p.deliverer.Deliver(ctx, callback.BuildFailed(contentID, platform))
	if !delivered {
		logging.WithContext(ctx, p.logger).ErrorContext(ctx, "failure callback not accepted by backend")
	}
	return delivered
}

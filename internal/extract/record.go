// Package extract defines the core domain model for a place extraction
// request: the source classification, the acquired media, and the structured
// result that flows to the callback.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Platform identifies the social network a request URL belongs to.
type Platform string

const (
	PlatformYouTube   Platform = "YOUTUBE"
	PlatformInstagram Platform = "INSTAGRAM"
)

// ContentType distinguishes the media kind behind a URL. Videos go through
// audio transcription and subtitle-frame extraction; images skip both.
type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypeImage ContentType = "image"
)

// Status tracks a request through the pipeline.
type Status string

const (
	StatusInitiated    Status = "initiated"
	StatusAcquiring    Status = "acquiring"
	StatusTranscribing Status = "transcribing"
	StatusExtracting   Status = "extracting"
	StatusDelivering   Status = "delivering"
	StatusDelivered    Status = "delivered"
	StatusAbandoned    Status = "abandoned"
	StatusFailed       Status = "failed"
)

// Place is one location extracted from the content. Only Name is guaranteed;
// the remaining fields are filled when the extraction backend or an
// enrichment lookup can supply them. RawData preserves the provider's own
// record fragment for the backend to inspect.
type Place struct {
	Name        string          `json:"name"`
	Category    string          `json:"category,omitempty"`
	Address     string          `json:"address,omitempty"`
	RoadAddress string          `json:"roadAddress,omitempty"`
	Country     string          `json:"country,omitempty"`
	Latitude    string          `json:"latitude,omitempty"`
	Longitude   string          `json:"longitude,omitempty"`
	Description string          `json:"description,omitempty"`
	RawData     json.RawMessage `json:"rawData,omitempty"`
}

// ContentInfo is the display metadata delivered alongside extracted places.
type ContentInfo struct {
	Title        string `json:"title"`
	ContentURL   string `json:"contentUrl"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Uploader     string `json:"uploader,omitempty"`
}

// Media holds the raw acquired artifacts. Video and image bytes stay in
// memory for the lifetime of the request; nothing is written to disk.
type Media struct {
	Video []byte
	Image []byte
}

// SourceText aggregates every text signal available for extraction.
type SourceText struct {
	Caption       string
	Transcript    string
	SubtitleTexts []string
}

// Combined joins all text signals into the single document handed to the
// extraction backend.
func (s SourceText) Combined() string {
	parts := make([]string, 0, 3)
	if t := strings.TrimSpace(s.Caption); t != "" {
		parts = append(parts, t)
	}
	if t := strings.TrimSpace(s.Transcript); t != "" {
		parts = append(parts, t)
	}
	for _, sub := range s.SubtitleTexts {
		if t := strings.TrimSpace(sub); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Record is the unit of work that moves through the pipeline.
type Record struct {
	ContentID   uuid.UUID
	SourceURL   string
	Platform    Platform
	ContentType ContentType
	Status      Status

	Media    Media
	Metadata ContentInfo
	Text     SourceText
	Places   []Place

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecord constructs a freshly initiated record for a classified URL.
func NewRecord(contentID uuid.UUID, sourceURL string, platform Platform, contentType ContentType) *Record {
	now := time.Now().UTC()
	return &Record{
		ContentID:   contentID,
		SourceURL:   sourceURL,
		Platform:    platform,
		ContentType: contentType,
		Status:      StatusInitiated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SetStatus advances the record and stamps the transition time.
func (r *Record) SetStatus(status Status) {
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
}

// HasPlaces reports whether extraction produced at least one place.
func (r *Record) HasPlaces() bool {
	return len(r.Places) > 0
}

func (r *Record) String() string {
	return fmt.Sprintf("record %s %s/%s status=%s", r.ContentID, r.Platform, r.ContentType, r.Status)
}

// Package callback builds and delivers the one-shot result notification to
// the calling backend.
package callback

import (
	"strings"

	"github.com/google/uuid"

	"placepipe/internal/extract"
)

// DeliveryStatus is the outcome reported to the backend.
type DeliveryStatus string

const (
	StatusSuccess DeliveryStatus = "SUCCESS"
	StatusFailed  DeliveryStatus = "FAILED"
)

// ContentInfo is the wire form of the display metadata.
type ContentInfo struct {
	ContentID    string `json:"contentId"`
	Title        string `json:"title,omitempty"`
	ContentURL   string `json:"contentUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Uploader     string `json:"platformUploader,omitempty"`
	Summary      string `json:"summary,omitempty"`
}

// Payload is the callback document. ContentInfo is present exactly when the
// status is SUCCESS; a FAILED payload never carries places.
type Payload struct {
	ContentID   string           `json:"contentId"`
	Status      DeliveryStatus   `json:"resultStatus"`
	Platform    extract.Platform `json:"snsPlatform"`
	ContentInfo *ContentInfo     `json:"contentInfo,omitempty"`
	Places      []extract.Place  `json:"places"`
}

// BuildSuccess assembles a SUCCESS payload for a completed record. The
// summary carries the source caption when one was acquired.
func BuildSuccess(record *extract.Record) Payload {
	places := record.Places
	if places == nil {
		places = []extract.Place{}
	}
	return Payload{
		ContentID: record.ContentID.String(),
		Status:    StatusSuccess,
		Platform:  record.Platform,
		ContentInfo: &ContentInfo{
			ContentID:    record.ContentID.String(),
			Title:        record.Metadata.Title,
			ContentURL:   record.Metadata.ContentURL,
			ThumbnailURL: record.Metadata.ThumbnailURL,
			Uploader:     record.Metadata.Uploader,
			Summary:      strings.TrimSpace(record.Text.Caption),
		},
		Places: places,
	}
}

// BuildFailed assembles a FAILED payload. Failures may occur before the
// record exists, so this takes the raw identifier and platform guess.
func BuildFailed(contentID uuid.UUID, platform extract.Platform) Payload {
	return Payload{
		ContentID: contentID.String(),
		Status:    StatusFailed,
		Platform:  platform,
		Places:    []extract.Place{},
	}
}

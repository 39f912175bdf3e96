package pipeline

import (
	"context"
	"strings"

	"placepipe/internal/extract"
	"placepipe/internal/router"
	"placepipe/internal/services/ytdlp"
)

// resolveMetadata builds the display metadata delivered with a successful
// result. YouTube metadata comes from the Data API with identifier-derived
// fallbacks; Instagram metadata is assembled from the acquired source info.
func (p *Pipeline) resolveMetadata(ctx context.Context, record *extract.Record, info ytdlp.Info) extract.ContentInfo {
	switch record.Platform {
	case extract.PlatformYouTube:
		videoID := router.YouTubeVideoID(record.SourceURL)
		if videoID == "" {
			videoID = info.ID
		}
		return p.metadata.VideoInfo(ctx, videoID)
	default:
		return instagramMetadata(record.SourceURL, info)
	}
}

func instagramMetadata(sourceURL string, info ytdlp.Info) extract.ContentInfo {
	shortcode := router.InstagramShortcode(sourceURL)

	title := captionFirstLine(info.Description)
	if title == "" {
		title = strings.TrimSpace(info.Title)
	}
	if title == "" {
		title = "Instagram Post - " + shortcode
	}

	contentURL := strings.TrimSpace(info.WebpageURL)
	if contentURL == "" {
		contentURL = "https://www.instagram.com/p/" + shortcode + "/"
	}

	return extract.ContentInfo{
		Title:        title,
		ContentURL:   contentURL,
		ThumbnailURL: strings.TrimSpace(info.Thumbnail),
		Uploader:     strings.TrimSpace(info.Uploader),
	}
}

func captionFirstLine(caption string) string {
	for _, line := range strings.Split(caption, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// Package router classifies inbound social-media URLs into a platform and
// content type, and parses the platform-native identifiers needed for
// metadata lookups.
package router

import (
	"net/url"
	"strings"

	"placepipe/internal/extract"
	"placepipe/internal/services"
)

// Route is the classification result for a source URL.
type Route struct {
	Platform    extract.Platform
	ContentType extract.ContentType
}

// Classify maps a URL to its platform and content type. Unrecognized hosts
// and unrecognized Instagram path shapes return ErrUnsupportedSource.
func Classify(rawURL string) (Route, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Route{}, services.Wrap(services.ErrUnsupportedSource, "routing", "classify", "invalid url", err)
	}
	host := strings.ToLower(parsed.Hostname())
	path := parsed.EscapedPath()

	switch {
	case strings.Contains(host, "youtube.com"), strings.Contains(host, "youtu.be"):
		return Route{Platform: extract.PlatformYouTube, ContentType: extract.ContentTypeVideo}, nil
	case strings.Contains(host, "instagram.com"):
		switch {
		case strings.Contains(path, "/reel/"), strings.Contains(path, "/reels/"), strings.Contains(path, "/tv/"):
			return Route{Platform: extract.PlatformInstagram, ContentType: extract.ContentTypeVideo}, nil
		case strings.Contains(path, "/p/"):
			return Route{Platform: extract.PlatformInstagram, ContentType: extract.ContentTypeImage}, nil
		default:
			return Route{}, services.Wrap(services.ErrUnsupportedSource, "routing", "classify", "unrecognized instagram path "+path, nil)
		}
	default:
		return Route{}, services.Wrap(services.ErrUnsupportedSource, "routing", "classify", "unsupported host "+host, nil)
	}
}

// GuessPlatform makes a best-effort platform call for failure reporting when
// classification itself failed. Instagram is the default.
func GuessPlatform(rawURL string) extract.Platform {
	if strings.Contains(strings.ToLower(rawURL), "youtube") {
		return extract.PlatformYouTube
	}
	return extract.PlatformInstagram
}

// YouTubeVideoID extracts the video identifier from the common YouTube URL
// shapes. An empty string means the URL carries no recognizable identifier.
func YouTubeVideoID(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	path := parsed.EscapedPath()

	if strings.Contains(host, "youtu.be") {
		return firstSegment(path)
	}
	if !strings.Contains(host, "youtube.com") {
		return ""
	}
	if idx := strings.Index(path, "/shorts/"); idx >= 0 {
		return firstSegment(path[idx+len("/shorts/")-1:])
	}
	if v := parsed.Query().Get("v"); v != "" {
		return v
	}
	return ""
}

// InstagramShortcode extracts the post shortcode from reel, reels, tv, and
// post URL shapes.
func InstagramShortcode(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	path := parsed.EscapedPath()
	for _, prefix := range []string{"/reels/", "/reel/", "/tv/", "/p/"} {
		if idx := strings.Index(path, prefix); idx >= 0 {
			return firstSegment(path[idx+len(prefix)-1:])
		}
	}
	return ""
}

func firstSegment(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return ""
	}
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}

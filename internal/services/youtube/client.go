// Package youtube resolves display metadata for YouTube videos through the
// Data API v3. Lookups are best effort: when the API is unreachable or the
// video is not found, callers still get usable fallback metadata built from
// the video identifier.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"placepipe/internal/extract"
	"placepipe/internal/logging"
)

// Client talks to the YouTube Data API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a metadata Client.
func New(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://www.googleapis.com/youtube/v3"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "youtube"),
	}
}

// VideoInfo fetches snippet metadata for a video. Every failure path falls
// back to identifier-derived metadata so delivery never blocks on this API.
func (c *Client) VideoInfo(ctx context.Context, videoID string) extract.ContentInfo {
	info := fallbackInfo(videoID)
	if strings.TrimSpace(c.apiKey) == "" || strings.TrimSpace(videoID) == "" {
		return info
	}

	snippet, err := c.fetchSnippet(ctx, videoID)
	if err != nil {
		c.logger.WarnContext(ctx, "metadata lookup failed, using fallback",
			logging.String("video_id", videoID),
			logging.Error(err))
		return info
	}

	if title := strings.TrimSpace(snippet.Title); title != "" {
		info.Title = title
	}
	info.Uploader = strings.TrimSpace(snippet.ChannelTitle)
	return info
}

type snippet struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
}

func (c *Client) fetchSnippet(ctx context.Context, videoID string) (snippet, error) {
	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("id", videoID)
	query.Set("key", c.apiKey)

	endpoint := c.baseURL + "/videos?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return snippet{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return snippet{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return snippet{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return snippet{}, fmt.Errorf("youtube api status %d", resp.StatusCode)
	}

	var payload struct {
		Items []struct {
			Snippet snippet `json:"snippet"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return snippet{}, fmt.Errorf("parse youtube response: %w", err)
	}
	if len(payload.Items) == 0 {
		return snippet{}, fmt.Errorf("video %s not found", videoID)
	}
	return payload.Items[0].Snippet, nil
}

func fallbackInfo(videoID string) extract.ContentInfo {
	return extract.ContentInfo{
		Title:        "YouTube Video - " + videoID,
		ContentURL:   "https://www.youtube.com/watch?v=" + videoID,
		ThumbnailURL: fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", videoID),
	}
}

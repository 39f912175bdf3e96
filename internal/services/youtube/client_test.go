package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestVideoInfoUsesSnippet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("part") != "snippet" || q.Get("id") != "vid123" || q.Get("key") != "yt-key" {
			t.Fatalf("query = %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"snippet":{"title":"Best Seoul Cafes","channelTitle":"Seoul Eats"}}]}`))
	}))
	defer server.Close()

	c := New(server.URL, "yt-key", time.Second, nil)
	info := c.VideoInfo(context.Background(), "vid123")

	if info.Title != "Best Seoul Cafes" {
		t.Errorf("Title = %q", info.Title)
	}
	if info.Uploader != "Seoul Eats" {
		t.Errorf("Uploader = %q", info.Uploader)
	}
	if info.ContentURL != "https://www.youtube.com/watch?v=vid123" {
		t.Errorf("ContentURL = %q", info.ContentURL)
	}
	if info.ThumbnailURL != "https://img.youtube.com/vi/vid123/maxresdefault.jpg" {
		t.Errorf("ThumbnailURL = %q", info.ThumbnailURL)
	}
}

func TestVideoInfoFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "api error status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "video not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"items":[]}`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := New(server.URL, "yt-key", time.Second, nil)
			info := c.VideoInfo(context.Background(), "vid123")
			if info.Title != "YouTube Video - vid123" {
				t.Errorf("Title = %q, want fallback", info.Title)
			}
			if info.ContentURL != "https://www.youtube.com/watch?v=vid123" {
				t.Errorf("ContentURL = %q", info.ContentURL)
			}
		})
	}
}

func TestVideoInfoWithoutAPIKeySkipsNetwork(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits++ }))
	defer server.Close()

	c := New(server.URL, "", time.Second, nil)
	info := c.VideoInfo(context.Background(), "vid123")
	if hits != 0 {
		t.Fatal("lookup hit the network without an api key")
	}
	if info.Title != "YouTube Video - vid123" {
		t.Errorf("Title = %q", info.Title)
	}
}

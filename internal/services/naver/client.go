// Package naver enriches bare place names with address and coordinate data
// from the Naver Local Search API. Enrichment is best effort: names the API
// cannot resolve are passed through with just the name filled in.
package naver

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

// Config holds client settings.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client calls the Naver Local Search API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a place search Client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.NewComponentLogger(logger, "naver"),
	}
}

// EnrichPlaces resolves each place name against local search. Lookup
// failures degrade to a name-only place so one bad name never drops the
// rest of the result.
func (c *Client) EnrichPlaces(ctx context.Context, names []string) []extract.Place {
	places := make([]extract.Place, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		place, err := c.lookup(ctx, trimmed)
		if err != nil {
			c.logger.WarnContext(ctx, "place lookup failed, keeping bare name",
				logging.String("place", trimmed),
				logging.Error(err))
			places = append(places, extract.Place{Name: trimmed})
			continue
		}
		places = append(places, place)
	}
	return places
}

type localItem struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress"`
	MapX        string `json:"mapx"`
	MapY        string `json:"mapy"`
}

func (c *Client) lookup(ctx context.Context, name string) (extract.Place, error) {
	query := url.Values{}
	query.Set("query", name)
	query.Set("display", "1")

	endpoint := c.cfg.BaseURL + "/local.json?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return extract.Place{}, err
	}
	req.Header.Set("X-Naver-Client-Id", c.cfg.ClientID)
	req.Header.Set("X-Naver-Client-Secret", c.cfg.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return extract.Place{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return extract.Place{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return extract.Place{}, fmt.Errorf("naver api status %d", resp.StatusCode)
	}

	var payload struct {
		Items []localItem `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return extract.Place{}, fmt.Errorf("parse naver response: %w", err)
	}
	if len(payload.Items) == 0 {
		return extract.Place{Name: name}, nil
	}

	item := payload.Items[0]
	raw, err := json.Marshal(item)
	if err != nil {
		raw = nil
	}
	return extract.Place{
		Name:        stripMarkup(item.Title),
		Category:    item.Category,
		Address:     item.Address,
		RoadAddress: item.RoadAddress,
		Country:     "KR",
		Longitude:   item.MapX,
		Latitude:    item.MapY,
		RawData:     raw,
	}, nil
}

// stripMarkup removes the <b> highlighting tags local search embeds in
// result titles.
func stripMarkup(s string) string {
	replacer := strings.NewReplacer("<b>", "", "</b>", "", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`)
	return strings.TrimSpace(replacer.Replace(s))
}

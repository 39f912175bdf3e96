// Package gemini extracts structured place information from content text
// using a hosted Gemini model. The request constrains the response to a
// JSON schema so the model returns complete place records in one attempt.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"placepipe/internal/extract"
	"placepipe/internal/logging"
	"placepipe/internal/services"
	"placepipe/internal/services/llm"
)

const systemPrompt = `You analyze social media content about locations in Korea.
Extract every real-world place (restaurant, cafe, shop, attraction, neighborhood spot) mentioned in the text.
For each place provide its name, a short category, the address and country if stated, and a one-sentence description of what the content says about it.
Only include places that are actually mentioned. Return an empty list when no places appear.`

// Config holds client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls the Gemini generateContent API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a Gemini extraction client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.NewComponentLogger(logger, "gemini"),
	}
}

type generateRequest struct {
	SystemInstruction *content        `json:"systemInstruction,omitempty"`
	Contents          []content       `json:"contents"`
	GenerationConfig  *generateConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

var placesSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "places": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "category": {"type": "string"},
          "address": {"type": "string"},
          "country": {"type": "string"},
          "description": {"type": "string"}
        },
        "required": ["name"]
      }
    }
  },
  "required": ["places"]
}`)

// ExtractPlaces sends the combined content text to the model and returns the
// structured places it found. The call is made once; any transport, API, or
// parse failure is returned to the caller.
func (c *Client) ExtractPlaces(ctx context.Context, text string) ([]extract.Place, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	reqBody := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: text}}}},
		GenerationConfig: &generateConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   placesSchema,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, services.Wrap(services.ErrExtractionBackend, "extract", "gemini", "encode request", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, services.Wrap(services.ErrExtractionBackend, "extract", "gemini", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExtractionBackend, "extract", "gemini", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrExtractionBackend, "extract", "gemini", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExtractionBackend, "extract", "gemini",
			fmt.Sprintf("api status %d: %s", resp.StatusCode, truncate(string(body), 200)), nil)
	}

	var envelope struct {
		Candidates []struct {
			Content struct {
				Parts []part `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, services.Wrap(services.ErrExtractionBackend, "extract", "gemini", "parse response envelope", err)
	}
	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return nil, services.Wrap(services.ErrExtractionBackend, "extract", "gemini", "response has no candidates", nil)
	}

	var doc struct {
		Places []extract.Place `json:"places"`
	}
	if err := llm.DecodeJSON(envelope.Candidates[0].Content.Parts[0].Text, &doc); err != nil {
		return nil, services.Wrap(services.ErrExtractionBackend, "extract", "gemini", "parse place document", err)
	}

	c.logger.InfoContext(ctx, "structured extraction complete",
		logging.Int("place_count", len(doc.Places)))
	return doc.Places, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

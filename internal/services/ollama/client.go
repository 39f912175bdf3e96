// Package ollama extracts place names from content text using a local or
// self-hosted model behind the Ollama chat API. This backend is
// deliberately forgiving: it retries transient failures and degrades to an
// empty result instead of failing the pipeline.
package ollama

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

	"placepipe/internal/logging"
	"placepipe/internal/services/llm"
)

const systemPrompt = `You extract place names from Korean social media content.
Respond with JSON only: {"place_names": ["..."], "has_places": true}.
List only real-world locations actually mentioned in the text. Use an empty list when there are none.`

// Config holds client settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxAttempts int
	Timeout     time.Duration
}

// Result is the narrow extraction output: bare place names, no addresses.
type Result struct {
	PlaceNames []string `json:"place_names"`
	HasPlaces  bool     `json:"has_places"`
}

// Client calls the Ollama chat API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns an Ollama extraction client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.NewComponentLogger(logger, "ollama"),
	}
}

// ExtractPlaceNames asks the model for the place names in the text. Empty
// input returns an empty result without a network call. Each attempt
// tolerates transport errors, missing message content, and malformed JSON;
// when all attempts fail the method returns an empty result and no error.
// HasPlaces is always recomputed from the name list, ignoring the model's
// own flag.
func (c *Client) ExtractPlaceNames(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{PlaceNames: []string{}}
	}

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		result, err := c.attempt(ctx, text)
		if err == nil {
			names := make([]string, 0, len(result.PlaceNames))
			for _, name := range result.PlaceNames {
				if trimmed := strings.TrimSpace(name); trimmed != "" {
					names = append(names, trimmed)
				}
			}
			return Result{PlaceNames: names, HasPlaces: len(names) > 0}
		}

		c.logger.WarnContext(ctx, "place name extraction attempt failed",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", c.cfg.MaxAttempts),
			logging.Error(err))
	}

	c.logger.WarnContext(ctx, "place name extraction exhausted all attempts, returning empty result")
	return Result{PlaceNames: []string{}}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) attempt(ctx context.Context, text string) (Result, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-KEY", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return Result{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("ollama status %d", resp.StatusCode)
	}

	var envelope struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Result{}, fmt.Errorf("parse chat envelope: %w", err)
	}
	if strings.TrimSpace(envelope.Message.Content) == "" {
		return Result{}, fmt.Errorf("chat response has no message content")
	}

	var result Result
	if err := llm.DecodeJSON(envelope.Message.Content, &result); err != nil {
		return Result{}, err
	}
	return result, nil
}

package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"placepipe/internal/logging"
)

// Config holds delivery settings.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Deliverer posts result payloads to the backend callback endpoint.
type Deliverer struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewDeliverer returns a callback Deliverer.
func NewDeliverer(cfg Config, logger *slog.Logger) *Deliverer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Deliverer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.NewComponentLogger(logger, "callback"),
	}
}

// Deliver sends the payload once and reports whether the backend accepted
// it. Every failure mode, including timeouts and non-2xx responses, is
// logged and reported as false; there are no retries.
func (d *Deliverer) Deliver(ctx context.Context, payload Payload) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.ErrorContext(ctx, "callback payload does not encode",
			logging.String("content_id", payload.ContentID),
			logging.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL, bytes.NewReader(body))
	if err != nil {
		d.logger.ErrorContext(ctx, "callback request build failed",
			logging.String("content_id", payload.ContentID),
			logging.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", d.cfg.APIKey)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.ErrorContext(ctx, "callback delivery failed",
			logging.String("content_id", payload.ContentID),
			logging.String("status", string(payload.Status)),
			logging.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		d.logger.ErrorContext(ctx, "callback rejected by backend",
			logging.String("content_id", payload.ContentID),
			logging.String("status", string(payload.Status)),
			logging.Int("http_status", resp.StatusCode))
		return false
	}

	d.logger.InfoContext(ctx, "callback delivered",
		logging.String("content_id", payload.ContentID),
		logging.String("status", string(payload.Status)))
	return true
}

package daemon

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"placepipe/internal/logging"
	"placepipe/internal/services"
)

// Launcher starts background processing for an accepted request.
type Launcher interface {
	Launch(contentID uuid.UUID, sourceURL string)
}

// APIServer exposes the inbound extraction API.
type APIServer struct {
	apiKey   string
	launcher Launcher
	logger   *slog.Logger
}

// NewAPIServer returns the inbound API handler set.
func NewAPIServer(apiKey string, launcher Launcher, logger *slog.Logger) *APIServer {
	return &APIServer{
		apiKey:   apiKey,
		launcher: launcher,
		logger:   logging.NewComponentLogger(logger, "api"),
	}
}

// Handler builds the route mux.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/extract-places", requireMethod(http.MethodPost, s.authenticated(s.handleExtractPlaces)))
	mux.HandleFunc("/api/health", requireMethod(http.MethodGet, s.handleHealth))
	return mux
}

// HTTPServer wraps the handler in a server with sane timeouts.
func (s *APIServer) HTTPServer(bind string) *http.Server {
	return &http.Server{
		Addr:              bind,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// requireMethod replicates the method matching of ServeMux method patterns,
// which need a newer Go toolchain than this module is built with.
func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func (s *APIServer) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != s.apiKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			return
		}
		next(w, r)
	}
}

type extractRequest struct {
	ContentID string `json:"contentId"`
	SNSURL    string `json:"snsUrl"`
}

// handleExtractPlaces validates the request, acknowledges immediately, and
// hands the work to the pipeline. The acknowledgment body is fixed so the
// backend can treat every accepted request uniformly.
func (s *APIServer) handleExtractPlaces(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	contentID, err := uuid.Parse(strings.TrimSpace(req.ContentID))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "contentId must be a UUID"})
		return
	}
	sourceURL := strings.TrimSpace(req.SNSURL)
	if sourceURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "snsUrl is required"})
		return
	}

	ctx := services.WithContentID(r.Context(), contentID.String())
	s.logger.InfoContext(ctx, "extraction request accepted",
		logging.String("url", sourceURL))

	s.launcher.Launch(contentID, sourceURL)
	writeJSON(w, http.StatusOK, map[string]any{
		"received": true,
		"message":  "Processing started",
	})
}

func (s *APIServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

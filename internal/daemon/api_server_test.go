package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type recordingLauncher struct {
	ids  []uuid.UUID
	urls []string
}

func (l *recordingLauncher) Launch(contentID uuid.UUID, sourceURL string) {
	l.ids = append(l.ids, contentID)
	l.urls = append(l.urls, sourceURL)
}

func newTestServer() (*recordingLauncher, http.Handler) {
	launcher := &recordingLauncher{}
	api := NewAPIServer("secret", launcher, nil)
	return launcher, api.Handler()
}

func postExtract(handler http.Handler, apiKey, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/extract-places", strings.NewReader(body))
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestExtractPlacesAcknowledgesAndLaunches(t *testing.T) {
	launcher, handler := newTestServer()
	id := uuid.New()

	rec := postExtract(handler, "secret", `{"contentId":"`+id.String()+`","snsUrl":"https://youtu.be/x"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var body struct {
		Received bool   `json:"received"`
		Message  string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Received || body.Message != "Processing started" {
		t.Fatalf("body = %+v", body)
	}

	if len(launcher.ids) != 1 || launcher.ids[0] != id || launcher.urls[0] != "https://youtu.be/x" {
		t.Fatalf("launcher = %+v", launcher)
	}
}

func TestExtractPlacesRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		body       string
		wantStatus int
	}{
		{"missing api key", "", `{"contentId":"x","snsUrl":"u"}`, http.StatusUnauthorized},
		{"wrong api key", "nope", `{"contentId":"x","snsUrl":"u"}`, http.StatusUnauthorized},
		{"invalid json", "secret", `{`, http.StatusBadRequest},
		{"non uuid content id", "secret", `{"contentId":"not-a-uuid","snsUrl":"u"}`, http.StatusBadRequest},
		{"missing url", "secret", `{"contentId":"` + uuid.NewString() + `","snsUrl":"  "}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			launcher, handler := newTestServer()
			rec := postExtract(handler, tt.apiKey, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if len(launcher.ids) != 0 {
				t.Fatal("launcher ran for a rejected request")
			}
		})
	}
}

func TestHealthEndpointIsUnauthenticated(t *testing.T) {
	_, handler := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("body = %s", rec.Body)
	}
}

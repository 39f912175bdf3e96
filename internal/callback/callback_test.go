package callback

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"placepipe/internal/extract"
)

func TestBuildSuccessCarriesContentInfoAndPlaces(t *testing.T) {
	record := extract.NewRecord(uuid.New(), "https://youtu.be/x", extract.PlatformYouTube, extract.ContentTypeVideo)
	record.Metadata = extract.ContentInfo{Title: "t", ContentURL: "u"}
	record.Places = []extract.Place{{Name: "광장시장", Country: "KR", RawData: json.RawMessage(`{"source":"local"}`)}}

	payload := BuildSuccess(record)
	if payload.Status != StatusSuccess {
		t.Fatalf("Status = %v", payload.Status)
	}
	if payload.ContentInfo == nil || payload.ContentInfo.Title != "t" {
		t.Fatalf("ContentInfo = %+v", payload.ContentInfo)
	}
	if len(payload.Places) != 1 {
		t.Fatalf("Places = %v", payload.Places)
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Places []map[string]json.RawMessage `json:"places"`
	}
	if err := json.Unmarshal(encoded, &doc); err != nil {
		t.Fatal(err)
	}
	if string(doc.Places[0]["country"]) != `"KR"` {
		t.Errorf("country encodes as %s", doc.Places[0]["country"])
	}
	if string(doc.Places[0]["rawData"]) != `{"source":"local"}` {
		t.Errorf("rawData encodes as %s", doc.Places[0]["rawData"])
	}
}

func TestBuildSuccessWithNoPlacesEncodesEmptyArray(t *testing.T) {
	record := extract.NewRecord(uuid.New(), "u", extract.PlatformInstagram, extract.ContentTypeImage)
	payload := BuildSuccess(record)

	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &doc); err != nil {
		t.Fatal(err)
	}
	if string(doc["places"]) != "[]" {
		t.Fatalf("places encodes as %s, want []", doc["places"])
	}
	if string(doc["resultStatus"]) != `"SUCCESS"` {
		t.Fatalf("resultStatus encodes as %s", doc["resultStatus"])
	}
	if string(doc["snsPlatform"]) != `"INSTAGRAM"` {
		t.Fatalf("snsPlatform encodes as %s", doc["snsPlatform"])
	}
}

func TestBuildFailedOmitsContentInfoAndPlaces(t *testing.T) {
	payload := BuildFailed(uuid.New(), extract.PlatformInstagram)
	if payload.Status != StatusFailed {
		t.Fatalf("Status = %v", payload.Status)
	}
	if payload.ContentInfo != nil {
		t.Fatal("FAILED payload must not carry content info")
	}
	if len(payload.Places) != 0 {
		t.Fatal("FAILED payload must not carry places")
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &doc); err != nil {
		t.Fatal(err)
	}
	if _, ok := doc["contentInfo"]; ok {
		t.Fatal("contentInfo key present on FAILED payload")
	}
}

func TestDeliverPostsWithAPIKey(t *testing.T) {
	var got Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s", r.Method)
		}
		if r.Header.Get("X-API-Key") != "outbound" {
			t.Fatalf("api key = %q", r.Header.Get("X-API-Key"))
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDeliverer(Config{URL: server.URL, APIKey: "outbound"}, nil)
	payload := BuildFailed(uuid.New(), extract.PlatformYouTube)
	if !d.Deliver(context.Background(), payload) {
		t.Fatal("Deliver() = false on 200")
	}
	if got.Status != StatusFailed || got.Platform != extract.PlatformYouTube {
		t.Fatalf("delivered payload = %+v", got)
	}
}

func TestDeliverFailureModes(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		d := NewDeliverer(Config{URL: server.URL, APIKey: "k"}, nil)
		if d.Deliver(context.Background(), BuildFailed(uuid.New(), extract.PlatformInstagram)) {
			t.Fatal("Deliver() = true on 500")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			<-release
		}))
		defer func() {
			close(release)
			server.Close()
		}()

		d := NewDeliverer(Config{URL: server.URL, APIKey: "k", Timeout: 50 * time.Millisecond}, nil)
		if d.Deliver(context.Background(), BuildFailed(uuid.New(), extract.PlatformInstagram)) {
			t.Fatal("Deliver() = true on timeout")
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		d := NewDeliverer(Config{URL: "http://127.0.0.1:1", APIKey: "k", Timeout: time.Second}, nil)
		if d.Deliver(context.Background(), BuildFailed(uuid.New(), extract.PlatformInstagram)) {
			t.Fatal("Deliver() = true on connection failure")
		}
	})
}

package naver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnrichPlaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Naver-Client-Id") != "id" || r.Header.Get("X-Naver-Client-Secret") != "secret" {
			t.Fatalf("credential headers missing: %v", r.Header)
		}
		switch r.URL.Query().Get("query") {
		case "광장시장":
			w.Write([]byte(`{"items":[{"title":"<b>광장시장</b>","category":"시장>전통시장","address":"서울특별시 종로구 예지동","roadAddress":"서울특별시 종로구 창경궁로 88","mapx":"1270000000","mapy":"375700000"}]}`))
		case "없는곳":
			w.Write([]byte(`{"items":[]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL, ClientID: "id", ClientSecret: "secret"}, nil)
	places := c.EnrichPlaces(context.Background(), []string{"광장시장", "없는곳", "실패하는곳", "  "})

	if len(places) != 3 {
		t.Fatalf("places = %d, want 3", len(places))
	}

	enriched := places[0]
	if enriched.Name != "광장시장" {
		t.Errorf("Name = %q, markup not stripped", enriched.Name)
	}
	if enriched.RoadAddress != "서울특별시 종로구 창경궁로 88" || enriched.Latitude != "375700000" || enriched.Longitude != "1270000000" {
		t.Errorf("enriched = %+v", enriched)
	}
	if enriched.Country != "KR" {
		t.Errorf("Country = %q, want KR", enriched.Country)
	}
	var raw map[string]string
	if err := json.Unmarshal(enriched.RawData, &raw); err != nil {
		t.Errorf("RawData does not decode: %v", err)
	} else if raw["roadAddress"] != "서울특별시 종로구 창경궁로 88" {
		t.Errorf("RawData = %v, want the provider item", raw)
	}

	if places[1].Name != "없는곳" || places[1].Address != "" {
		t.Errorf("no-hit place = %+v, want bare name", places[1])
	}
	if places[2].Name != "실패하는곳" || places[2].Address != "" {
		t.Errorf("failed lookup = %+v, want bare name", places[2])
	}
}

package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"vyruchaiBack/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *YandexClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewYandexClient(server.Client(), "test-api-key")
	client.baseURL = server.URL
	return client
}

func TestGeocodeShortCircuitsLonLat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("API must not be called for a lon,lat query")
	})

	lon, lat, err := client.Geocode(context.Background(), "37.617635, 55.755814")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if lon != 37.617635 || lat != 55.755814 {
		t.Fatalf("unexpected coords: %f %f", lon, lat)
	}
}

func TestGeocodeParsesPoint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("apikey"); got != "test-api-key" {
			t.Errorf("missing apikey, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"GeoObjectCollection":{"featureMember":[
			{"GeoObject":{"name":"улица Ленина, 10","description":"Москва, Россия","Point":{"pos":"37.617635 55.755814"}}}
		]}}}`))
	})

	lon, lat, err := client.Geocode(context.Background(), "улица Ленина, 10")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if lon != 37.617635 || lat != 55.755814 {
		t.Fatalf("unexpected coords: %f %f", lon, lat)
	}
}

func TestGeocodeNoResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"GeoObjectCollection":{"featureMember":[]}}}`))
	})

	_, _, err := client.Geocode(context.Background(), "nonexistent place xyz")
	if !errors.Is(err, models.ErrGeocodeNoResult) {
		t.Fatalf("expected ErrGeocodeNoResult, got %v", err)
	}
}

func TestGeocodeServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "key invalid", http.StatusForbidden)
	})

	if _, _, err := client.Geocode(context.Background(), "улица Ленина"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestReverseGeocode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"GeoObjectCollection":{"featureMember":[
			{"GeoObject":{"name":"улица Ленина, 10","description":"Москва, Россия","Point":{"pos":"37.617635 55.755814"}}}
		]}}}`))
	})

	addr, err := client.ReverseGeocode(context.Background(), 37.617635, 55.755814)
	if err != nil {
		t.Fatalf("ReverseGeocode: %v", err)
	}
	if addr != "Москва, Россия, улица Ленина, 10" {
		t.Fatalf("unexpected address: %q", addr)
	}
}

func TestTryParseLonLat(t *testing.T) {
	if _, _, ok := tryParseLonLat("улица Ленина"); ok {
		t.Fatal("address must not parse as coordinates")
	}
	if _, _, ok := tryParseLonLat("200,95"); ok {
		t.Fatal("out-of-range coords must not parse")
	}
	lon, lat, ok := tryParseLonLat("71.43; 51.12")
	if !ok || lon != 71.43 || lat != 51.12 {
		t.Fatalf("semicolon form: ok=%v lon=%f lat=%f", ok, lon, lat)
	}
}

package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/listingshield/backend/internal/places"
)

func TestSearchRequiresQuery(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodGet, "/api/gmb-search", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestSearchReturnsResults(t *testing.T) {
	env := newTestEnv(t)
	env.places.searchResults = []places.Location{
		{ID: "ChIJ123", Name: "Kebab King", Address: "Marszałkowska 1", PlaceID: "ChIJ123"},
	}

	recorder := env.do(t, http.MethodGet, "/api/gmb-search?query=kebab", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	results, ok := decodeBody(t, recorder)["results"].([]interface{})
	if !ok || len(results) != 1 {
		t.Fatalf("expected one result, got %s", recorder.Body.String())
	}
}

func TestSearchNoResults(t *testing.T) {
	env := newTestEnv(t)
	env.places.searchErr = places.ErrNoResults

	recorder := env.do(t, http.MethodGet, "/api/gmb-search?query=nonexistent", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["error"] != "No results found" {
		t.Fatalf("unexpected error message: %s", recorder.Body.String())
	}
	if results, ok := body["results"].([]interface{}); !ok || len(results) != 0 {
		t.Fatalf("expected empty results array, got %s", recorder.Body.String())
	}
}

func TestSearchRateLimitPropagatesRetryAfter(t *testing.T) {
	env := newTestEnv(t)
	env.places.searchErr = &places.RateLimitError{RetryAfter: "37"}

	recorder := env.do(t, http.MethodGet, "/api/gmb-search?query=kebab", nil)
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", recorder.Code)
	}
	if recorder.Header().Get("Retry-After") != "37" {
		t.Fatalf("Retry-After not propagated, got %q", recorder.Header().Get("Retry-After"))
	}
}

func TestSearchUpstreamFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.places.searchErr = errors.New("upstream exploded: key=secret")

	recorder := env.do(t, http.MethodGet, "/api/gmb-search?query=kebab", nil)
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", recorder.Code)
	}
	if decodeBody(t, recorder)["error"] != "Business lookup failed" {
		t.Fatalf("internal detail leaked: %s", recorder.Body.String())
	}
}

func TestDetailsRequiresPlaceID(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodGet, "/api/places-details", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestDetailsReturnsRecord(t *testing.T) {
	env := newTestEnv(t)
	env.places.details = places.PlaceDetails{
		PlaceID:   "ChIJ123",
		Name:      "Kebab King",
		Address:   "Marszałkowska 1",
		GoogleURL: "https://maps.google.com/maps?place_id=ChIJ123",
	}

	recorder := env.do(t, http.MethodGet, "/api/places-details?placeId=ChIJ123", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if decodeBody(t, recorder)["placeId"] != "ChIJ123" {
		t.Fatalf("unexpected body %s", recorder.Body.String())
	}
}

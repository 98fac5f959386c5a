package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/listingshield/backend/internal/orders"
	"github.com/listingshield/backend/internal/tracking"
)

func seedAnalyticsData(t *testing.T, env *testEnv) {
	t.Helper()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	pages := []string{"/", "/", "/pricing"}
	for _, page := range pages {
		visitor := tracking.Visitor{
			IPAddress: "203.0.113.9",
			PagePath:  page,
			Referer:   "https://www.google.com/search?q=usuwanie",
			SessionID: "sess_abc",
			CreatedAt: created,
		}
		if err := env.db.Create(&visitor).Error; err != nil {
			t.Fatalf("seed visitor failed: %v", err)
		}
	}

	statuses := []orders.PaymentStatus{orders.PaymentStatusCompleted, orders.PaymentStatusPending}
	for index, status := range statuses {
		order := orders.Order{
			ID:              string(rune('a' + index)),
			CustomerEmail:   "klient@example.com",
			CustomerName:    "Jan Kowalski",
			Phone:           "+48 600 700 800",
			ServiceType:     "remove",
			TotalAmount:     499,
			Currency:        "pln",
			PaymentStatus:   status,
			StripeSessionID: "cs_" + string(rune('a'+index)),
			BusinessPlaceID: "ChIJ123",
			BusinessName:    "Kebab King",
			BusinessAddress: "Marszałkowska 1",
			CreatedAt:       created,
		}
		if err := env.db.Create(&order).Error; err != nil {
			t.Fatalf("seed order failed: %v", err)
		}
	}

	query := "kebab warszawa"
	selection := orders.SearchedPlace{
		SearchQuery:  &query,
		PlaceID:      "ChIJ123",
		PlaceName:    "Kebab King",
		PlaceAddress: "Marszałkowska 1",
		CreatedAt:    created,
	}
	if err := env.db.Create(&selection).Error; err != nil {
		t.Fatalf("seed selection failed: %v", err)
	}
}

func TestAnalyticsVisitorReport(t *testing.T) {
	env := newTestEnv(t)
	seedAnalyticsData(t, env)

	recorder := env.do(t, http.MethodGet, "/api/analytics?type=visitors", nil, adminCookie())
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	body := decodeBody(t, recorder)
	if body["total"] != float64(3) {
		t.Fatalf("expected total 3, got %v", body["total"])
	}
	topPages, ok := body["topPages"].([]interface{})
	if !ok || len(topPages) != 2 {
		t.Fatalf("unexpected topPages: %v", body["topPages"])
	}
	first, _ := topPages[0].(map[string]interface{})
	if first["key"] != "/" || first["count"] != float64(2) {
		t.Fatalf("expected / to lead with 2 views, got %v", first)
	}
	topReferers, _ := body["topReferers"].([]interface{})
	if len(topReferers) != 1 {
		t.Fatalf("unexpected topReferers: %v", body["topReferers"])
	}
	referer, _ := topReferers[0].(map[string]interface{})
	if referer["key"] != "www.google.com" {
		t.Fatalf("referer not normalized to hostname: %v", referer)
	}
}

func TestAnalyticsOrderReport(t *testing.T) {
	env := newTestEnv(t)
	seedAnalyticsData(t, env)

	recorder := env.do(t, http.MethodGet, "/api/analytics?type=orders", nil, adminCookie())
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["total"] != float64(2) {
		t.Fatalf("expected 2 orders, got %v", body["total"])
	}
	revenue, ok := body["revenue"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing revenue summary: %s", recorder.Body.String())
	}
	if revenue["totalRevenue"] != float64(998) {
		t.Fatalf("expected revenue 998, got %v", revenue["totalRevenue"])
	}
	if revenue["avgOrderValue"] != float64(499) {
		t.Fatalf("expected average 499, got %v", revenue["avgOrderValue"])
	}
}

func TestAnalyticsSearchReport(t *testing.T) {
	env := newTestEnv(t)
	seedAnalyticsData(t, env)

	recorder := env.do(t, http.MethodGet, "/api/analytics?type=searches", nil, adminCookie())
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["total"] != float64(1) {
		t.Fatalf("expected one selection, got %v", body["total"])
	}
}

func TestAnalyticsOverviewIsDefault(t *testing.T) {
	env := newTestEnv(t)
	seedAnalyticsData(t, env)

	recorder := env.do(t, http.MethodGet, "/api/analytics", nil, adminCookie())
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	body := decodeBody(t, recorder)
	for _, section := range []string{"visitors", "orders", "searches"} {
		if _, ok := body[section]; !ok {
			t.Errorf("overview missing %q section", section)
		}
	}
}

func TestAnalyticsUnknownType(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodGet, "/api/analytics?type=weather", nil, adminCookie())
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

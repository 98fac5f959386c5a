package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/listingshield/backend/internal/adminauth"
	"github.com/listingshield/backend/internal/mailer"
	"github.com/listingshield/backend/internal/orders"
	"github.com/listingshield/backend/internal/places"
	"github.com/listingshield/backend/internal/pricing"
	"github.com/listingshield/backend/internal/tracking"
	"gorm.io/gorm"
)

const (
	testAdminEmail    = "admin@listingshield.pl"
	testAdminPassword = "sekret-haslo"
	adminCookieName   = "admin_session"
)

type stubPlaces struct {
	searchResults []places.Location
	searchErr     error
	details       places.PlaceDetails
	detailsErr    error
}

func (s *stubPlaces) Search(context.Context, string) ([]places.Location, error) {
	return s.searchResults, s.searchErr
}

func (s *stubPlaces) Details(context.Context, string) (places.PlaceDetails, error) {
	return s.details, s.detailsErr
}

type stubWebhook struct {
	payload   []byte
	signature string
	err       error
}

func (s *stubWebhook) Handle(_ context.Context, payload []byte, signature string) error {
	s.payload = payload
	s.signature = signature
	return s.err
}

type stubPaymentProvider struct {
	checkoutErr error
}

func (s *stubPaymentProvider) CreateCustomer(context.Context, orders.CustomerParams) (string, error) {
	return "cus_test", nil
}

func (s *stubPaymentProvider) CreateCheckoutSession(context.Context, orders.CheckoutParams) (orders.CheckoutSession, error) {
	if s.checkoutErr != nil {
		return orders.CheckoutSession{}, s.checkoutErr
	}
	return orders.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.com/pay/cs_test_123"}, nil
}

type channelSender struct {
	messages chan mailer.ContactMessage
}

func (s *channelSender) SendContact(message mailer.ContactMessage) error {
	s.messages <- message
	return nil
}

type testEnv struct {
	router   http.Handler
	db       *gorm.DB
	places   *stubPlaces
	webhook  *stubWebhook
	provider *stubPaymentProvider
	mail     *channelSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = db.AutoMigrate(&tracking.Visitor{}, &pricing.Item{}, &orders.Order{}, &orders.SearchedPlace{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	trackingService, err := tracking.NewService(tracking.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("tracking service: %v", err)
	}
	pricingService, err := pricing.NewService(pricing.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("pricing service: %v", err)
	}
	provider := &stubPaymentProvider{}
	orderService, err := orders.NewService(orders.ServiceConfig{
		Database:   db,
		Payments:   provider,
		Pricing:    pricingService,
		Currency:   "pln",
		SuccessURL: "https://listingshield.pl/success",
		CancelURL:  "https://listingshield.pl/cancel",
	})
	if err != nil {
		t.Fatalf("order service: %v", err)
	}
	guard, err := adminauth.NewGuard(adminauth.GuardConfig{
		Email:      testAdminEmail,
		Password:   testAdminPassword,
		CookieName: adminCookieName,
	})
	if err != nil {
		t.Fatalf("guard: %v", err)
	}

	env := &testEnv{
		db:       db,
		places:   &stubPlaces{},
		webhook:  &stubWebhook{},
		provider: provider,
		mail:     &channelSender{messages: make(chan mailer.ContactMessage, 1)},
	}

	router, err := NewHTTPHandler(Dependencies{
		Places:            env.places,
		Tracking:          trackingService,
		Pricing:           pricingService,
		Orders:            orderService,
		Webhook:           env.webhook,
		Guard:             guard,
		Mailer:            env.mail,
		SessionCookieName: "ls_session",
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	env.router = router
	return env
}

func (env *testEnv) seedCatalog(t *testing.T) {
	t.Helper()
	items := []pricing.Item{
		{Code: pricing.CodeRemove, Name: "Google Business Profile Removal", Price: 499, Type: pricing.ItemTypeService, IsActive: true},
		{Code: pricing.CodeReset, Name: "Google Business Profile Reset", Price: 299, Type: pricing.ItemTypeService, IsActive: true},
		{Code: pricing.CodeYearProtection, Name: "1-Year Re-listing Protection", Price: 199, Type: pricing.ItemTypeAddon, IsActive: true},
		{Code: pricing.CodeExpressService, Name: "Express Service", Price: 149, Type: pricing.ItemTypeAddon, IsActive: true},
	}
	for _, item := range items {
		if err := env.db.Create(&item).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func (env *testEnv) do(t *testing.T, method, target string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	request := httptest.NewRequest(method, target, reader)
	request.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, request)
	return recorder
}

func adminCookie() *http.Cookie {
	return &http.Cookie{Name: adminCookieName, Value: adminauth.SessionCookieValue}
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return decoded
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	recorder := env.do(t, http.MethodGet, "/health", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if decodeBody(t, recorder)["status"] != "healthy" {
		t.Fatalf("unexpected body %s", recorder.Body.String())
	}
}

func TestNewHTTPHandlerRequiresDependencies(t *testing.T) {
	if _, err := NewHTTPHandler(Dependencies{}); err == nil {
		t.Fatal("expected error for empty dependencies")
	}
}

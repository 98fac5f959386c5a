package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/listingshield/backend/internal/adminauth"
	"github.com/listingshield/backend/internal/mailer"
	"github.com/listingshield/backend/internal/orders"
	"github.com/listingshield/backend/internal/places"
	"github.com/listingshield/backend/internal/pricing"
	"github.com/listingshield/backend/internal/tracking"
	"go.uber.org/zap"
)

var (
	errMissingPlacesGateway  = errors.New("places gateway dependency required")
	errMissingTracking       = errors.New("tracking service dependency required")
	errMissingPricing        = errors.New("pricing service dependency required")
	errMissingOrders         = errors.New("orders service dependency required")
	errMissingWebhookHandler = errors.New("webhook handler dependency required")
	errMissingAdminGuard     = errors.New("admin guard dependency required")
)

// PlacesGateway is the slice of the lookup client the router needs.
type PlacesGateway interface {
	Search(ctx context.Context, query string) ([]places.Location, error)
	Details(ctx context.Context, placeID string) (places.PlaceDetails, error)
}

// WebhookProcessor verifies and applies payment-processor callbacks.
type WebhookProcessor interface {
	Handle(ctx context.Context, payload []byte, signatureHeader string) error
}

// Dependencies wires the HTTP surface.
type Dependencies struct {
	Places   PlacesGateway
	Tracking *tracking.Service
	Pricing  *pricing.Service
	Orders   *orders.Service
	Webhook  WebhookProcessor
	Guard    *adminauth.Guard
	Mailer   mailer.Sender
	Logger   *zap.Logger

	SessionCookieName string
	SecureCookies     bool
}

// NewHTTPHandler validates dependencies and assembles the router.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Places == nil {
		return nil, errMissingPlacesGateway
	}
	if deps.Tracking == nil {
		return nil, errMissingTracking
	}
	if deps.Pricing == nil {
		return nil, errMissingPricing
	}
	if deps.Orders == nil {
		return nil, errMissingOrders
	}
	if deps.Webhook == nil {
		return nil, errMissingWebhookHandler
	}
	if deps.Guard == nil {
		return nil, errMissingAdminGuard
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Stripe-Signature"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(tracking.Middleware(tracking.MiddlewareConfig{
		Service:      deps.Tracking,
		CookieName:   deps.SessionCookieName,
		SecureCookie: deps.SecureCookies,
		Logger:       logger,
	}))

	handler := &httpHandler{
		places:  deps.Places,
		visits:  deps.Tracking,
		pricing: deps.Pricing,
		orders:  deps.Orders,
		webhook: deps.Webhook,
		guard:   deps.Guard,
		mailer:  deps.Mailer,
		logger:  logger,
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")

	api.GET("/gmb-search", handler.handleSearch)
	api.GET("/places-details", handler.handleDetails)
	api.POST("/searched-gmb", handler.handleRecordSelection)
	api.POST("/create-payment", handler.handleCreatePayment)
	api.POST("/stripe/webhook", handler.handleStripeWebhook)
	api.GET("/pricing", handler.handlePricingList)
	api.POST("/contact", handler.handleContact)

	api.POST("/admin/auth", handler.handleAdminLogin)
	api.GET("/admin/auth", handler.handleAdminCheck)
	api.DELETE("/admin/auth", handler.handleAdminLogout)

	admin := api.Group("")
	admin.Use(deps.Guard.Middleware())
	admin.GET("/visitors", handler.handleVisitorList)
	admin.GET("/searched-gmb", handler.handleSelectionList)
	admin.GET("/analytics", handler.handleAnalytics)
	admin.GET("/admin/orders", handler.handleOrderList)
	admin.PATCH("/admin/orders", handler.handleOrderPatch)
	admin.POST("/pricing", handler.handlePricingWrite)
	admin.PUT("/pricing", handler.handlePricingWrite)

	return router, nil
}

type httpHandler struct {
	places  PlacesGateway
	visits  *tracking.Service
	pricing *pricing.Service
	orders  *orders.Service
	webhook WebhookProcessor
	guard   *adminauth.Guard
	mailer  mailer.Sender
	logger  *zap.Logger
}

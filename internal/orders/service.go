package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/listingshield/backend/internal/pricing"
	"github.com/listingshield/backend/internal/tracking"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrInvalidOrder indicates the intake payload is missing required fields.
	ErrInvalidOrder = errors.New("orders: invalid order request")
	// ErrOrderNotFound indicates the referenced order does not exist.
	ErrOrderNotFound = errors.New("orders: order not found")
	// ErrInvalidTransition indicates a status change out of a terminal state.
	ErrInvalidTransition = errors.New("orders: order is not pending")

	errMissingDatabase = errors.New("orders: database handle is required")
	errMissingPayments = errors.New("orders: payment provider is required")
	errMissingPricing  = errors.New("orders: pricing catalog is required")
)

// Quoter prices a service selection. Implemented by pricing.Service.
type Quoter interface {
	Quote(ctx context.Context, serviceType string, yearProtection, expressService bool) (pricing.Quote, error)
}

// IDProvider issues order identifiers.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies of the order service.
type ServiceConfig struct {
	Database   *gorm.DB
	Payments   PaymentProvider
	Pricing    Quoter
	IDProvider IDProvider
	Clock      func() time.Time
	Logger     *zap.Logger

	Currency   string
	SuccessURL string
	CancelURL  string
}

// Service owns order intake, the selection log, the payment state machine and
// the admin listings.
type Service struct {
	db         *gorm.DB
	payments   PaymentProvider
	pricing    Quoter
	idProvider IDProvider
	clock      func() time.Time
	logger     *zap.Logger

	currency   string
	successURL string
	cancelURL  string
}

// NewService validates the configuration and constructs the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	if cfg.Payments == nil {
		return nil, errMissingPayments
	}
	if cfg.Pricing == nil {
		return nil, errMissingPricing
	}
	idProvider := cfg.IDProvider
	if idProvider == nil {
		idProvider = NewUUIDProvider()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "pln"
	}
	return &Service{
		db:         cfg.Database,
		payments:   cfg.Payments,
		pricing:    cfg.Pricing,
		idProvider: idProvider,
		clock:      clock,
		logger:     logger,
		currency:   currency,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}, nil
}

// BusinessSelection is the business the order targets, as confirmed by the
// visitor from the places lookup.
type BusinessSelection struct {
	PlaceID   string   `json:"placeId"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Phone     *string  `json:"phone,omitempty"`
	Website   *string  `json:"website,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	GoogleURL *string  `json:"googleUrl,omitempty"`
}

// ContactForm carries the customer details from the order form.
type ContactForm struct {
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	CompanyName *string `json:"companyName,omitempty"`
	NIP         *string `json:"nip,omitempty"`
	Phone       string  `json:"phone"`
}

// OrderRequest is a validated-at-intake order submission.
type OrderRequest struct {
	Business       BusinessSelection
	Form           ContactForm
	ServiceType    string
	YearProtection bool
	ExpressService bool
	SessionID      string
	RequestInfo    tracking.RequestInfo
}

// CheckoutResult points the client at the hosted payment page.
type CheckoutResult struct {
	OrderID     string  `json:"orderId"`
	SessionID   string  `json:"sessionId"`
	CheckoutURL string  `json:"checkoutUrl"`
	TotalAmount float64 `json:"totalAmount"`
}

// CreateOrder prices the selection, creates the processor customer and hosted
// checkout session, and persists the pending order keyed by the session id.
// A payment-provider failure aborts the order; a failure of the internal
// order-row write after a successful session is logged and tolerated, the
// checkout still proceeds.
func (s *Service) CreateOrder(ctx context.Context, request OrderRequest) (CheckoutResult, error) {
	if err := validateOrderRequest(request); err != nil {
		return CheckoutResult{}, err
	}

	quote, err := s.pricing.Quote(ctx, request.ServiceType, request.YearProtection, request.ExpressService)
	if err != nil {
		return CheckoutResult{}, err
	}

	orderID, err := s.idProvider.NewID()
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("orders: issue order id: %w", err)
	}

	metadata := map[string]string{
		"order_id":        orderID,
		"service_type":    request.ServiceType,
		"year_protection": strconv.FormatBool(request.YearProtection),
		"express_service": strconv.FormatBool(request.ExpressService),
	}
	if request.Form.CompanyName != nil {
		metadata["company_name"] = *request.Form.CompanyName
	}
	if request.Form.NIP != nil {
		metadata["nip"] = *request.Form.NIP
	}

	customerID, err := s.payments.CreateCustomer(ctx, CustomerParams{
		Email:    request.Form.Email,
		Name:     request.Form.Name,
		Phone:    request.Form.Phone,
		Metadata: metadata,
	})
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("orders: create customer: %w", err)
	}

	lines := make([]CheckoutLine, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		lines = append(lines, CheckoutLine{
			Name:       line.Name,
			UnitAmount: minorUnits(line.Price),
			Quantity:   1,
		})
	}

	session, err := s.payments.CreateCheckoutSession(ctx, CheckoutParams{
		CustomerID: customerID,
		Currency:   s.currency,
		Lines:      lines,
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
		Metadata:   metadata,
	})
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("orders: create checkout session: %w", err)
	}

	order := Order{
		ID:                orderID,
		SessionID:         optional(request.SessionID),
		CustomerEmail:     request.Form.Email,
		CustomerName:      request.Form.Name,
		CompanyName:       request.Form.CompanyName,
		NIP:               request.Form.NIP,
		Phone:             request.Form.Phone,
		ServiceType:       request.ServiceType,
		YearProtection:    request.YearProtection,
		ExpressService:    request.ExpressService,
		TotalAmount:       quote.Total,
		Currency:          s.currency,
		PaymentStatus:     PaymentStatusPending,
		StripeSessionID:   session.ID,
		BusinessPlaceID:   request.Business.PlaceID,
		BusinessName:      request.Business.Name,
		BusinessAddress:   request.Business.Address,
		BusinessPhone:     request.Business.Phone,
		BusinessWebsite:   request.Business.Website,
		BusinessRating:    request.Business.Rating,
		BusinessGoogleURL: request.Business.GoogleURL,
		IPAddress:         request.RequestInfo.IPAddress,
		UserAgent:         request.RequestInfo.UserAgent,
		Referer:           request.RequestInfo.Referer,
		CreatedAt:         s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		// The checkout session already exists upstream; losing the local row
		// must not strand the customer mid-payment.
		s.logger.Error("order row write failed after checkout session creation",
			zap.String("order_id", orderID),
			zap.String("stripe_session_id", session.ID),
			zap.Error(err))
	}

	return CheckoutResult{
		OrderID:     orderID,
		SessionID:   session.ID,
		CheckoutURL: session.URL,
		TotalAmount: quote.Total,
	}, nil
}

// SelectionRequest is the payload of the explicit select-for-order call.
type SelectionRequest struct {
	Selected           bool
	Details            BusinessSelection
	BusinessStatus     *string
	RatingCount        *int
	Types              []string
	Geometry           json.RawMessage
	SearchQuery        *string
	Location           *string
	SearchResultsCount *int
	SessionID          string
	RequestInfo        tracking.RequestInfo
}

// RecordSelection persists one SearchedPlace row when the caller flags the
// business as selected for an order. Unflagged calls are a no-op: exploratory
// detail views are deliberately not logged.
func (s *Service) RecordSelection(ctx context.Context, request SelectionRequest) (bool, error) {
	if !request.Selected {
		return false, nil
	}
	if strings.TrimSpace(request.Details.PlaceID) == "" {
		return false, fmt.Errorf("%w: place id is required", ErrInvalidOrder)
	}

	var placeTypes datatypes.JSON
	if len(request.Types) > 0 {
		encoded, err := json.Marshal(request.Types)
		if err == nil {
			placeTypes = datatypes.JSON(encoded)
		}
	}
	var geometry datatypes.JSON
	if len(request.Geometry) > 0 {
		geometry = datatypes.JSON(request.Geometry)
	}

	row := SearchedPlace{
		SessionID:           optional(request.SessionID),
		SearchQuery:         request.SearchQuery,
		Location:            request.Location,
		PlaceID:             request.Details.PlaceID,
		PlaceName:           request.Details.Name,
		PlaceAddress:        request.Details.Address,
		PlacePhone:          request.Details.Phone,
		PlaceWebsite:        request.Details.Website,
		PlaceRating:         request.Details.Rating,
		PlaceRatingCount:    request.RatingCount,
		PlaceBusinessStatus: request.BusinessStatus,
		PlaceTypes:          placeTypes,
		PlaceGeometry:       geometry,
		SearchResultsCount:  request.SearchResultsCount,
		IPAddress:           request.RequestInfo.IPAddress,
		UserAgent:           request.RequestInfo.UserAgent,
		Referer:             request.RequestInfo.Referer,
		CreatedAt:           s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return false, err
	}
	return true, nil
}

// MarkCompleted transitions the order matching the checkout session id from
// pending to completed and records the payment intent. Re-delivery of the
// same webhook is harmless: the guarded update matches zero rows the second
// time. An unknown session id is a no-op, not an error.
func (s *Service) MarkCompleted(ctx context.Context, stripeSessionID, paymentIntentID string) (bool, error) {
	updates := map[string]interface{}{
		"payment_status": PaymentStatusCompleted,
		"updated_at":     s.clock().UTC(),
	}
	if paymentIntentID != "" {
		updates["payment_intent_id"] = paymentIntentID
	}
	result := s.db.WithContext(ctx).
		Model(&Order{}).
		Where("stripe_session_id = ? AND payment_status = ?", stripeSessionID, PaymentStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkFailedByEmail transitions every still-pending order for the customer
// email to failed and reports how many rows changed.
func (s *Service) MarkFailedByEmail(ctx context.Context, customerEmail string) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&Order{}).
		Where("customer_email = ? AND payment_status = ?", customerEmail, PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": PaymentStatusFailed,
			"updated_at":     s.clock().UTC(),
		})
	return result.RowsAffected, result.Error
}

// UpdateStatus is the admin override: a pending order may be forced to
// completed or failed. Terminal orders are immutable.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status PaymentStatus) error {
	if status != PaymentStatusCompleted && status != PaymentStatusFailed {
		return fmt.Errorf("%w: status %q", ErrInvalidOrder, status)
	}
	var order Order
	err := s.db.WithContext(ctx).Where("id = ?", orderID).Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if order.PaymentStatus != PaymentStatusPending {
		return ErrInvalidTransition
	}
	return s.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND payment_status = ?", orderID, PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": status,
			"updated_at":     s.clock().UTC(),
		}).Error
}

// OrderByStripeSession loads the order keyed by a checkout session id.
func (s *Service) OrderByStripeSession(ctx context.Context, stripeSessionID string) (Order, error) {
	var order Order
	err := s.db.WithContext(ctx).Where("stripe_session_id = ?", stripeSessionID).Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, ErrOrderNotFound
	}
	return order, err
}

// ListQuery bounds the admin listings by creation date, optional status, and
// offset pagination.
type ListQuery struct {
	From   time.Time
	To     time.Time
	Status PaymentStatus
	Limit  int
	Offset int
}

const defaultListLimit = 100

// ListOrders returns orders in the range, newest first, plus the total count.
func (s *Service) ListOrders(ctx context.Context, query ListQuery) ([]Order, int64, error) {
	scope := s.db.WithContext(ctx).Model(&Order{})
	scope = applyRange(scope, query)
	if query.Status != "" {
		scope = scope.Where("payment_status = ?", query.Status)
	}

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Order
	err := scope.Order("created_at DESC").
		Limit(listLimit(query.Limit)).
		Offset(query.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListSelections returns selected-business rows in the range, newest first,
// plus the total count.
func (s *Service) ListSelections(ctx context.Context, query ListQuery) ([]SearchedPlace, int64, error) {
	scope := s.db.WithContext(ctx).Model(&SearchedPlace{})
	scope = applyRange(scope, query)

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []SearchedPlace
	err := scope.Order("created_at DESC").
		Limit(listLimit(query.Limit)).
		Offset(query.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func applyRange(scope *gorm.DB, query ListQuery) *gorm.DB {
	if !query.From.IsZero() {
		scope = scope.Where("created_at >= ?", query.From)
	}
	if !query.To.IsZero() {
		scope = scope.Where("created_at <= ?", query.To)
	}
	return scope
}

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

func validateOrderRequest(request OrderRequest) error {
	switch {
	case strings.TrimSpace(request.Business.PlaceID) == "":
		return fmt.Errorf("%w: business place id is required", ErrInvalidOrder)
	case strings.TrimSpace(request.Business.Name) == "":
		return fmt.Errorf("%w: business name is required", ErrInvalidOrder)
	case strings.TrimSpace(request.Form.Name) == "":
		return fmt.Errorf("%w: customer name is required", ErrInvalidOrder)
	case strings.TrimSpace(request.Form.Phone) == "":
		return fmt.Errorf("%w: phone is required", ErrInvalidOrder)
	case strings.TrimSpace(request.ServiceType) == "":
		return fmt.Errorf("%w: service type is required", ErrInvalidOrder)
	}
	if _, err := mail.ParseAddress(request.Form.Email); err != nil {
		return fmt.Errorf("%w: invalid customer email", ErrInvalidOrder)
	}
	return nil
}

func minorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

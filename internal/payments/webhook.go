package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// Webhook event types the handler acts on. Everything else is acknowledged
// and ignored.
const (
	eventCheckoutCompleted    = "checkout.session.completed"
	eventInvoicePaymentFailed = "invoice.payment_failed"
)

var (
	// ErrInvalidSignature indicates the webhook signature header was absent or
	// failed verification; callers must reject the request with 400.
	ErrInvalidSignature = errors.New("payments: invalid webhook signature")

	errMissingWebhookSecret = errors.New("payments: webhook secret is required")
	errMissingOrders        = errors.New("payments: order transitions dependency is required")
)

// OrderTransitions is the slice of the order service the webhook drives.
type OrderTransitions interface {
	MarkCompleted(ctx context.Context, stripeSessionID, paymentIntentID string) (bool, error)
	MarkFailedByEmail(ctx context.Context, customerEmail string) (int64, error)
}

// InvoiceSender posts the customer invoice after a completed checkout.
// Implemented by StripeClient.
type InvoiceSender interface {
	SendPendingInvoice(ctx context.Context, invoiceID string) error
}

// WebhookHandlerConfig describes the webhook handler dependencies.
type WebhookHandlerConfig struct {
	Secret   string
	Orders   OrderTransitions
	Invoices InvoiceSender
	Logger   *zap.Logger
}

// WebhookHandler verifies and applies asynchronous payment-processor events.
type WebhookHandler struct {
	secret   string
	orders   OrderTransitions
	invoices InvoiceSender
	logger   *zap.Logger
}

// NewWebhookHandler validates the configuration and constructs the handler.
func NewWebhookHandler(cfg WebhookHandlerConfig) (*WebhookHandler, error) {
	if cfg.Secret == "" {
		return nil, errMissingWebhookSecret
	}
	if cfg.Orders == nil {
		return nil, errMissingOrders
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		secret:   cfg.Secret,
		orders:   cfg.Orders,
		invoices: cfg.Invoices,
		logger:   logger,
	}, nil
}

// Handle verifies the payload signature and applies the event. Forged or
// unsigned requests fail with ErrInvalidSignature. Once the signature
// verifies, checkout completion always succeeds from the processor's point of
// view: invoice-send failures are logged, never returned, so retries do not
// pile up upstream. The completion update is idempotent per checkout session.
func (h *WebhookHandler) Handle(ctx context.Context, payload []byte, signatureHeader string) error {
	if signatureHeader == "" {
		return ErrInvalidSignature
	}
	event, err := webhook.ConstructEvent(payload, signatureHeader, h.secret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch string(event.Type) {
	case eventCheckoutCompleted:
		return h.handleCheckoutCompleted(ctx, event)
	case eventInvoicePaymentFailed:
		return h.handleInvoicePaymentFailed(ctx, event)
	default:
		h.logger.Debug("webhook event ignored", zap.String("type", string(event.Type)))
		return nil
	}
}

func (h *WebhookHandler) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("payments: decode checkout session: %w", err)
	}

	paymentIntentID := ""
	if session.PaymentIntent != nil {
		paymentIntentID = session.PaymentIntent.ID
	}

	applied, err := h.orders.MarkCompleted(ctx, session.ID, paymentIntentID)
	if err != nil {
		return fmt.Errorf("payments: mark order completed: %w", err)
	}
	if !applied {
		// Unknown or already-terminal session: acknowledged no-op.
		h.logger.Info("checkout completion matched no pending order",
			zap.String("stripe_session_id", session.ID))
		return nil
	}

	h.logger.Info("order completed",
		zap.String("stripe_session_id", session.ID),
		zap.String("payment_intent_id", paymentIntentID))

	if h.invoices != nil && session.Invoice != nil {
		if err := h.invoices.SendPendingInvoice(ctx, session.Invoice.ID); err != nil {
			h.logger.Warn("invoice send failed after checkout completion",
				zap.String("invoice_id", session.Invoice.ID),
				zap.Error(err))
		}
	}
	return nil
}

func (h *WebhookHandler) handleInvoicePaymentFailed(ctx context.Context, event stripe.Event) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return fmt.Errorf("payments: decode invoice: %w", err)
	}
	if inv.CustomerEmail == "" {
		h.logger.Warn("invoice payment failure without customer email", zap.String("invoice_id", inv.ID))
		return nil
	}

	updated, err := h.orders.MarkFailedByEmail(ctx, inv.CustomerEmail)
	if err != nil {
		return fmt.Errorf("payments: mark orders failed: %w", err)
	}
	h.logger.Info("pending orders marked failed",
		zap.String("customer_email", inv.CustomerEmail),
		zap.Int64("orders_updated", updated))
	return nil
}

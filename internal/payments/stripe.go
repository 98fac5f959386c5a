package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/listingshield/backend/internal/orders"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

var errMissingSecretKey = errors.New("payments: stripe secret key is required")

// StripeClientConfig describes the Stripe-backed payment provider.
type StripeClientConfig struct {
	SecretKey string
	Logger    *zap.Logger
}

// StripeClient implements orders.PaymentProvider against the Stripe API and
// exposes the invoice send used by the webhook handler.
type StripeClient struct {
	api    *client.API
	logger *zap.Logger
}

// NewStripeClient validates the configuration and constructs the provider.
func NewStripeClient(cfg StripeClientConfig) (*StripeClient, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errMissingSecretKey
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeClient{api: api, logger: logger}, nil
}

// CreateCustomer creates the Stripe customer record tagged with order metadata.
func (c *StripeClient) CreateCustomer(ctx context.Context, params orders.CustomerParams) (string, error) {
	customerParams := &stripe.CustomerParams{
		Email: stripe.String(params.Email),
		Name:  stripe.String(params.Name),
	}
	if params.Phone != "" {
		customerParams.Phone = stripe.String(params.Phone)
	}
	customerParams.Context = ctx
	for key, value := range params.Metadata {
		customerParams.AddMetadata(key, value)
	}

	created, err := c.api.Customers.New(customerParams)
	if err != nil {
		return "", fmt.Errorf("payments: create customer: %w", err)
	}
	return created.ID, nil
}

// CreateCheckoutSession creates the hosted checkout session with one line item
// per priced selection, amounts in integer minor units.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, params orders.CheckoutParams) (orders.CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.Lines))
	for _, line := range params.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(params.Currency),
				UnitAmount: stripe.Int64(line.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(params.CustomerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		InvoiceCreation: &stripe.CheckoutSessionInvoiceCreationParams{
			Enabled: stripe.Bool(true),
		},
	}
	sessionParams.Context = ctx
	for key, value := range params.Metadata {
		sessionParams.AddMetadata(key, value)
	}

	created, err := c.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return orders.CheckoutSession{}, fmt.Errorf("payments: create checkout session: %w", err)
	}
	return orders.CheckoutSession{ID: created.ID, URL: created.URL}, nil
}

// SendPendingInvoice emails the invoice to the customer when it is still in
// draft or open state. Any other state is left alone.
func (c *StripeClient) SendPendingInvoice(ctx context.Context, invoiceID string) error {
	getParams := &stripe.InvoiceParams{}
	getParams.Context = ctx
	inv, err := c.api.Invoices.Get(invoiceID, getParams)
	if err != nil {
		return fmt.Errorf("payments: fetch invoice: %w", err)
	}
	if inv.Status != stripe.InvoiceStatusDraft && inv.Status != stripe.InvoiceStatusOpen {
		return nil
	}

	sendParams := &stripe.InvoiceSendInvoiceParams{}
	sendParams.Context = ctx
	if _, err := c.api.Invoices.SendInvoice(invoiceID, sendParams); err != nil {
		return fmt.Errorf("payments: send invoice: %w", err)
	}
	c.logger.Info("invoice sent", zap.String("invoice_id", invoiceID))
	return nil
}

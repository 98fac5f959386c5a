package orders

import "context"

// CustomerParams describes the customer record created at the payment
// processor before checkout.
type CustomerParams struct {
	Email    string
	Name     string
	Phone    string
	Metadata map[string]string
}

// CheckoutLine is one priced line item on the hosted checkout page.
// UnitAmount is in integer minor-currency units.
type CheckoutLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutParams describes the hosted checkout session to create.
type CheckoutParams struct {
	CustomerID string
	Currency   string
	Lines      []CheckoutLine
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is the processor's handle for a hosted payment page.
type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentProvider abstracts the external payment processor used at order
// intake. The webhook side lives in the payments package; intake only needs
// customer and checkout-session creation.
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, params CustomerParams) (string, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error)
}

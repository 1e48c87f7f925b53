// Package gateway talks to the external split-payment provider. The
// provider is reached through a narrow contract: order creation plus
// deterministic signature verification of payment confirmations.
package gateway

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the provider-side reference a participant pays against.
type Order struct {
	ID        string          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
}

// Gateway is the payment provider contract the split processor
// depends on. Signature verification is purely computational; only
// order creation suspends on the network.
type Gateway interface {
	// CreateOrder obtains an order reference for the given amount.
	// Failures surface as status.ErrExternalService; the core never
	// retries.
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (*Order, error)

	// VerifySignature recomputes the expected signature over
	// "orderID|paymentID" with the shared secret and compares it to
	// the supplied one in constant time.
	VerifySignature(orderID, paymentID, signature string) bool
}

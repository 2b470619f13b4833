// Package gateway abstracts the third-party payment provider. Only the
// operations this core needs are declared; issuing payments and querying
// them happen on other surfaces. Implementations must treat a nil error as
// a confirmed outcome, since reject/cancel transitions depend on it.
package gateway

import (
	"context"
	"log"
)

// PaymentGateway is the external payment provider as seen by the
// reservation lifecycle. CancelPayment must only return nil once the
// gateway has confirmed the cancellation/refund; the caller rolls back its
// whole transaction on error so a reservation is never terminal while its
// payment remains uncanceled.
type PaymentGateway interface {
	CancelPayment(ctx context.Context, paymentKey, reason string) error
}

// LogOnlyGateway confirms every cancellation after logging it. It stands in
// where no real provider client is wired (local runs, tests); deployments
// talking to the real gateway supply their own implementation.
type LogOnlyGateway struct{}

// NewLogOnlyGateway returns a LogOnlyGateway.
func NewLogOnlyGateway() *LogOnlyGateway { return &LogOnlyGateway{} }

// CancelPayment logs the request and reports success.
func (g *LogOnlyGateway) CancelPayment(ctx context.Context, paymentKey, reason string) error {
	log.Printf("gateway: cancel payment key=%s reason=%q", paymentKey, reason)
	return nil
}

// Package repository defines error types that are reused across multiple
// repositories and by the service layer. These sentinel values let the
// handlers distinguish failure scenarios without inspecting SQL errors:
// ErrNotFound becomes a 404, ErrNoAvailableStorage a 409, and so on.
package repository

import "errors"

// ErrNotFound is returned when a lookup yields no row, or the row belongs
// to a different store/customer than the caller. Handlers translate this
// into an HTTP 404 response without revealing which case occurred.
var ErrNotFound = errors.New("not found")

// ErrNoAvailableStorage is returned by the allocator when no free unit of
// the requested size class satisfies the overlap predicate. The reservation
// stays pending; the caller must wait, change the window, or reject.
// Handlers translate this into an HTTP 409 response.
var ErrNoAvailableStorage = errors.New("no available storage")

// ErrInvalidTransition is returned when a lifecycle transition is not in
// the allowed table, including any transition out of a terminal state.
// Handlers translate this into an HTTP 409 response.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrGatewayCancel is returned when the compensating gateway cancellation
// fails during reject/cancel. The surrounding transaction must be rolled
// back so the reservation is never terminal with an uncanceled payment.
var ErrGatewayCancel = errors.New("payment gateway cancellation failed")

// ErrPaymentNotFound is returned by the webhook reconciler when no payment
// row exists for the gateway order id. There is nothing to reconcile
// against, which is a reported error rather than a silent ack.
var ErrPaymentNotFound = errors.New("payment not found for order")

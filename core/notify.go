package core

import "context"

// Billing event types fanned out to the notification sink.
const (
	EventInvoiceCreated = "billing:invoice_created"
	EventInvoicePaid    = "billing:invoice_paid"
)

// NotificationService receives domain events for downstream fan-out
// (email, in-app feeds...). Calls are fire-and-forget: implementations must not
// block the caller and callers must never propagate a delivery failure.
type NotificationService interface {
	Notify(ctx context.Context, event string, payload interface{}) error
}

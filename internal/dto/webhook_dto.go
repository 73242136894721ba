package dto

// Substructures of Stripe event payloads. Only the fields this system consumes
// are decoded; everything else in event.data.object is ignored.

// CheckoutSession is the event.data.object of checkout.session.completed.
// Store, user and tier travel in the session metadata set at checkout time.
type CheckoutSession struct {
	ID           string            `json:"id"`
	Mode         string            `json:"mode"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

// SubscriptionObject is the event.data.object of customer.subscription.*
// events. Metadata may be absent when the subscription was created outside the
// normal checkout flow; handlers degrade to a status-only update in that case.
type SubscriptionObject struct {
	ID               string            `json:"id"`
	Customer         string            `json:"customer"`
	Status           string            `json:"status"`
	CurrentPeriodEnd int64             `json:"current_period_end"`
	Metadata         map[string]string `json:"metadata"`
}

// InvoiceObject is the event.data.object of invoice.payment_failed. The
// subscription id may be empty for one-off invoices; those are ignored.
type InvoiceObject struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
}

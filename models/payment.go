package models

import "time"

// Checkout payment statuses reported by the status endpoint
const (
	PaymentStatusPaid     = "paid"
	CheckoutStatusExpired = "expired"
)

// CheckoutSessionRequest is the body of POST /payments/checkout/session
type CheckoutSessionRequest struct {
	InterventionID string `json:"intervention_id"`
}

// CheckoutSession is the externally hosted checkout the browser is redirected to
type CheckoutSession struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// CheckoutStatus is returned by GET /payments/checkout/status/{id}
type CheckoutStatus struct {
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status"`
	AmountTotal   *int64 `json:"amount_total,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

// Receipt is the archived record of a paid checkout
type Receipt struct {
	SessionID     string    `json:"session_id"`
	PaymentStatus string    `json:"payment_status"`
	Status        string    `json:"status"`
	AmountTotal   *int64    `json:"amount_total,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	Attempts      int       `json:"attempts"`
	RecordedAt    time.Time `json:"recorded_at"`
}

package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/kendall-kelly/techsupport-client/models"
)

// PaymentResult is what the payment view shows once a check settles
type PaymentResult struct {
	SessionID  string                 `json:"session_id,omitempty"`
	State      PaymentState           `json:"state"`
	Attempts   int                    `json:"attempts"`
	Status     *models.CheckoutStatus `json:"status,omitempty"`
	ReceiptURL string                 `json:"receipt_url,omitempty"`
}

// PaymentChecker runs a fresh status poll for every payment view load
type PaymentChecker struct {
	fetcher  CheckoutStatusFetcher
	receipts ReceiptStore
	opts     []PaymentPollerOption
}

// NewPaymentChecker creates a checker. receipts may be nil to disable archiving.
func NewPaymentChecker(fetcher CheckoutStatusFetcher, receipts ReceiptStore, opts ...PaymentPollerOption) *PaymentChecker {
	return &PaymentChecker{fetcher: fetcher, receipts: receipts, opts: opts}
}

// Check polls sessionID from attempt zero. Without a session id nothing is called
// and the result stays in checking.
func (c *PaymentChecker) Check(ctx context.Context, sessionID string) PaymentResult {
	if sessionID == "" {
		return PaymentResult{State: PaymentChecking}
	}

	poller := NewPaymentPoller(c.fetcher, c.opts...)
	state := poller.Run(ctx, sessionID)

	result := PaymentResult{
		SessionID: sessionID,
		State:     state,
		Attempts:  poller.Attempts(),
		Status:    poller.LastStatus(),
	}

	if state == PaymentSuccess && c.receipts != nil {
		result.ReceiptURL = c.archive(ctx, result)
	}
	return result
}

// archive stores the receipt; failures are logged and never change the result state
func (c *PaymentChecker) archive(ctx context.Context, result PaymentResult) string {
	receipt := models.Receipt{
		SessionID:  result.SessionID,
		Attempts:   result.Attempts,
		RecordedAt: time.Now().UTC(),
	}
	if result.Status != nil {
		receipt.PaymentStatus = result.Status.PaymentStatus
		receipt.Status = result.Status.Status
		receipt.AmountTotal = result.Status.AmountTotal
		receipt.Currency = result.Status.Currency
	}

	key, err := c.receipts.SaveReceipt(ctx, receipt)
	if err != nil {
		slog.Error("failed to archive payment receipt", "session_id", result.SessionID, "error", err)
		return ""
	}

	receiptURL, err := c.receipts.GetReceiptURL(ctx, key)
	if err != nil {
		slog.Error("failed to sign receipt url", "key", key, "error", err)
		return ""
	}
	return receiptURL
}

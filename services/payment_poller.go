package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kendall-kelly/techsupport-client/models"
)

// PaymentState is the state of a payment status check
type PaymentState string

// Payment states. Every state but checking is terminal.
const (
	PaymentChecking PaymentState = "checking"
	PaymentSuccess  PaymentState = "success"
	PaymentExpired  PaymentState = "expired"
	PaymentTimeout  PaymentState = "timeout"
	PaymentError    PaymentState = "error"
)

// Defaults for the status poll schedule
const (
	DefaultPaymentPollDelay       = 2 * time.Second
	DefaultPaymentPollMaxAttempts = 5
)

// Terminal reports whether no further polling happens from this state
func (s PaymentState) Terminal() bool {
	return s != PaymentChecking
}

// CheckoutStatusFetcher reads the status of a checkout session
type CheckoutStatusFetcher interface {
	Status(ctx context.Context, sessionID string) (*models.CheckoutStatus, error)
}

// SleepFunc waits for d or until ctx ends
type SleepFunc func(ctx context.Context, d time.Duration) error

// PaymentPoller polls a checkout session until it reaches a terminal state
type PaymentPoller struct {
	fetcher     CheckoutStatusFetcher
	delay       time.Duration
	maxAttempts int
	sleep       SleepFunc

	mu       sync.RWMutex
	state    PaymentState
	attempts int
	last     *models.CheckoutStatus
}

// PaymentPollerOption configures a PaymentPoller
type PaymentPollerOption func(*PaymentPoller)

// WithPollDelay sets the fixed delay between attempts
func WithPollDelay(d time.Duration) PaymentPollerOption {
	return func(p *PaymentPoller) { p.delay = d }
}

// WithMaxAttempts sets how many status calls are made before settling on timeout
func WithMaxAttempts(n int) PaymentPollerOption {
	return func(p *PaymentPoller) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithSleep replaces the wait between attempts (tests use it to skip real time)
func WithSleep(sleep SleepFunc) PaymentPollerOption {
	return func(p *PaymentPoller) { p.sleep = sleep }
}

// NewPaymentPoller creates a poller in the checking state
func NewPaymentPoller(fetcher CheckoutStatusFetcher, opts ...PaymentPollerOption) *PaymentPoller {
	p := &PaymentPoller{
		fetcher:     fetcher,
		delay:       DefaultPaymentPollDelay,
		maxAttempts: DefaultPaymentPollMaxAttempts,
		sleep:       sleepContext,
		state:       PaymentChecking,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls sessionID until a terminal state is reached or ctx ends, and returns the state.
// paid -> success, expired -> expired, anything else is retried after the delay;
// after maxAttempts calls the poller settles on timeout. A failed call settles on error at once.
// When ctx ends the poller stops scheduling and stays in checking.
func (p *PaymentPoller) Run(ctx context.Context, sessionID string) PaymentState {
	for attempt := 1; ; attempt++ {
		status, err := p.fetcher.Status(ctx, sessionID)

		p.mu.Lock()
		p.attempts = attempt
		p.mu.Unlock()

		if err != nil {
			if ctx.Err() != nil {
				return p.State()
			}
			slog.Error("failed to check payment status", "session_id", sessionID, "attempt", attempt, "error", err)
			return p.settle(PaymentError, nil)
		}

		switch {
		case status.PaymentStatus == models.PaymentStatusPaid:
			return p.settle(PaymentSuccess, status)
		case status.Status == models.CheckoutStatusExpired:
			return p.settle(PaymentExpired, status)
		case attempt >= p.maxAttempts:
			return p.settle(PaymentTimeout, status)
		}

		p.mu.Lock()
		p.last = status
		p.mu.Unlock()

		if err := p.sleep(ctx, p.delay); err != nil {
			return p.State()
		}
	}
}

func (p *PaymentPoller) settle(state PaymentState, status *models.CheckoutStatus) PaymentState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
	if status != nil {
		p.last = status
	}
	return state
}

// State returns the current state
func (p *PaymentPoller) State() PaymentState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Attempts returns how many status calls were made
func (p *PaymentPoller) Attempts() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.attempts
}

// LastStatus returns the last status received, nil before the first answer
func (p *PaymentPoller) LastStatus() *models.CheckoutStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/kendall-kelly/techsupport-client/models"
)

// ErrMissingCheckoutURL is returned when the API creates a session without a redirect URL
var ErrMissingCheckoutURL = errors.New("checkout session has no url")

// CheckoutService starts hosted checkouts and reads their status
type CheckoutService struct {
	api *APIClient
}

// NewCheckoutService creates a new checkout service instance
func NewCheckoutService(api *APIClient) *CheckoutService {
	return &CheckoutService{api: api}
}

// CreateSession requests a checkout for an intervention. originURL is the base the
// checkout redirects back to (<origin>/payment-success?session_id=...).
func (s *CheckoutService) CreateSession(ctx context.Context, interventionID, originURL string) (*models.CheckoutSession, error) {
	query := url.Values{"origin_url": []string{originURL}}
	body := models.CheckoutSessionRequest{InterventionID: interventionID}

	var session models.CheckoutSession
	if err := s.api.Post(ctx, "/payments/checkout/session", query, body, &session); err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	if session.URL == "" {
		return nil, ErrMissingCheckoutURL
	}
	return &session, nil
}

// Status returns the current state of a checkout session
func (s *CheckoutService) Status(ctx context.Context, sessionID string) (*models.CheckoutStatus, error) {
	var status models.CheckoutStatus
	if err := s.api.Get(ctx, "/payments/checkout/status/"+url.PathEscape(sessionID), nil, &status); err != nil {
		return nil, fmt.Errorf("failed to fetch checkout status: %w", err)
	}
	return &status, nil
}

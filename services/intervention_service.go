package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/kendall-kelly/techsupport-client/models"
)

// InterventionService wraps the intervention and technician endpoints
type InterventionService struct {
	api *APIClient
}

// NewInterventionService creates a new intervention service instance
func NewInterventionService(api *APIClient) *InterventionService {
	return &InterventionService{api: api}
}

// List returns every intervention visible to the current account
func (s *InterventionService) List(ctx context.Context) ([]models.Intervention, error) {
	var interventions []models.Intervention
	if err := s.api.Get(ctx, "/interventions", nil, &interventions); err != nil {
		return nil, fmt.Errorf("failed to list interventions: %w", err)
	}
	if interventions == nil {
		interventions = []models.Intervention{}
	}
	return interventions, nil
}

// Create submits a new intervention request
func (s *InterventionService) Create(ctx context.Context, form models.InterventionForm) (*models.Intervention, error) {
	var created models.Intervention
	if err := s.api.Post(ctx, "/interventions", nil, form.Payload(), &created); err != nil {
		return nil, fmt.Errorf("failed to create intervention: %w", err)
	}
	return &created, nil
}

// Assign accepts a pending intervention for the current technician
func (s *InterventionService) Assign(ctx context.Context, id string) error {
	if err := s.api.Put(ctx, interventionPath(id, "assign"), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to assign intervention %s: %w", id, err)
	}
	return nil
}

// UpdateStatus moves an intervention to a new status, optionally with a final price.
// The values travel both as query parameters and as a JSON body so either server reading works.
func (s *InterventionService) UpdateStatus(ctx context.Context, id, status string, finalPrice *float64) error {
	query := url.Values{"new_status": []string{status}}
	if finalPrice != nil {
		query.Set("final_price", strconv.FormatFloat(*finalPrice, 'f', -1, 64))
	}
	body := models.StatusUpdate{NewStatus: status, FinalPrice: finalPrice}

	if err := s.api.Put(ctx, interventionPath(id, "status"), query, body, nil); err != nil {
		return fmt.Errorf("failed to set intervention %s to %s: %w", id, status, err)
	}
	return nil
}

// SetAvailability updates the current technician's availability flag
func (s *InterventionService) SetAvailability(ctx context.Context, available bool) error {
	value := strconv.FormatBool(available)
	query := url.Values{"available": []string{value}}
	body := map[string]bool{"available": available}

	if err := s.api.Put(ctx, "/technicians/availability", query, body, nil); err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}
	return nil
}

func interventionPath(id, action string) string {
	return "/interventions/" + url.PathEscape(id) + "/" + action
}

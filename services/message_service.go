package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/kendall-kelly/techsupport-client/models"
)

// MessageService reads and writes the conversation attached to an intervention
type MessageService struct {
	api *APIClient
}

// NewMessageService creates a new message service instance
func NewMessageService(api *APIClient) *MessageService {
	return &MessageService{api: api}
}

// List returns the conversation of an intervention, oldest first
func (s *MessageService) List(ctx context.Context, interventionID string) ([]models.Message, error) {
	var messages []models.Message
	if err := s.api.Get(ctx, "/messages/"+url.PathEscape(interventionID), nil, &messages); err != nil {
		slog.Error("failed to fetch messages", "intervention_id", interventionID, "error", err)
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// Send posts a message on an intervention
func (s *MessageService) Send(ctx context.Context, interventionID, content string) (*models.Message, error) {
	req := models.SendMessageRequest{InterventionID: interventionID, Content: content}
	var message models.Message
	if err := s.api.Post(ctx, "/messages", nil, req, &message); err != nil {
		slog.Error("failed to send message", "intervention_id", interventionID, "error", err)
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return &message, nil
}

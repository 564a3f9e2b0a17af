package models

// Message represents a message in an intervention conversation
type Message struct {
	ID             string `json:"id"`
	InterventionID string `json:"intervention_id"`
	SenderID       string `json:"sender_id"`
	SenderType     string `json:"sender_type"` // user, technician
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
}

// SendMessageRequest is the body of POST /messages
type SendMessageRequest struct {
	InterventionID string `json:"intervention_id"`
	Content        string `json:"content" validate:"required"`
}

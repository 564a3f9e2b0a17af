package models

// Notification is a server-side message; only unread ones are mirrored by the client
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type,omitempty"` // info, success, warning, error
	CreatedAt string `json:"created_at"`
}

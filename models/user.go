package models

// User types known to the marketplace
const (
	UserTypeUser       = "user"
	UserTypeTechnician = "technician"
	UserTypeAdmin      = "admin"
)

// User represents an account on the marketplace (customer, technician or admin).
// The authoritative copy lives server-side; the client only mirrors it.
type User struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone"`
	UserType           string   `json:"user_type"`                    // "user", "technician" or "admin"
	Address            *string  `json:"address,omitempty"`            // nullable
	Latitude           *float64 `json:"latitude,omitempty"`           // nullable
	Longitude          *float64 `json:"longitude,omitempty"`          // nullable
	Skills             []string `json:"skills,omitempty"`             // technician only
	HourlyRate         *float64 `json:"hourly_rate,omitempty"`        // technician only
	Available          *bool    `json:"available,omitempty"`          // technician only
	Rating             *float64 `json:"rating,omitempty"`             // computed server-side
	TotalInterventions *int     `json:"total_interventions,omitempty"` // computed server-side
	CreatedAt          string   `json:"created_at,omitempty"`
}

// IsCustomer reports whether the account files interventions
func (u User) IsCustomer() bool {
	return u.UserType == UserTypeUser
}

// IsAvailable returns the technician availability flag, false when unset
func (u User) IsAvailable() bool {
	return u.Available != nil && *u.Available
}

// RoleLabel returns the label shown next to the user's name in the header
func (u User) RoleLabel() string {
	switch u.UserType {
	case UserTypeUser:
		return "Client"
	case UserTypeTechnician:
		return "Technicien"
	default:
		return "Administrateur"
	}
}

package models

// Intervention types
const (
	InterventionTypeComputer = "computer"
	InterventionTypePhone    = "phone"
)

// Service types
const (
	ServiceTypeRemote = "remote"
	ServiceTypeOnsite = "onsite"
)

// Urgency levels
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Intervention statuses
const (
	StatusPending    = "pending"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Intervention represents a repair request tracked through its status lifecycle
type Intervention struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	TechnicianID     *string  `json:"technician_id"` // nullable, set when a technician accepts
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	InterventionType string   `json:"intervention_type"` // computer, phone
	ServiceType      string   `json:"service_type"`      // remote, onsite
	Urgency          string   `json:"urgency"`           // low, medium, high
	BudgetMin        float64  `json:"budget_min"`
	BudgetMax        float64  `json:"budget_max"`
	FinalPrice       *float64 `json:"final_price"` // nullable, proposed by the technician
	Status           string   `json:"status"`      // pending, assigned, in_progress, completed, cancelled
	UserAddress      *string  `json:"user_address,omitempty"`
	UserLatitude     *float64 `json:"user_latitude,omitempty"`
	UserLongitude    *float64 `json:"user_longitude,omitempty"`
	CreatedAt        string   `json:"created_at"`
}

// CanPay reports whether the payment action is offered for this intervention
func (i Intervention) CanPay() bool {
	return i.Status == StatusAssigned && i.FinalPrice != nil
}

// AssignedTo reports whether the intervention belongs to the given technician
func (i Intervention) AssignedTo(technicianID string) bool {
	return i.TechnicianID != nil && *i.TechnicianID == technicianID
}

// HasLocation reports whether the intervention carries coordinates
func (i Intervention) HasLocation() bool {
	return i.UserLatitude != nil && i.UserLongitude != nil
}

// InterventionForm is the create form of the user dashboard and the body of POST /interventions
type InterventionForm struct {
	Title            string   `json:"title" validate:"required"`
	Description      string   `json:"description"`
	InterventionType string   `json:"intervention_type" validate:"oneof=computer phone"`
	ServiceType      string   `json:"service_type" validate:"oneof=remote onsite"`
	Urgency          string   `json:"urgency" validate:"oneof=low medium high"`
	BudgetMin        *float64 `json:"budget_min" validate:"required,min=0"`
	BudgetMax        *float64 `json:"budget_max" validate:"required,min=0"`
	UserAddress      string   `json:"user_address,omitempty" validate:"required_if=ServiceType onsite"`
}

// NewInterventionForm returns an empty form with its defaults selected
func NewInterventionForm() InterventionForm {
	return InterventionForm{
		InterventionType: InterventionTypeComputer,
		ServiceType:      ServiceTypeRemote,
		Urgency:          UrgencyMedium,
	}
}

// Payload returns the form as submitted: the address field only exists for on-site service
func (f InterventionForm) Payload() InterventionForm {
	if f.ServiceType != ServiceTypeOnsite {
		f.UserAddress = ""
	}
	return f
}

// StatusUpdate is sent to PUT /interventions/{id}/status
type StatusUpdate struct {
	NewStatus  string   `json:"new_status"`
	FinalPrice *float64 `json:"final_price,omitempty"`
}

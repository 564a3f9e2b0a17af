package models

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required"`
	Name       string   `json:"name" validate:"required"`
	Phone      string   `json:"phone" validate:"required"`
	UserType   string   `json:"user_type" validate:"oneof=user technician"`
	Address    string   `json:"address,omitempty"`
	Skills     []string `json:"skills"`
	HourlyRate *float64 `json:"hourly_rate,omitempty" validate:"omitempty,min=0"`
}

// NewRegisterRequest returns the registration form with its defaults
func NewRegisterRequest() RegisterRequest {
	return RegisterRequest{
		UserType: UserTypeUser,
		Skills:   []string{},
	}
}

// Normalize drops technician-only fields from customer registrations
func (r RegisterRequest) Normalize() RegisterRequest {
	if r.UserType != UserTypeTechnician {
		r.HourlyRate = nil
	}
	if r.Skills == nil {
		r.Skills = []string{}
	}
	return r
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

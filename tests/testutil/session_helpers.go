package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/techsupport-client/models"
)

// SetMockSessionContext puts a resolved session user into the Gin context,
// as RequireSession does for a logged-in user
func SetMockSessionContext(c *gin.Context, user *models.User) {
	c.Set("user", user)
	c.Set("user_id", user.ID)
}

// CreateTestContext creates a test Gin context serving method path into w
func CreateTestContext(w http.ResponseWriter, method, path string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c
}

// Customer returns a customer account for tests
func Customer(id string) models.User {
	return models.User{
		ID:       id,
		Name:     "Customer " + id,
		Email:    id + "@example.com",
		Phone:    "0600000000",
		UserType: models.UserTypeUser,
	}
}

// Technician returns a technician account for tests
func Technician(id string, available bool) models.User {
	rate := 45.0
	return models.User{
		ID:         id,
		Name:       "Technician " + id,
		Email:      id + "@example.com",
		Phone:      "0611111111",
		UserType:   models.UserTypeTechnician,
		Skills:     []string{"computer", "phone"},
		HourlyRate: &rate,
		Available:  &available,
	}
}

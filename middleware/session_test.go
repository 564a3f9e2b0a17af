package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/techsupport-client/models"
	"github.com/kendall-kelly/techsupport-client/tests/testutil"
)

type stubSession struct {
	user    *models.User
	loading bool
}

func (s stubSession) User() *models.User { return s.user }
func (s stubSession) Loading() bool      { return s.loading }

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		session        stubSession
		wantStatusCode int
		wantAborted    bool
	}{
		{
			name:        "user resolved",
			session:     stubSession{user: &models.User{ID: "u1", UserType: models.UserTypeUser}},
			wantAborted: false,
		},
		{
			name:           "no user",
			session:        stubSession{},
			wantStatusCode: http.StatusUnauthorized,
			wantAborted:    true,
		},
		{
			name:           "still loading",
			session:        stubSession{loading: true},
			wantStatusCode: http.StatusServiceUnavailable,
			wantAborted:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

			RequireSession(tt.session)(c)

			if tt.wantAborted {
				assert.True(t, c.IsAborted())
				assert.Equal(t, tt.wantStatusCode, w.Code)
				return
			}
			assert.False(t, c.IsAborted())
			user, err := GetUser(c)
			require.Nil(t, err)
			assert.Equal(t, "u1", user.ID)
			id, idErr := GetUserID(c)
			require.NoError(t, idErr)
			assert.Equal(t, "u1", id)
		})
	}
}

func TestRequireUserType(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		setupFunc      func(*gin.Context)
		allowed        []string
		wantStatusCode int
		wantAborted    bool
	}{
		{
			name: "allowed type",
			setupFunc: func(c *gin.Context) {
				c.Set("user", &models.User{ID: "t1", UserType: models.UserTypeTechnician})
			},
			allowed:     []string{models.UserTypeTechnician, models.UserTypeAdmin},
			wantAborted: false,
		},
		{
			name: "wrong type",
			setupFunc: func(c *gin.Context) {
				c.Set("user", &models.User{ID: "u1", UserType: models.UserTypeUser})
			},
			allowed:        []string{models.UserTypeTechnician},
			wantStatusCode: http.StatusForbidden,
			wantAborted:    true,
		},
		{
			name:           "user not in context",
			setupFunc:      func(c *gin.Context) {},
			allowed:        []string{models.UserTypeUser},
			wantStatusCode: http.StatusUnauthorized,
			wantAborted:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
			tt.setupFunc(c)

			RequireUserType(tt.allowed...)(c)

			assert.Equal(t, tt.wantAborted, c.IsAborted())
			if tt.wantAborted {
				assert.Equal(t, tt.wantStatusCode, w.Code)
			}
		})
	}
}

func TestGetUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantCode  string
	}{
		{
			name:      "user not found in context",
			setupFunc: func(c *gin.Context) {},
			wantCode:  "MISSING_USER",
		},
		{
			name: "user is not a user",
			setupFunc: func(c *gin.Context) {
				c.Set("user", "someone")
			},
			wantCode: "INVALID_USER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			tt.setupFunc(c)

			user, err := GetUser(c)

			assert.Nil(t, user)
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}

func TestGetUserFromSession(t *testing.T) {
	w := httptest.NewRecorder()
	c := testutil.CreateTestContext(w, http.MethodGet, "/interventions")
	technician := testutil.Technician("t1", true)
	testutil.SetMockSessionContext(c, &technician)

	user, authErr := GetUser(c)
	require.Nil(t, authErr)
	assert.Equal(t, "t1", user.ID)

	userID, err := GetUserID(c)
	require.NoError(t, err)
	assert.Equal(t, "t1", userID)
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantID    string
		wantErr   bool
	}{
		{
			name: "successfully extracts user ID",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", "u-123456")
			},
			wantID:  "u-123456",
			wantErr: false,
		},
		{
			name:      "user ID not found in context",
			setupFunc: func(c *gin.Context) {},
			wantErr:   true,
		},
		{
			name: "user ID is not a string",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", 12345)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			tt.setupFunc(c)

			gotID, err := GetUserID(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, gotID)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, gotID)
			}
		})
	}
}

func TestAuthError(t *testing.T) {
	err := &AuthError{
		Code:    "TEST_ERROR",
		Message: "This is a test error",
	}

	assert.Equal(t, "This is a test error", err.Error())
}

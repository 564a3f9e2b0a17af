package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/techsupport-client/models"
)

// SessionReader is the part of the session store the middleware needs
type SessionReader interface {
	User() *models.User
	Loading() bool
}

// RequireSession aborts with 401 unless a user is resolved, and stores the user in the Gin context.
// The token itself is opaque; the server decides whether it is valid.
func RequireSession(session SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.Loading() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SESSION_LOADING",
					"message": "Session is still being restored",
				},
			})
			c.Abort()
			return
		}

		user := session.User()
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_AUTHENTICATED",
					"message": "Login required",
				},
			})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// RequireUserType is a middleware that checks the session user has one of the given types.
// It must run after RequireSession.
func RequireUserType(userTypes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUser(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    err.Code,
					"message": err.Message,
				},
			})
			c.Abort()
			return
		}

		for _, t := range userTypes {
			if user.UserType == t {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "This action is not available for your account type",
			},
		})
		c.Abort()
	}
}

// GetUser extracts the session user from the Gin context
func GetUser(c *gin.Context) (*models.User, *AuthError) {
	value, exists := c.Get("user")
	if !exists {
		return nil, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, &AuthError{Code: "INVALID_USER", Message: "User is not in the expected format"}
	}

	return user, nil
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

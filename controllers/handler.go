package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/techsupport-client/services"
	"github.com/kendall-kelly/techsupport-client/utils"
)

// Handler serves the local shell. Every field is shared with the rest of the process.
type Handler struct {
	Session    *services.SessionStore
	Dashboards *services.Dashboards
	Messages   *services.MessageService
	Payments   *services.PaymentChecker
	Maps       *services.ScriptLoader
}

// NewHandler creates a new handler instance
func NewHandler(session *services.SessionStore, dashboards *services.Dashboards, messages *services.MessageService, payments *services.PaymentChecker, maps *services.ScriptLoader) *Handler {
	return &Handler{
		Session:    session,
		Dashboards: dashboards,
		Messages:   messages,
		Payments:   payments,
		Maps:       maps,
	}
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondFailure maps a service error onto the shell's error envelope
func respondFailure(c *gin.Context, err error, fallback string) {
	var validationErr *utils.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    validationErr.Code,
				"message": validationErr.Message,
				"fields":  validationErr.Fields,
			},
		})
		return
	}

	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		status := http.StatusBadGateway
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = apiErr.StatusCode
		}
		respondError(c, status, "API_ERROR", services.ErrorDetail(err, fallback))
		return
	}

	respondError(c, http.StatusBadGateway, "API_UNREACHABLE", fallback)
}

func bindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

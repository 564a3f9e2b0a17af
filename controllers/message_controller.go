package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/techsupport-client/models"
	"github.com/kendall-kelly/techsupport-client/utils"
)

// ListMessages handles GET /interventions/:id/messages
func (h *Handler) ListMessages(c *gin.Context) {
	messages, err := h.Messages.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondFailure(c, err, "Failed to retrieve messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    messages,
		"count":   len(messages),
	})
}

// SendMessage handles POST /interventions/:id/messages
func (h *Handler) SendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	req.InterventionID = c.Param("id")
	if err := utils.ValidateForm(req); err != nil {
		respondFailure(c, err, "")
		return
	}

	message, err := h.Messages.Send(c.Request.Context(), req.InterventionID, req.Content)
	if err != nil {
		respondFailure(c, err, "Failed to send message")
		return
	}

	respondData(c, http.StatusCreated, message)
}

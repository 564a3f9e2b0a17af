package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListNotifications handles GET /notifications - the unread set from the last poll
func (h *Handler) ListNotifications(c *gin.Context) {
	notifications := h.Session.Notifications()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
		"count":   len(notifications),
	})
}

// MarkNotificationRead handles PUT /notifications/:id/read
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.Session.MarkNotificationRead(c.Request.Context(), c.Param("id")); err != nil {
		respondFailure(c, err, "Failed to mark notification as read")
		return
	}
	respondData(c, http.StatusOK, h.Session.Notifications())
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/techsupport-client/models"
	"github.com/kendall-kelly/techsupport-client/utils"
)

// GetSession handles GET /session - returns the current user and loading flag
func (h *Handler) GetSession(c *gin.Context) {
	user := h.Session.User()
	data := gin.H{
		"loading":       h.Session.Loading(),
		"authenticated": user != nil,
		"user":          user,
	}
	if user != nil {
		data["role_label"] = user.RoleLabel()
		data["notifications"] = h.Session.Notifications()
	}
	respondData(c, http.StatusOK, data)
}

// Login handles POST /session/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	if err := utils.ValidateForm(req); err != nil {
		respondFailure(c, err, "")
		return
	}

	result := h.Session.Login(c.Request.Context(), req.Email, req.Password)
	if !result.Success {
		respondError(c, http.StatusUnauthorized, "LOGIN_FAILED", result.Message)
		return
	}

	respondData(c, http.StatusOK, h.Session.User())
}

// Register handles POST /session/register
func (h *Handler) Register(c *gin.Context) {
	req := models.NewRegisterRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	if req.UserType == "" {
		req.UserType = models.UserTypeUser
	}
	if err := utils.ValidateForm(req); err != nil {
		respondFailure(c, err, "")
		return
	}

	result := h.Session.Register(c.Request.Context(), req)
	if !result.Success {
		respondError(c, http.StatusBadRequest, "REGISTRATION_FAILED", result.Message)
		return
	}

	respondData(c, http.StatusCreated, h.Session.User())
}

// Logout handles POST /session/logout. It never reaches the server.
func (h *Handler) Logout(c *gin.Context) {
	h.Session.Logout()
	h.Dashboards.Reset()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/techsupport-client/middleware"
	"github.com/kendall-kelly/techsupport-client/models"
	"github.com/kendall-kelly/techsupport-client/services"
)

// ProposePriceRequest is the body of PUT /interventions/:id/price
type ProposePriceRequest struct {
	FinalPrice *float64 `json:"final_price" binding:"omitempty,gte=0"`
}

// ListInterventions handles GET /interventions - refetches and returns the dashboard list
func (h *Handler) ListInterventions(c *gin.Context) {
	user, authErr := middleware.GetUser(c)
	if authErr != nil {
		respondError(c, http.StatusUnauthorized, authErr.Code, authErr.Message)
		return
	}

	ctx := c.Request.Context()
	if user.IsCustomer() {
		dashboard := h.Dashboards.ForUser(*user)
		if err := dashboard.FetchInterventions(ctx); err != nil {
			respondFailure(c, err, "Failed to retrieve interventions")
			return
		}
		interventions := dashboard.Interventions()
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    interventions,
			"count":   len(interventions),
		})
		return
	}

	dashboard := h.Dashboards.ForTechnician(*user)
	if err := dashboard.FetchInterventions(ctx); err != nil {
		respondFailure(c, err, "Failed to retrieve interventions")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"available": dashboard.AvailableInterventions(),
			"mine":      dashboard.MyInterventions(),
		},
	})
}

// CreateIntervention handles POST /interventions (customers only)
func (h *Handler) CreateIntervention(c *gin.Context) {
	dashboard, ok := h.userDashboard(c)
	if !ok {
		return
	}

	form := models.NewInterventionForm()
	if err := c.ShouldBindJSON(&form); err != nil {
		bindingError(c, err)
		return
	}

	created, err := dashboard.CreateIntervention(c.Request.Context(), form)
	if err != nil {
		respondFailure(c, err, "Failed to create intervention")
		return
	}

	respondData(c, http.StatusCreated, created)
}

// PayIntervention handles POST /interventions/:id/pay - redirects to the hosted checkout
func (h *Handler) PayIntervention(c *gin.Context) {
	dashboard, ok := h.userDashboard(c)
	if !ok {
		return
	}

	checkoutURL, err := dashboard.HandlePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondFailure(c, err, "Failed to start checkout")
		return
	}

	c.Redirect(http.StatusSeeOther, checkoutURL)
}

// AssignIntervention handles PUT /interventions/:id/assign (technicians)
func (h *Handler) AssignIntervention(c *gin.Context) {
	h.technicianAction(c, func(d *services.TechnicianDashboard) error {
		return d.Accept(c.Request.Context(), c.Param("id"))
	})
}

// ProposePrice handles PUT /interventions/:id/price (technicians)
func (h *Handler) ProposePrice(c *gin.Context) {
	var req ProposePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	h.technicianAction(c, func(d *services.TechnicianDashboard) error {
		return d.ProposePrice(c.Request.Context(), c.Param("id"), req.FinalPrice)
	})
}

// StartIntervention handles PUT /interventions/:id/start (technicians)
func (h *Handler) StartIntervention(c *gin.Context) {
	h.technicianAction(c, func(d *services.TechnicianDashboard) error {
		return d.StartWork(c.Request.Context(), c.Param("id"))
	})
}

// CompleteIntervention handles PUT /interventions/:id/complete (technicians)
func (h *Handler) CompleteIntervention(c *gin.Context) {
	h.technicianAction(c, func(d *services.TechnicianDashboard) error {
		return d.Complete(c.Request.Context(), c.Param("id"))
	})
}

// ToggleAvailability handles PUT /technicians/availability
func (h *Handler) ToggleAvailability(c *gin.Context) {
	dashboard, ok := h.technicianDashboard(c)
	if !ok {
		return
	}

	if err := dashboard.ToggleAvailability(c.Request.Context()); err != nil {
		respondFailure(c, err, "Failed to update availability")
		return
	}

	respondData(c, http.StatusOK, gin.H{"available": dashboard.Available()})
}

func (h *Handler) technicianAction(c *gin.Context, action func(*services.TechnicianDashboard) error) {
	dashboard, ok := h.technicianDashboard(c)
	if !ok {
		return
	}

	if err := action(dashboard); err != nil {
		respondFailure(c, err, "Intervention update failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"available": dashboard.AvailableInterventions(),
			"mine":      dashboard.MyInterventions(),
		},
	})
}

func (h *Handler) userDashboard(c *gin.Context) (*services.UserDashboard, bool) {
	user, authErr := middleware.GetUser(c)
	if authErr != nil {
		respondError(c, http.StatusUnauthorized, authErr.Code, authErr.Message)
		return nil, false
	}
	return h.Dashboards.ForUser(*user), true
}

func (h *Handler) technicianDashboard(c *gin.Context) (*services.TechnicianDashboard, bool) {
	user, authErr := middleware.GetUser(c)
	if authErr != nil {
		respondError(c, http.StatusUnauthorized, authErr.Code, authErr.Message)
		return nil, false
	}
	return h.Dashboards.ForTechnician(*user), true
}

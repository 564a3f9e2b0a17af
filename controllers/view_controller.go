package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/techsupport-client/models"
	"github.com/kendall-kelly/techsupport-client/services"
	"github.com/kendall-kelly/techsupport-client/views"
)

// DefaultMapCenter is used when no intervention carries coordinates (Paris)
var DefaultMapCenter = services.LatLng{Lat: 48.8566, Lng: 2.3522}

// ShowView handles GET / and any path of the route table.
// It resolves the view for the current session and returns its state.
func (h *Handler) ShowView(c *gin.Context) {
	user := h.Session.User()
	view := views.Resolve(c.Request.URL.Path, user, h.Session.Loading())

	data := gin.H{"view": view}
	ctx := c.Request.Context()

	switch view {
	case views.ViewPayment:
		data["payment"] = h.Payments.Check(ctx, c.Query("session_id"))
	case views.ViewUserDashboard:
		dashboard := h.Dashboards.ForUser(*user)
		_ = dashboard.Mount(ctx)
		markers := dashboard.Markers()
		data["user"] = user
		data["interventions"] = dashboard.Interventions()
		data["form_open"] = dashboard.FormOpen()
		data["form"] = dashboard.Form()
		data["map"] = h.renderMap(c, "user-map", markers)
	case views.ViewTechnicianDashboard:
		dashboard := h.Dashboards.ForTechnician(*user)
		_ = dashboard.Mount(ctx)
		data["user"] = user
		data["available"] = dashboard.Available()
		data["available_interventions"] = dashboard.AvailableInterventions()
		data["my_interventions"] = dashboard.MyInterventions()
		data["map"] = h.renderMap(c, "technician-map", dashboard.Markers())
	}

	if user != nil {
		data["role_label"] = roleLabel(user)
		data["notifications"] = h.Session.Notifications()
	}

	respondData(c, http.StatusOK, data)
}

// mapView is the serialised state of a map
type mapView struct {
	Container string            `json:"container"`
	Rendered  bool              `json:"rendered"`
	Center    services.LatLng   `json:"center"`
	Zoom      int               `json:"zoom"`
	Markers   []services.Marker `json:"markers"`
}

func (h *Handler) renderMap(c *gin.Context, container string, markers []services.Marker) mapView {
	center := DefaultMapCenter
	if len(markers) > 0 {
		center = markers[0].Position
	}

	m := services.NewMap(c.Request.Context(), h.Maps, container, center)
	m.SetMarkers(markers, nil)

	return mapView{
		Container: m.Container(),
		Rendered:  m.Rendered(),
		Center:    m.Center(),
		Zoom:      m.Zoom(),
		Markers:   m.Markers(),
	}
}

// roleLabel is used by the header of every dashboard view
func roleLabel(user *models.User) string {
	if user == nil {
		return ""
	}
	return user.RoleLabel()
}

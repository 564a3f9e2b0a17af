package views

import (
	"strings"

	"github.com/kendall-kelly/techsupport-client/models"
)

// View is a top-level screen of the client
type View string

// Views the router can resolve to
const (
	ViewLoading             View = "loading"
	ViewAuth                View = "auth"
	ViewPayment             View = "payment"
	ViewUserDashboard       View = "user_dashboard"
	ViewTechnicianDashboard View = "technician_dashboard"
)

// RouteName identifies an entry of the route table
type RouteName string

// Route names
const (
	RouteDashboard RouteName = "dashboard"
	RoutePayment   RouteName = "payment"
)

// Route is one entry of the route table
type Route struct {
	Name  RouteName
	Path  string
	Query []string // query parameters the view reads
}

// Routes is the full route table. Paths not listed resolve to the dashboard route.
var Routes = []Route{
	{Name: RouteDashboard, Path: "/"},
	{Name: RoutePayment, Path: "/payment-success", Query: []string{"session_id"}},
}

// Match returns the route for path, falling back to the dashboard route
func Match(path string) Route {
	path = normalize(path)
	for _, r := range Routes {
		if r.Path == path {
			return r
		}
	}
	return Routes[0]
}

// Resolve picks the view for path given the session state.
// While the session is loading nothing else is decided; without a user only the
// auth view is reachable.
func Resolve(path string, user *models.User, loading bool) View {
	switch {
	case loading:
		return ViewLoading
	case user == nil:
		return ViewAuth
	case Match(path).Name == RoutePayment:
		return ViewPayment
	case user.UserType == models.UserTypeUser:
		return ViewUserDashboard
	default:
		return ViewTechnicianDashboard
	}
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kendall-kelly/techsupport-client/models"
	"github.com/kendall-kelly/techsupport-client/utils"
)

// interventionBoard is the list state shared by both dashboards
type interventionBoard struct {
	service *InterventionService

	mu            sync.RWMutex
	interventions []models.Intervention
	loading       bool
}

func newInterventionBoard(service *InterventionService) interventionBoard {
	return interventionBoard{service: service, interventions: []models.Intervention{}, loading: true}
}

// FetchInterventions replaces the local list with the server's. On failure the previous list stays.
func (b *interventionBoard) FetchInterventions(ctx context.Context) error {
	interventions, err := b.service.List(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if err != nil {
		slog.Error("failed to fetch interventions", "error", err)
		return err
	}
	b.interventions = interventions
	return nil
}

// Interventions returns a copy of the local list
func (b *interventionBoard) Interventions() []models.Intervention {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.Intervention, len(b.interventions))
	copy(out, b.interventions)
	return out
}

// Loading reports whether the first fetch has not completed
func (b *interventionBoard) Loading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loading
}

// mutate runs one call and refetches on success; a failure is logged and changes nothing
func (b *interventionBoard) mutate(ctx context.Context, action string, call func() error) error {
	if err := call(); err != nil {
		slog.Error("intervention action failed", "action", action, "error", err)
		return err
	}
	// a failed refetch keeps the previous list and is logged inside
	_ = b.FetchInterventions(ctx)
	return nil
}

func (b *interventionBoard) markers() []Marker {
	markers := []Marker{}
	for _, i := range b.Interventions() {
		if !i.HasLocation() {
			continue
		}
		markers = append(markers, Marker{
			ID:       i.ID,
			Title:    i.Title,
			Position: LatLng{Lat: *i.UserLatitude, Lng: *i.UserLongitude},
		})
	}
	return markers
}

// MarkersFromInterventions returns one marker per intervention that carries coordinates
func MarkersFromInterventions(interventions []models.Intervention) []Marker {
	b := interventionBoard{interventions: interventions}
	return b.markers()
}

// UserDashboard is the customer's view: their interventions, the create form and payment
type UserDashboard struct {
	interventionBoard
	checkout  *CheckoutService
	locator   Locator
	originURL string
	user      models.User

	formMu   sync.RWMutex
	showForm bool
	form     models.InterventionForm
	location *Coordinates
}

// NewUserDashboard creates a dashboard for a customer. locator may be nil.
func NewUserDashboard(user models.User, interventions *InterventionService, checkout *CheckoutService, locator Locator, originURL string) *UserDashboard {
	return &UserDashboard{
		interventionBoard: newInterventionBoard(interventions),
		checkout:          checkout,
		locator:           locator,
		originURL:         originURL,
		user:              user,
		form:              models.NewInterventionForm(),
	}
}

// Mount requests the device position and loads the list. Every view load mounts.
func (d *UserDashboard) Mount(ctx context.Context) error {
	location := CaptureLocation(ctx, d.locator, models.UserTypeUser)
	d.formMu.Lock()
	d.location = location
	d.formMu.Unlock()
	return d.FetchInterventions(ctx)
}

// OpenForm shows the create form
func (d *UserDashboard) OpenForm() {
	d.formMu.Lock()
	d.showForm = true
	d.formMu.Unlock()
}

// CloseForm hides the create form without clearing it
func (d *UserDashboard) CloseForm() {
	d.formMu.Lock()
	d.showForm = false
	d.formMu.Unlock()
}

// FormOpen reports whether the create form is shown
func (d *UserDashboard) FormOpen() bool {
	d.formMu.RLock()
	defer d.formMu.RUnlock()
	return d.showForm
}

// Form returns the current form values
func (d *UserDashboard) Form() models.InterventionForm {
	d.formMu.RLock()
	defer d.formMu.RUnlock()
	return d.form
}

// Location returns the position captured on mount, nil when none
func (d *UserDashboard) Location() *Coordinates {
	d.formMu.RLock()
	defer d.formMu.RUnlock()
	return d.location
}

// CreateIntervention validates and submits the form. Blank selects fall back to the form
// defaults. On success the form closes, resets and the list is refetched; on failure the
// form keeps its values.
func (d *UserDashboard) CreateIntervention(ctx context.Context, form models.InterventionForm) (*models.Intervention, error) {
	form = withFormDefaults(form)

	d.formMu.Lock()
	d.form = form
	d.formMu.Unlock()

	if err := utils.ValidateForm(form); err != nil {
		return nil, err
	}

	var created *models.Intervention
	err := d.mutate(ctx, "create", func() error {
		var err error
		created, err = d.service.Create(ctx, form)
		return err
	})
	if err != nil {
		return nil, err
	}

	d.formMu.Lock()
	d.showForm = false
	d.form = models.NewInterventionForm()
	d.formMu.Unlock()
	return created, nil
}

// HandlePayment starts a hosted checkout and returns the URL to redirect to.
// No local state changes before the redirect.
func (d *UserDashboard) HandlePayment(ctx context.Context, interventionID string) (string, error) {
	session, err := d.checkout.CreateSession(ctx, interventionID, d.originURL)
	if err != nil {
		slog.Error("payment error", "intervention_id", interventionID, "error", err)
		return "", err
	}
	return session.URL, nil
}

// Markers returns the map overlays for the customer's located interventions
func (d *UserDashboard) Markers() []Marker {
	return d.markers()
}

func withFormDefaults(form models.InterventionForm) models.InterventionForm {
	defaults := models.NewInterventionForm()
	if form.InterventionType == "" {
		form.InterventionType = defaults.InterventionType
	}
	if form.ServiceType == "" {
		form.ServiceType = defaults.ServiceType
	}
	if form.Urgency == "" {
		form.Urgency = defaults.Urgency
	}
	return form
}

// TechnicianDashboard is the technician's view: open requests, own jobs and availability
type TechnicianDashboard struct {
	interventionBoard
	locator Locator
	user    models.User

	availMu   sync.RWMutex
	available bool
}

// NewTechnicianDashboard creates a dashboard whose availability starts from the user record
func NewTechnicianDashboard(user models.User, interventions *InterventionService, locator Locator) *TechnicianDashboard {
	return &TechnicianDashboard{
		interventionBoard: newInterventionBoard(interventions),
		locator:           locator,
		user:              user,
		available:         user.IsAvailable(),
	}
}

// Mount requests the device position and loads the list. Every view load mounts.
func (d *TechnicianDashboard) Mount(ctx context.Context) error {
	CaptureLocation(ctx, d.locator, models.UserTypeTechnician)
	return d.FetchInterventions(ctx)
}

// Available returns the local availability flag
func (d *TechnicianDashboard) Available() bool {
	d.availMu.RLock()
	defer d.availMu.RUnlock()
	return d.available
}

// ToggleAvailability sends the flipped flag and applies it locally only once the server accepts it
func (d *TechnicianDashboard) ToggleAvailability(ctx context.Context) error {
	next := !d.Available()
	if err := d.service.SetAvailability(ctx, next); err != nil {
		slog.Error("failed to toggle availability", "available", next, "error", err)
		return err
	}
	d.availMu.Lock()
	d.available = next
	d.availMu.Unlock()
	return nil
}

// AvailableInterventions returns the pending requests any technician may accept
func (d *TechnicianDashboard) AvailableInterventions() []models.Intervention {
	out := []models.Intervention{}
	for _, i := range d.Interventions() {
		if i.Status == models.StatusPending {
			out = append(out, i)
		}
	}
	return out
}

// MyInterventions returns the interventions assigned to this technician
func (d *TechnicianDashboard) MyInterventions() []models.Intervention {
	out := []models.Intervention{}
	for _, i := range d.Interventions() {
		if i.AssignedTo(d.user.ID) {
			out = append(out, i)
		}
	}
	return out
}

// Accept assigns a pending intervention to this technician
func (d *TechnicianDashboard) Accept(ctx context.Context, id string) error {
	return d.mutate(ctx, "assign", func() error {
		return d.service.Assign(ctx, id)
	})
}

// ProposePrice sets the final price on an assigned intervention. A nil price is a no-op.
func (d *TechnicianDashboard) ProposePrice(ctx context.Context, id string, price *float64) error {
	if price == nil {
		return nil
	}
	return d.mutate(ctx, "propose_price", func() error {
		return d.service.UpdateStatus(ctx, id, models.StatusAssigned, price)
	})
}

// StartWork moves an intervention to in_progress
func (d *TechnicianDashboard) StartWork(ctx context.Context, id string) error {
	return d.mutate(ctx, "start", func() error {
		return d.service.UpdateStatus(ctx, id, models.StatusInProgress, nil)
	})
}

// Complete marks an intervention completed
func (d *TechnicianDashboard) Complete(ctx context.Context, id string) error {
	return d.mutate(ctx, "complete", func() error {
		return d.service.UpdateStatus(ctx, id, models.StatusCompleted, nil)
	})
}

// Markers returns the map overlays for the open requests that carry coordinates
func (d *TechnicianDashboard) Markers() []Marker {
	return MarkersFromInterventions(d.AvailableInterventions())
}

// Dashboards keeps the dashboard of the current user between page loads.
// Only form and availability state live here; callers Mount on every view load.
// A different user id replaces the previous dashboard.
type Dashboards struct {
	interventions *InterventionService
	checkout      *CheckoutService
	locator       Locator
	originURL     string

	mu         sync.Mutex
	userID     string
	user       *UserDashboard
	technician *TechnicianDashboard
}

// NewDashboards creates an empty dashboard holder
func NewDashboards(interventions *InterventionService, checkout *CheckoutService, locator Locator, originURL string) *Dashboards {
	return &Dashboards{
		interventions: interventions,
		checkout:      checkout,
		locator:       locator,
		originURL:     originURL,
	}
}

// ForUser returns the customer dashboard for user. It never touches the network.
func (m *Dashboards) ForUser(user models.User) *UserDashboard {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.switchTo(user.ID)
	if m.user == nil {
		m.user = NewUserDashboard(user, m.interventions, m.checkout, m.locator, m.originURL)
	}
	return m.user
}

// ForTechnician returns the technician dashboard for user. Admins get this one too.
func (m *Dashboards) ForTechnician(user models.User) *TechnicianDashboard {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.switchTo(user.ID)
	if m.technician == nil {
		m.technician = NewTechnicianDashboard(user, m.interventions, m.locator)
	}
	return m.technician
}

// Reset drops every mounted dashboard, used on logout
func (m *Dashboards) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.switchTo("")
}

func (m *Dashboards) switchTo(userID string) {
	if m.userID == userID {
		return
	}
	m.userID = userID
	m.user = nil
	m.technician = nil
}

package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kendall-kelly/techsupport-client/models"
)

// MapsScriptPath is where the fake backend serves a mapping script
const MapsScriptPath = "/maps/api/js"

// RecordedRequest is one call received by the fake backend
type RecordedRequest struct {
	Method        string
	Path          string // relative to /api
	Query         url.Values
	Body          []byte
	Authorization string
	RequestID     string
}

type failure struct {
	status int
	detail string
}

type account struct {
	user     models.User
	password string
}

type storedNotification struct {
	userID       string
	notification models.Notification
	read         bool
}

// FakeBackend is an in-memory marketplace API served over HTTP.
// It keeps enough state to exercise every client flow and records every request.
type FakeBackend struct {
	Server *httptest.Server

	mu            sync.Mutex
	accounts      map[string]*account // by email
	tokens        map[string]string   // token -> user id
	interventions []models.Intervention
	notifications []storedNotification
	messages      []models.Message
	checkouts     map[string][]models.CheckoutStatus
	requests      []RecordedRequest
	failures      map[string]failure
	scriptLoads   int
}

// NewFakeBackend starts a fake backend. Call Close when done.
func NewFakeBackend() *FakeBackend {
	gin.SetMode(gin.TestMode)

	b := &FakeBackend{
		accounts:      map[string]*account{},
		tokens:        map[string]string{},
		interventions: []models.Intervention{},
		checkouts:     map[string][]models.CheckoutStatus{},
		failures:      map[string]failure{},
	}

	router := gin.New()
	router.GET(MapsScriptPath, b.serveScript)

	api := router.Group("/api", b.record, b.injectFailures)
	{
		api.POST("/auth/register", b.register)
		api.POST("/auth/login", b.login)
		api.GET("/auth/me", b.authenticated, b.me)

		api.GET("/interventions", b.authenticated, b.listInterventions)
		api.POST("/interventions", b.authenticated, b.createIntervention)
		api.PUT("/interventions/:id/assign", b.authenticated, b.assignIntervention)
		api.PUT("/interventions/:id/status", b.authenticated, b.updateStatus)
		api.PUT("/technicians/availability", b.authenticated, b.updateAvailability)

		api.GET("/notifications", b.authenticated, b.listNotifications)
		api.PUT("/notifications/:id/read", b.authenticated, b.readNotification)

		api.GET("/messages/:id", b.authenticated, b.listMessages)
		api.POST("/messages", b.authenticated, b.sendMessage)

		api.POST("/payments/checkout/session", b.authenticated, b.createCheckout)
		api.GET("/payments/checkout/status/:id", b.checkoutStatus)
	}

	b.Server = httptest.NewServer(router)
	return b
}

// Close shuts the server down
func (b *FakeBackend) Close() {
	b.Server.Close()
}

// Origin returns the server origin (the API lives under <origin>/api)
func (b *FakeBackend) Origin() string {
	return b.Server.URL
}

// APIURL returns the API base URL
func (b *FakeBackend) APIURL() string {
	return b.Server.URL + "/api"
}

// ScriptURL returns the URL of the fake mapping script
func (b *FakeBackend) ScriptURL() string {
	return b.Server.URL + MapsScriptPath
}

// AddUser registers an account and returns a valid token for it
func (b *FakeBackend) AddUser(user models.User, password string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	b.accounts[user.Email] = &account{user: user, password: password}
	return b.issueToken(user.ID)
}

// User returns the server copy of an account
func (b *FakeBackend) User(id string) (models.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if acc := b.accountByID(id); acc != nil {
		return acc.user, true
	}
	return models.User{}, false
}

// AddIntervention stores an intervention as is and returns it with an id
func (b *FakeBackend) AddIntervention(i models.Intervention) models.Intervention {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Status == "" {
		i.Status = models.StatusPending
	}
	if i.CreatedAt == "" {
		i.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	b.interventions = append(b.interventions, i)
	return i
}

// Intervention returns the server copy of an intervention
func (b *FakeBackend) Intervention(id string) (models.Intervention, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.interventionByID(id); i != nil {
		return *i, true
	}
	return models.Intervention{}, false
}

// InterventionCount returns how many interventions the server holds
func (b *FakeBackend) InterventionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.interventions)
}

// AddNotification stores an unread notification for a user
func (b *FakeBackend) AddNotification(userID string, n models.Notification) models.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt == "" {
		n.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	b.notifications = append(b.notifications, storedNotification{userID: userID, notification: n})
	return n
}

// SetCheckoutStatuses queues the answers of the status endpoint for a session.
// The last answer repeats once the queue is drained.
func (b *FakeBackend) SetCheckoutStatuses(sessionID string, statuses ...models.CheckoutStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkouts[sessionID] = statuses
}

// Fail makes every call to method+path answer status with {"detail": detail} until ClearFailures.
// path is relative to /api, e.g. "/interventions".
func (b *FakeBackend) Fail(method, path string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, detail: detail}
}

// ClearFailures removes every injected failure
func (b *FakeBackend) ClearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = map[string]failure{}
}

// Requests returns every recorded API request
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// RequestsTo returns the recorded requests for method+path
func (b *FakeBackend) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// CountRequests returns how many times method+path was called
func (b *FakeBackend) CountRequests(method, path string) int {
	return len(b.RequestsTo(method, path))
}

// ResetRequests forgets the recorded requests
func (b *FakeBackend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

// ScriptLoads returns how many times the mapping script was fetched
func (b *FakeBackend) ScriptLoads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scriptLoads
}

func (b *FakeBackend) issueToken(userID string) string {
	token := "tok-" + uuid.NewString()
	b.tokens[token] = userID
	return token
}

func (b *FakeBackend) accountByID(id string) *account {
	for _, acc := range b.accounts {
		if acc.user.ID == id {
			return acc
		}
	}
	return nil
}

func (b *FakeBackend) interventionByID(id string) *models.Intervention {
	for idx := range b.interventions {
		if b.interventions[idx].ID == id {
			return &b.interventions[idx]
		}
	}
	return nil
}

func detail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": message})
}

func (b *FakeBackend) serveScript(c *gin.Context) {
	b.mu.Lock()
	b.scriptLoads++
	b.mu.Unlock()
	c.Data(http.StatusOK, "application/javascript", []byte("window.google = {maps: {}};"))
}

func (b *FakeBackend) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	b.mu.Lock()
	b.requests = append(b.requests, RecordedRequest{
		Method:        c.Request.Method,
		Path:          strings.TrimPrefix(c.Request.URL.Path, "/api"),
		Query:         c.Request.URL.Query(),
		Body:          body,
		Authorization: c.GetHeader("Authorization"),
		RequestID:     c.GetHeader("X-Request-ID"),
	})
	b.mu.Unlock()
	c.Next()
}

func (b *FakeBackend) injectFailures(c *gin.Context) {
	key := c.Request.Method + " " + strings.TrimPrefix(c.Request.URL.Path, "/api")
	b.mu.Lock()
	f, ok := b.failures[key]
	b.mu.Unlock()
	if ok {
		detail(c, f.status, f.detail)
		return
	}
	c.Next()
}

func (b *FakeBackend) authenticated(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	b.mu.Lock()
	userID, ok := b.tokens[token]
	acc := b.accountByID(userID)
	b.mu.Unlock()
	if !ok || acc == nil {
		detail(c, http.StatusUnauthorized, "Invalid authentication credentials")
		return
	}
	c.Set("user_id", userID)
	c.Next()
}

// currentUser must be called with b.mu held
func (b *FakeBackend) currentUser(c *gin.Context) *models.User {
	acc := b.accountByID(c.GetString("user_id"))
	if acc == nil {
		return nil
	}
	return &acc.user
}

func (b *FakeBackend) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[req.Email]; exists {
		detail(c, http.StatusBadRequest, "Email already registered")
		return
	}

	user := models.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		UserType:  req.UserType,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if req.Address != "" {
		address := req.Address
		user.Address = &address
	}
	if req.UserType == models.UserTypeTechnician {
		available := true
		user.Skills = req.Skills
		user.HourlyRate = req.HourlyRate
		user.Available = &available
	}
	b.accounts[req.Email] = &account{user: user, password: req.Password}

	c.JSON(http.StatusOK, gin.H{
		"message": "User registered successfully",
		"token":   b.issueToken(user.ID),
		"user":    user,
	})
}

func (b *FakeBackend) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[req.Email]
	if !ok || acc.password != req.Password {
		detail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   b.issueToken(acc.user.ID),
		"user":    acc.user,
	})
}

func (b *FakeBackend) me(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.currentUser(c))
}

func (b *FakeBackend) listInterventions(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	user := b.currentUser(c)

	out := []models.Intervention{}
	for _, i := range b.interventions {
		switch user.UserType {
		case models.UserTypeUser:
			if i.UserID == user.ID {
				out = append(out, i)
			}
		case models.UserTypeTechnician:
			if i.Status == models.StatusPending || i.AssignedTo(user.ID) {
				out = append(out, i)
			}
		default:
			out = append(out, i)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) createIntervention(c *gin.Context) {
	var form models.InterventionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	user := b.currentUser(c)
	if user.UserType != models.UserTypeUser {
		detail(c, http.StatusForbidden, "Only users can create interventions")
		return
	}

	i := models.Intervention{
		ID:               uuid.NewString(),
		UserID:           user.ID,
		Title:            form.Title,
		Description:      form.Description,
		InterventionType: form.InterventionType,
		ServiceType:      form.ServiceType,
		Urgency:          form.Urgency,
		Status:           models.StatusPending,
		CreatedAt:        time.Now().UTC().Format(time.RFC3339),
	}
	if form.BudgetMin != nil {
		i.BudgetMin = *form.BudgetMin
	}
	if form.BudgetMax != nil {
		i.BudgetMax = *form.BudgetMax
	}
	if form.UserAddress != "" {
		address := form.UserAddress
		i.UserAddress = &address
	}
	b.interventions = append(b.interventions, i)
	c.JSON(http.StatusOK, i)
}

func (b *FakeBackend) assignIntervention(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	user := b.currentUser(c)
	if user.UserType != models.UserTypeTechnician {
		detail(c, http.StatusForbidden, "Only technicians can accept interventions")
		return
	}

	i := b.interventionByID(c.Param("id"))
	if i == nil {
		detail(c, http.StatusNotFound, "Intervention not found")
		return
	}
	if i.Status != models.StatusPending {
		detail(c, http.StatusBadRequest, "Intervention already assigned")
		return
	}

	techID := user.ID
	i.TechnicianID = &techID
	i.Status = models.StatusAssigned
	c.JSON(http.StatusOK, gin.H{"message": "Intervention assigned successfully"})
}

func (b *FakeBackend) updateStatus(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	user := b.currentUser(c)

	i := b.interventionByID(c.Param("id"))
	if i == nil {
		detail(c, http.StatusNotFound, "Intervention not found")
		return
	}
	if !i.AssignedTo(user.ID) && user.UserType != models.UserTypeAdmin {
		detail(c, http.StatusForbidden, "Not authorized")
		return
	}

	i.Status = c.Query("new_status")
	if raw := c.Query("final_price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			detail(c, http.StatusUnprocessableEntity, "Invalid final_price")
			return
		}
		i.FinalPrice = &price
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully"})
}

func (b *FakeBackend) updateAvailability(c *gin.Context) {
	available, err := strconv.ParseBool(c.Query("available"))
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid available")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	user := b.currentUser(c)
	if user.UserType != models.UserTypeTechnician {
		detail(c, http.StatusForbidden, "Only technicians can update availability")
		return
	}
	user.Available = &available
	c.JSON(http.StatusOK, gin.H{"message": "Availability updated"})
}

func (b *FakeBackend) listNotifications(c *gin.Context) {
	unreadOnly := c.Query("unread_only") == "true"

	b.mu.Lock()
	defer b.mu.Unlock()
	userID := c.GetString("user_id")

	out := []models.Notification{}
	for _, n := range b.notifications {
		if n.userID != userID || (unreadOnly && n.read) {
			continue
		}
		out = append(out, n.notification)
	}
	c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) readNotification(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	userID := c.GetString("user_id")

	for idx := range b.notifications {
		n := &b.notifications[idx]
		if n.notification.ID == c.Param("id") && n.userID == userID {
			n.read = true
			c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
			return
		}
	}
	detail(c, http.StatusNotFound, "Notification not found")
}

func (b *FakeBackend) listMessages(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := []models.Message{}
	for _, m := range b.messages {
		if m.InterventionID == c.Param("id") {
			out = append(out, m)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) sendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	user := b.currentUser(c)
	if b.interventionByID(req.InterventionID) == nil {
		detail(c, http.StatusNotFound, "Intervention not found")
		return
	}

	m := models.Message{
		ID:             uuid.NewString(),
		InterventionID: req.InterventionID,
		SenderID:       user.ID,
		SenderType:     user.UserType,
		Content:        req.Content,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	b.messages = append(b.messages, m)
	c.JSON(http.StatusOK, m)
}

func (b *FakeBackend) createCheckout(c *gin.Context) {
	var req models.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	origin := c.Query("origin_url")

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.interventionByID(req.InterventionID)
	if i == nil {
		detail(c, http.StatusNotFound, "Intervention not found")
		return
	}
	if i.FinalPrice == nil {
		detail(c, http.StatusBadRequest, "No final price set")
		return
	}

	sessionID := "cs_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	c.JSON(http.StatusOK, models.CheckoutSession{
		URL:       "https://checkout.example.test/pay/" + sessionID + "?success_url=" + url.QueryEscape(origin+"/payment-success?session_id="+sessionID),
		SessionID: sessionID,
	})
}

func (b *FakeBackend) checkoutStatus(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	queue := b.checkouts[c.Param("id")]
	if len(queue) == 0 {
		c.JSON(http.StatusOK, models.CheckoutStatus{PaymentStatus: "unpaid", Status: "open"})
		return
	}
	status := queue[0]
	if len(queue) > 1 {
		b.checkouts[c.Param("id")] = queue[1:]
	}
	c.JSON(http.StatusOK, status)
}

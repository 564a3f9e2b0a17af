package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/techsupport-client/controllers"
	"github.com/kendall-kelly/techsupport-client/middleware"
	"github.com/kendall-kelly/techsupport-client/models"
	"github.com/kendall-kelly/techsupport-client/services"
	"github.com/kendall-kelly/techsupport-client/tests/testutil"
	"github.com/stretchr/testify/suite"
)

const testOrigin = "http://localhost:8080"

// shellSuite wires the controllers to a fake marketplace backend
type shellSuite struct {
	suite.Suite
	backend *testutil.FakeBackend
	tokens  *services.MockTokenStore
	session *services.SessionStore
	handler *controllers.Handler
	router  *gin.Engine
}

// SetupSuite refuses to run outside GO_ENV=test
func (s *shellSuite) SetupSuite() {
	testutil.RequireTestEnvironment(s.T())
}

// SetupTest runs before each test
func (s *shellSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.backend = testutil.NewFakeBackend()

	api := services.NewAPIClient(s.backend.Origin(), 5*time.Second)
	poller := services.NewNotificationPoller(api, time.Hour)
	s.tokens = services.NewMockTokenStore("")
	s.session = services.NewSessionStore(api, s.tokens, poller)
	s.Require().NoError(s.session.Init(context.Background()))

	interventions := services.NewInterventionService(api)
	checkout := services.NewCheckoutService(api)
	payments := services.NewPaymentChecker(checkout, nil,
		services.WithSleep(func(ctx context.Context, d time.Duration) error { return ctx.Err() }),
	)
	dashboards := services.NewDashboards(interventions, checkout, services.StaticLocator{}, testOrigin)
	maps := services.NewScriptLoaderWithURL(s.backend.ScriptURL(), nil)

	s.handler = controllers.NewHandler(s.session, dashboards, services.NewMessageService(api), payments, maps)
	s.router = s.buildRouter()
}

// TearDownTest runs after each test
func (s *shellSuite) TearDownTest() {
	s.session.Logout()
	s.backend.Close()
}

func (s *shellSuite) buildRouter() *gin.Engine {
	h := s.handler
	router := gin.New()

	router.GET("/", h.ShowView)
	router.GET("/payment-success", h.ShowView)
	router.GET("/session", h.GetSession)
	router.POST("/session/login", h.Login)
	router.POST("/session/register", h.Register)
	router.POST("/session/logout", h.Logout)

	authed := router.Group("/", middleware.RequireSession(h.Session))
	authed.GET("/notifications", h.ListNotifications)
	authed.PUT("/notifications/:id/read", h.MarkNotificationRead)
	authed.GET("/interventions", h.ListInterventions)
	authed.GET("/interventions/:id/messages", h.ListMessages)
	authed.POST("/interventions/:id/messages", h.SendMessage)
	authed.POST("/interventions", middleware.RequireUserType(models.UserTypeUser), h.CreateIntervention)
	authed.POST("/interventions/:id/pay", middleware.RequireUserType(models.UserTypeUser), h.PayIntervention)

	tech := authed.Group("/", middleware.RequireUserType(models.UserTypeTechnician, models.UserTypeAdmin))
	tech.PUT("/interventions/:id/assign", h.AssignIntervention)
	tech.PUT("/interventions/:id/price", h.ProposePrice)
	tech.PUT("/interventions/:id/start", h.StartIntervention)
	tech.PUT("/interventions/:id/complete", h.CompleteIntervention)
	tech.PUT("/technicians/availability", h.ToggleAvailability)

	return router
}

// request sends a JSON request and decodes the response envelope
func (s *shellSuite) request(method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var response map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &response)
	return w, response
}

// loginAs registers user on the backend and logs the shell in as them
func (s *shellSuite) loginAs(user models.User) {
	s.backend.AddUser(user, "password")
	w, response := s.request(http.MethodPost, "/session/login", map[string]interface{}{
		"email":    user.Email,
		"password": "password",
	})
	s.Require().Equal(http.StatusOK, w.Code, response)
}

func data(response map[string]interface{}) map[string]interface{} {
	return response["data"].(map[string]interface{})
}

func errorMessage(response map[string]interface{}) string {
	return response["error"].(map[string]interface{})["message"].(string)
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

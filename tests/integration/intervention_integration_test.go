package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kendall-kelly/techsupport-client/models"
	"github.com/kendall-kelly/techsupport-client/tests/testutil"
	"github.com/stretchr/testify/suite"
)

// InterventionIntegrationTestSuite covers both dashboards through the shell
type InterventionIntegrationTestSuite struct {
	shellSuite
}

func (s *InterventionIntegrationTestSuite) TestCreateWithDefaults() {
	s.loginAs(testutil.Customer("u1"))

	w, response := s.request(http.MethodPost, "/interventions", map[string]interface{}{
		"title":        "Fix laptop",
		"budget_min":   50,
		"budget_max":   100,
		"service_type": "remote",
	})

	s.Require().Equal(http.StatusCreated, w.Code, response)
	posts := s.backend.RequestsTo(http.MethodPost, "/interventions")
	s.Require().Len(posts, 1)

	var sent map[string]interface{}
	s.Require().NoError(json.Unmarshal(posts[0].Body, &sent))
	s.Equal("computer", sent["intervention_type"])
	s.Equal("medium", sent["urgency"])
	s.NotContains(sent, "user_address", "Remote requests carry no address")

	_, view := s.request(http.MethodGet, "/", nil)
	s.Equal(false, data(view)["form_open"])
	s.Len(data(view)["interventions"], 1)
}

func (s *InterventionIntegrationTestSuite) TestCreateOnsiteRequiresAddress() {
	s.loginAs(testutil.Customer("u1"))

	w, response := s.request(http.MethodPost, "/interventions", map[string]interface{}{
		"title":        "Printer jam",
		"budget_min":   20,
		"budget_max":   40,
		"service_type": "onsite",
	})

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Invalid fields: user_address", errorMessage(response))
	s.Zero(s.backend.CountRequests(http.MethodPost, "/interventions"))

	w, _ = s.request(http.MethodPost, "/interventions", map[string]interface{}{
		"title":        "Printer jam",
		"budget_min":   20,
		"budget_max":   40,
		"service_type": "onsite",
		"user_address": "1 rue de la Paix, Paris",
	})
	s.Equal(http.StatusCreated, w.Code)
}

func (s *InterventionIntegrationTestSuite) TestCreateFailureKeepsList() {
	s.loginAs(testutil.Customer("u1"))
	s.backend.AddIntervention(models.Intervention{UserID: "u1", Title: "Existing"})
	s.backend.Fail(http.MethodPost, "/interventions", http.StatusInternalServerError, "boom")

	w, _ := s.request(http.MethodPost, "/interventions", map[string]interface{}{
		"title":      "Fix laptop",
		"budget_min": 50,
		"budget_max": 100,
	})

	s.Equal(http.StatusBadGateway, w.Code)
	_, view := s.request(http.MethodGet, "/", nil)
	s.Len(data(view)["interventions"], 1)
}

func (s *InterventionIntegrationTestSuite) TestTechnicianPartition() {
	s.loginAs(testutil.Technician("t1", true))
	s.backend.AddIntervention(models.Intervention{UserID: "u1", Title: "Open"})
	s.backend.AddIntervention(models.Intervention{UserID: "u1", Title: "Mine", Status: models.StatusAssigned, TechnicianID: strPtr("t1")})
	s.backend.AddIntervention(models.Intervention{UserID: "u1", Title: "Theirs", Status: models.StatusAssigned, TechnicianID: strPtr("t2")})

	w, response := s.request(http.MethodGet, "/interventions", nil)

	s.Require().Equal(http.StatusOK, w.Code)
	lists := data(response)
	s.Len(lists["available"], 1)
	s.Len(lists["mine"], 1)
	s.Equal("Mine", lists["mine"].([]interface{})[0].(map[string]interface{})["title"])
}

func (s *InterventionIntegrationTestSuite) TestTechnicianWorkflow() {
	s.loginAs(testutil.Technician("t1", true))
	i := s.backend.AddIntervention(models.Intervention{UserID: "u1", Title: "Fix laptop"})

	w, _ := s.request(http.MethodPut, "/interventions/"+i.ID+"/assign", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	// No price means nothing is sent
	w, _ = s.request(http.MethodPut, "/interventions/"+i.ID+"/price", map[string]interface{}{})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Zero(s.backend.CountRequests(http.MethodPut, "/interventions/"+i.ID+"/status"))

	w, _ = s.request(http.MethodPut, "/interventions/"+i.ID+"/price", map[string]interface{}{"final_price": 75.5})
	s.Require().Equal(http.StatusOK, w.Code)
	stored, _ := s.backend.Intervention(i.ID)
	s.Equal(models.StatusAssigned, stored.Status)
	s.Require().NotNil(stored.FinalPrice)
	s.Equal(75.5, *stored.FinalPrice)

	s.request(http.MethodPut, "/interventions/"+i.ID+"/start", nil)
	stored, _ = s.backend.Intervention(i.ID)
	s.Equal(models.StatusInProgress, stored.Status)

	w, response := s.request(http.MethodPut, "/interventions/"+i.ID+"/complete", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	stored, _ = s.backend.Intervention(i.ID)
	s.Equal(models.StatusCompleted, stored.Status)
	s.Len(data(response)["mine"], 1)

	statusCalls := s.backend.RequestsTo(http.MethodPut, "/interventions/"+i.ID+"/status")
	s.Require().Len(statusCalls, 3)
	s.Equal("assigned", statusCalls[0].Query.Get("new_status"))
	s.Equal("75.5", statusCalls[0].Query.Get("final_price"))
}

func (s *InterventionIntegrationTestSuite) TestAcceptFailureLeavesStateUnchanged() {
	s.loginAs(testutil.Technician("t1", true))
	i := s.backend.AddIntervention(models.Intervention{UserID: "u1", Title: "Taken", Status: models.StatusAssigned, TechnicianID: strPtr("t2")})

	w, response := s.request(http.MethodPut, "/interventions/"+i.ID+"/assign", nil)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Intervention already assigned", errorMessage(response))
}

func (s *InterventionIntegrationTestSuite) TestToggleAvailability() {
	s.loginAs(testutil.Technician("t1", true))

	w, response := s.request(http.MethodPut, "/technicians/availability", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(false, data(response)["available"])

	calls := s.backend.RequestsTo(http.MethodPut, "/technicians/availability")
	s.Require().Len(calls, 1)
	s.Equal("false", calls[0].Query.Get("available"))

	s.backend.Fail(http.MethodPut, "/technicians/availability", http.StatusInternalServerError, "down")
	w, _ = s.request(http.MethodPut, "/technicians/availability", nil)
	s.Equal(http.StatusBadGateway, w.Code)

	_, view := s.request(http.MethodGet, "/", nil)
	s.Equal(false, data(view)["available"], "A failed toggle keeps the previous flag")
}

func (s *InterventionIntegrationTestSuite) TestAdminUsesTechnicianDashboard() {
	admin := testutil.Customer("a1")
	admin.UserType = models.UserTypeAdmin
	s.loginAs(admin)

	_, view := s.request(http.MethodGet, "/", nil)

	s.Equal("technician_dashboard", data(view)["view"])
	s.Equal("Administrateur", data(view)["role_label"])
}

func (s *InterventionIntegrationTestSuite) TestMessages() {
	s.loginAs(testutil.Customer("u1"))
	i := s.backend.AddIntervention(models.Intervention{UserID: "u1", Title: "Fix laptop"})

	w, response := s.request(http.MethodPost, "/interventions/"+i.ID+"/messages", map[string]interface{}{
		"content": "Is Tuesday fine?",
	})
	s.Require().Equal(http.StatusCreated, w.Code, response)
	s.Equal("Is Tuesday fine?", data(response)["content"])

	w, response = s.request(http.MethodGet, "/interventions/"+i.ID+"/messages", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(float64(1), response["count"])

	w, _ = s.request(http.MethodPost, "/interventions/"+i.ID+"/messages", map[string]interface{}{})
	s.Equal(http.StatusBadRequest, w.Code, "Empty messages are rejected locally")
}

func TestInterventionIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(InterventionIntegrationTestSuite))
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/kendall-kelly/techsupport-client/models"
	"github.com/kendall-kelly/techsupport-client/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterventionServiceListEmpty(t *testing.T) {
	f := newDashboardFixture(t, testutil.Customer("u1"))

	interventions, err := f.interventions.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, interventions)
	assert.Empty(t, interventions)
}

func TestUpdateStatusSendsQueryAndBody(t *testing.T) {
	tech := testutil.Technician("t1", true)
	f := newDashboardFixture(t, tech)
	i := f.backend.AddIntervention(models.Intervention{Status: models.StatusAssigned, TechnicianID: str("t1")})

	require.NoError(t, f.interventions.UpdateStatus(context.Background(), i.ID, models.StatusInProgress, nil))

	calls := f.backend.RequestsTo(http.MethodPut, "/interventions/"+i.ID+"/status")
	require.Len(t, calls, 1)
	assert.Equal(t, "in_progress", calls[0].Query.Get("new_status"))
	assert.False(t, calls[0].Query.Has("final_price"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(calls[0].Body, &body))
	assert.Equal(t, "in_progress", body["new_status"])
	assert.NotContains(t, body, "final_price")
}

func TestSetAvailabilitySendsQueryAndBody(t *testing.T) {
	tech := testutil.Technician("t1", false)
	f := newDashboardFixture(t, tech)

	require.NoError(t, f.interventions.SetAvailability(context.Background(), true))

	calls := f.backend.RequestsTo(http.MethodPut, "/technicians/availability")
	require.Len(t, calls, 1)
	assert.Equal(t, "true", calls[0].Query.Get("available"))
	assert.JSONEq(t, `{"available":true}`, string(calls[0].Body))
}

func TestInterventionServiceWrapsErrors(t *testing.T) {
	f := newDashboardFixture(t, testutil.Customer("u1"))
	f.backend.Fail(http.MethodGet, "/interventions", http.StatusUnauthorized, "Invalid token")

	_, err := f.interventions.List(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "failed to list interventions")
}

func TestCheckoutStatus(t *testing.T) {
	f := newDashboardFixture(t, testutil.Customer("u1"))
	f.backend.SetCheckoutStatuses("cs_1", models.CheckoutStatus{PaymentStatus: "paid", Status: "complete"})

	status, err := f.checkout.Status(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, "paid", status.PaymentStatus)
}

func TestCheckoutMissingURL(t *testing.T) {
	api := NewAPIClientWithHTTP("http://unused", &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(`{"session_id":"cs_1"}`), nil
	})})

	_, err := NewCheckoutService(api).CreateSession(context.Background(), "i1", "http://localhost:8080")

	assert.ErrorIs(t, err, ErrMissingCheckoutURL)
}

func TestMessageService(t *testing.T) {
	f := newDashboardFixture(t, testutil.Customer("u1"))
	i := f.backend.AddIntervention(models.Intervention{UserID: "u1"})
	messages := NewMessageService(NewAPIClient(f.backend.Origin(), 0))
	messages.api.SetAuthToken(f.backend.AddUser(testutil.Customer("u2"), "pw"))

	sent, err := messages.Send(context.Background(), i.ID, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "u2", sent.SenderID)

	list, err := messages.List(context.Background(), i.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Hello", list[0].Content)

	empty, err := messages.List(context.Background(), "other")
	require.NoError(t, err)
	assert.NotNil(t, empty)

	_, err = messages.Send(context.Background(), "missing", "Hello")
	assert.Error(t, err)
}

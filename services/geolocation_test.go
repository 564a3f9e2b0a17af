package services

import (
	"context"
	"testing"

	"github.com/kendall-kelly/techsupport-client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureLocation(t *testing.T) {
	pos := CaptureLocation(context.Background(), StaticLocator{Position: &Coordinates{Latitude: 48.85, Longitude: 2.35}}, "user")
	require.NotNil(t, pos)
	assert.Equal(t, 48.85, pos.Latitude)

	assert.Nil(t, CaptureLocation(context.Background(), StaticLocator{}, "technician"))
	assert.Nil(t, CaptureLocation(context.Background(), nil, "user"))
}

func TestStaticLocatorReturnsCopy(t *testing.T) {
	original := &Coordinates{Latitude: 1, Longitude: 2}
	locator := StaticLocator{Position: original}

	pos, err := locator.CurrentPosition(context.Background())
	require.NoError(t, err)
	pos.Latitude = 99

	assert.Equal(t, 1.0, original.Latitude)

	_, err = StaticLocator{}.CurrentPosition(context.Background())
	assert.ErrorIs(t, err, ErrGeolocationUnavailable)
}

func TestUserDashboardMountCapturesLocationOnly(t *testing.T) {
	f := newDashboardFixture(t, testUserForLocation())
	locator := StaticLocator{Position: &Coordinates{Latitude: 43.6, Longitude: 1.44}}
	dashboard := NewUserDashboard(testUserForLocation(), f.interventions, f.checkout, locator, "")

	require.NoError(t, dashboard.Mount(context.Background()))

	require.NotNil(t, dashboard.Location())
	assert.Equal(t, 43.6, dashboard.Location().Latitude)
	for _, r := range f.backend.Requests() {
		assert.NotContains(t, string(r.Body), "43.6", "Position is never transmitted")
		assert.NotContains(t, r.Query.Encode(), "43.6")
	}
}

func testUserForLocation() models.User {
	return models.User{ID: "geo-user", Email: "geo@example.com", UserType: models.UserTypeUser}
}

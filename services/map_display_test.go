package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kendall-kelly/techsupport-client/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptLoaderURL(t *testing.T) {
	loader := NewScriptLoader("my-key", nil)

	parsed, err := url.Parse(loader.ScriptURL())
	require.NoError(t, err)
	assert.Equal(t, "maps.googleapis.com", parsed.Host)
	assert.Equal(t, "my-key", parsed.Query().Get("key"))
	assert.Equal(t, "places", parsed.Query().Get("libraries"))
}

func TestScriptLoadedOnce(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	loader := NewScriptLoaderWithURL(backend.ScriptURL(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			NewMap(context.Background(), loader, "map", LatLng{})
		}()
	}
	wg.Wait()

	assert.True(t, loader.Loaded())
	assert.Equal(t, 1, backend.ScriptLoads())
}

func TestScriptLoadSurvivesCancelledCaller(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	loader := NewScriptLoaderWithURL(backend.ScriptURL(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, loader.Load(ctx), "A cancelled first request must not poison the loader")
	assert.True(t, NewMap(context.Background(), loader, "map", LatLng{}).Rendered())
	assert.Equal(t, 1, backend.ScriptLoads())
}

func TestScriptFailureNeverRenders(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()
	loader := NewScriptLoaderWithURL(server.URL, server.Client())

	m := NewMap(context.Background(), loader, "map", LatLng{Lat: 1, Lng: 2})
	m.SetMarkers([]Marker{{ID: "1"}}, nil)
	NewMap(context.Background(), loader, "map-2", LatLng{})

	assert.False(t, m.Rendered())
	assert.Empty(t, m.Markers())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "A failed load is not retried")
}

func TestMapMarkers(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	loader := NewScriptLoaderWithURL(backend.ScriptURL(), nil)

	m := NewMap(context.Background(), loader, "technician-map", LatLng{Lat: 48.85, Lng: 2.35})
	require.True(t, m.Rendered())
	assert.Equal(t, DefaultMapZoom, m.Zoom())
	assert.Equal(t, "technician-map", m.Container())
	assert.Equal(t, LatLng{Lat: 48.85, Lng: 2.35}, m.Center())

	var clicked []string
	m.SetMarkers([]Marker{{ID: "a"}, {ID: "b"}}, func(mk Marker) { clicked = append(clicked, mk.ID) })
	assert.Len(t, m.Markers(), 2)

	m.SetMarkers([]Marker{{ID: "c"}}, func(mk Marker) { clicked = append(clicked, "new:"+mk.ID) })
	require.Len(t, m.Markers(), 1, "Previous overlays are cleared")

	assert.True(t, m.Click(0))
	assert.False(t, m.Click(1))
	assert.Equal(t, []string{"new:c"}, clicked)

	m.SetMarkers([]Marker{{ID: "d"}}, nil)
	assert.False(t, m.Click(0), "No callback means nothing runs")
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
)

// MapsScriptBase is the third-party mapping script
const MapsScriptBase = "https://maps.googleapis.com/maps/api/js"

// DefaultMapZoom is the zoom every map is created with
const DefaultMapZoom = 12

// ScriptLoader loads the mapping script at most once per process
type ScriptLoader struct {
	scriptURL  string
	httpClient *http.Client

	once   sync.Once
	mu     sync.RWMutex
	loaded bool
}

// NewScriptLoader creates a loader for the mapping script with the given API key
func NewScriptLoader(apiKey string, httpClient *http.Client) *ScriptLoader {
	query := url.Values{"key": []string{apiKey}, "libraries": []string{"places"}}
	return NewScriptLoaderWithURL(MapsScriptBase+"?"+query.Encode(), httpClient)
}

// NewScriptLoaderWithURL creates a loader for an arbitrary script URL
func NewScriptLoaderWithURL(scriptURL string, httpClient *http.Client) *ScriptLoader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ScriptLoader{scriptURL: scriptURL, httpClient: httpClient}
}

// ScriptURL returns the script the loader fetches
func (l *ScriptLoader) ScriptURL() string {
	return l.scriptURL
}

// Load fetches the script the first time it is called; later calls only report the outcome.
// A failed load is not retried and not reported: maps simply never render.
// The fetch outlives the caller's cancellation, bounded by the http client timeout.
func (l *ScriptLoader) Load(ctx context.Context) bool {
	l.once.Do(func() {
		ok := l.fetch(context.WithoutCancel(ctx)) == nil
		l.mu.Lock()
		l.loaded = ok
		l.mu.Unlock()
	})
	return l.Loaded()
}

// Loaded reports whether the script is available
func (l *ScriptLoader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

func (l *ScriptLoader) fetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.scriptURL, nil)
	if err != nil {
		return err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		slog.Debug("maps script unavailable", "error", err)
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		slog.Debug("maps script unavailable", "status", resp.StatusCode)
		return fmt.Errorf("maps script returned status %d", resp.StatusCode)
	}
	return nil
}

// LatLng is a map position
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Marker is one point overlay on a map
type Marker struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Position LatLng `json:"position"`
	Icon     string `json:"icon,omitempty"`
}

// MarkerClickFunc is called when a marker is clicked
type MarkerClickFunc func(Marker)

// Map is one map instance bound to a container. It is decorative: nothing reads data back from it.
type Map struct {
	container string
	center    LatLng
	zoom      int
	rendered  bool

	mu      sync.RWMutex
	markers []Marker
	onClick MarkerClickFunc
}

// NewMap loads the script if needed and binds a map to container.
// When the script is unavailable the map exists but never renders.
func NewMap(ctx context.Context, loader *ScriptLoader, container string, center LatLng) *Map {
	return &Map{
		container: container,
		center:    center,
		zoom:      DefaultMapZoom,
		rendered:  loader.Load(ctx),
		markers:   []Marker{},
	}
}

// SetMarkers clears the previous overlays and adds one marker per entry.
// onClick may be nil.
func (m *Map) SetMarkers(markers []Marker, onClick MarkerClickFunc) {
	if !m.rendered {
		return
	}
	next := make([]Marker, len(markers))
	copy(next, markers)

	m.mu.Lock()
	m.markers = next
	m.onClick = onClick
	m.mu.Unlock()
}

// Click dispatches a click on the marker at index. It reports whether a callback ran.
func (m *Map) Click(index int) bool {
	m.mu.RLock()
	if index < 0 || index >= len(m.markers) || m.onClick == nil {
		m.mu.RUnlock()
		return false
	}
	marker, onClick := m.markers[index], m.onClick
	m.mu.RUnlock()

	onClick(marker)
	return true
}

// Markers returns the current overlays
func (m *Map) Markers() []Marker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Marker, len(m.markers))
	copy(out, m.markers)
	return out
}

// Rendered reports whether the map is drawn
func (m *Map) Rendered() bool { return m.rendered }

// Center returns the map centre
func (m *Map) Center() LatLng { return m.center }

// Zoom returns the map zoom level
func (m *Map) Zoom() int { return m.zoom }

// Container returns the element the map is bound to
func (m *Map) Container() string { return m.container }

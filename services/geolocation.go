package services

import (
	"context"
	"errors"
	"log/slog"
)

// ErrGeolocationUnavailable is returned when the device cannot report a position
var ErrGeolocationUnavailable = errors.New("geolocation unavailable")

// Coordinates is a device position
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// Locator reports the current device position
type Locator interface {
	CurrentPosition(ctx context.Context) (*Coordinates, error)
}

// StaticLocator reports a fixed position, or ErrGeolocationUnavailable when none is set
type StaticLocator struct {
	Position *Coordinates
}

// CurrentPosition returns the configured position
func (l StaticLocator) CurrentPosition(ctx context.Context) (*Coordinates, error) {
	if l.Position == nil {
		return nil, ErrGeolocationUnavailable
	}
	pos := *l.Position
	return &pos, nil
}

// CaptureLocation asks for the device position once and logs it.
// The position is informational only and is never sent to the API.
func CaptureLocation(ctx context.Context, locator Locator, role string) *Coordinates {
	if locator == nil {
		return nil
	}
	pos, err := locator.CurrentPosition(ctx)
	if err != nil {
		slog.Debug("geolocation error", "role", role, "error", err)
		return nil
	}
	slog.Debug("position obtained", "role", role, "latitude", pos.Latitude, "longitude", pos.Longitude)
	return pos
}

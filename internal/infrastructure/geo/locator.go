// Package geo acquires an approximate device location from an IP lookup
// service.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Location is a point in decimal degrees.
type Location struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

// Locator implements ports.Locator. Failures are logged; the last known
// location is kept.
type Locator struct {
	url  string
	http *http.Client
	log  zerolog.Logger

	mu   sync.RWMutex
	last *Location
}

func NewLocator(url string, timeout time.Duration, log zerolog.Logger) *Locator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Locator{url: url, http: &http.Client{Timeout: timeout}, log: log}
}

type lookupResponse struct {
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r lookupResponse) point() (float64, float64, bool) {
	switch {
	case r.Lat != nil && r.Lon != nil:
		return *r.Lat, *r.Lon, true
	case r.Latitude != nil && r.Longitude != nil:
		return *r.Latitude, *r.Longitude, true
	}
	return 0, 0, false
}

// RequestLocation looks the location up once.
func (l *Locator) RequestLocation(ctx context.Context) {
	if l.url == "" {
		l.log.Debug().Msg("no geolocation service configured")
		return
	}
	loc, err := l.lookup(ctx)
	if err != nil {
		l.log.Warn().Err(err).Msg("location unavailable")
		return
	}
	l.mu.Lock()
	l.last = loc
	l.mu.Unlock()
	l.log.Debug().Float64("lat", loc.Lat).Float64("lng", loc.Lng).Msg("location acquired")
}

func (l *Locator) lookup(ctx context.Context) (*Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation lookup: status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geolocation lookup: %w", err)
	}
	lat, lng, ok := body.point()
	if !ok || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("geolocation lookup: no coordinates in response")
	}
	return &Location{Lat: lat, Lng: lng, AcquiredAt: time.Now().UTC()}, nil
}

// Last returns the last acquired location.
func (l *Locator) Last() (Location, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.last == nil {
		return Location{}, false
	}
	return *l.last, true
}

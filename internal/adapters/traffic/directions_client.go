// Package traffic implements ports.TrafficSource against a Google-style
// Directions API that reports live durations.
package traffic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/platform/httpx"
	"vrp-route-env/internal/platform/obs"
	"vrp-route-env/internal/ports"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api"

// ErrNoRoute is returned when the upstream found no leg between the points.
var ErrNoRoute = errors.New("directions response has no route")

type value struct {
	Value int `json:"value"`
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Distance          value  `json:"distance"`
			Duration          value  `json:"duration"`
			DurationInTraffic *value `json:"duration_in_traffic"`
		} `json:"legs"`
	} `json:"routes"`
}

// DirectionsClient fetches free-flow and live durations for one leg.
// It is safe for concurrent use.
type DirectionsClient struct {
	http    *httpx.Client
	apiKey  string
	baseURL string
}

func NewDirectionsClient(apiKey, baseURL string, timeout time.Duration) (*DirectionsClient, error) {
	if apiKey == "" {
		return nil, errors.New("directions api key is empty")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &DirectionsClient{
		http:    httpx.NewClient(timeout),
		apiKey:  apiKey,
		baseURL: baseURL,
	}, nil
}

func latLng(l domain.Location) string {
	return fmt.Sprintf("%f,%f", l.Lat, l.Lon)
}

// Observe queries the first leg between origin and destination departing now.
// A response without a live duration reports the free-flow one for both.
func (c *DirectionsClient) Observe(
	ctx context.Context,
	origin, destination domain.Location,
) (_ ports.TrafficObservation, err error) {
	defer obs.Time(ctx, "traffic.Observe")(&err)

	endpoint := c.baseURL + "/directions/json"
	resp, err := c.http.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("origin", latLng(origin))
		q.Set("destination", latLng(destination))
		q.Set("departure_time", "now")
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return ports.TrafficObservation{}, fmt.Errorf("traffic: request: %w", err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.TrafficObservation{}, fmt.Errorf("traffic: decode response: %w", err)
	}

	if decoded.Status != "" && decoded.Status != "OK" {
		return ports.TrafficObservation{}, fmt.Errorf("traffic: upstream status %q: %w", decoded.Status, ErrNoRoute)
	}
	if len(decoded.Routes) == 0 || len(decoded.Routes[0].Legs) == 0 {
		return ports.TrafficObservation{}, ErrNoRoute
	}

	leg := decoded.Routes[0].Legs[0]
	out := ports.TrafficObservation{
		DurationSeconds:          leg.Duration.Value,
		DurationInTrafficSeconds: leg.Duration.Value,
		DistanceMeters:           leg.Distance.Value,
	}
	if leg.DurationInTraffic != nil {
		out.DurationInTrafficSeconds = leg.DurationInTraffic.Value
	}

	return out, nil
}

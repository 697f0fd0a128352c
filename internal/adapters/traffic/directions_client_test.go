package traffic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/impact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.HandlerFunc) *DirectionsClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewDirectionsClient("secret", srv.URL, time.Second)
	require.NoError(t, err)
	c.http.Backoff = time.Millisecond
	return c
}

var (
	depot  = domain.Location{Lat: -6.2088, Lon: 106.8456}
	bekasi = domain.Location{Lat: -6.2383, Lon: 106.9756}
)

func TestObserve(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/directions/json", r.URL.Path)
		assert.Equal(t, "-6.208800,106.845600", r.URL.Query().Get("origin"))
		assert.Equal(t, "-6.238300,106.975600", r.URL.Query().Get("destination"))
		assert.Equal(t, "now", r.URL.Query().Get("departure_time"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"routes": [{"legs": [{
				"distance": {"value": 18400},
				"duration": {"value": 1800},
				"duration_in_traffic": {"value": 2880}
			}]}]
		}`))
	})

	got, err := c.Observe(context.Background(), depot, bekasi)
	require.NoError(t, err)
	require.Equal(t, 1800, got.DurationSeconds)
	require.Equal(t, 2880, got.DurationInTrafficSeconds)
	require.Equal(t, 18400, got.DistanceMeters)
	require.Equal(t, impact.TrafficHigh, impact.ClassifyTraffic(got))
}

func TestObserve_NoLiveDuration(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","routes":[{"legs":[{"distance":{"value":100},"duration":{"value":60}}]}]}`))
	})

	got, err := c.Observe(context.Background(), depot, bekasi)
	require.NoError(t, err)
	require.Equal(t, 60, got.DurationInTrafficSeconds)
	require.Equal(t, impact.TrafficLow, impact.ClassifyTraffic(got))
}

func TestObserve_NoRoute(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","routes":[]}`))
	})

	_, err := c.Observe(context.Background(), depot, bekasi)
	require.ErrorIs(t, err, ErrNoRoute)
}

func TestObserve_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK","routes":[{"legs":[{"duration":{"value":100},"duration_in_traffic":{"value":130}}]}]}`))
	})

	got, err := c.Observe(context.Background(), depot, bekasi)
	require.NoError(t, err)
	require.Equal(t, impact.TrafficMedium, impact.ClassifyTraffic(got))
	require.Equal(t, int32(2), calls.Load())
}

func TestObserve_MalformedBody(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.Observe(context.Background(), depot, bekasi)
	require.ErrorContains(t, err, "decode response")
}

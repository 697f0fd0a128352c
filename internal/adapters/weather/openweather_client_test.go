package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/platform/httpx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *OpenWeatherClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewOpenWeatherClient(Options{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	c.http.Backoff = time.Millisecond
	return c
}

func TestCurrentCondition(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("appid"))
		assert.Equal(t, "-6.2088", r.URL.Query().Get("lat"))
		assert.Equal(t, "106.8456", r.URL.Query().Get("lon"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(`{"weather":[{"main":"Rain","description":"light rain"}]}`))
	})

	label, err := c.CurrentCondition(context.Background(), domain.Location{Lat: -6.2088, Lon: 106.8456})
	require.NoError(t, err)
	require.Equal(t, "Rain", label)
}

func TestCurrentCondition_Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"weather":[]}`))
	})

	_, err := c.CurrentCondition(context.Background(), domain.Location{})
	require.ErrorIs(t, err, ErrNoCondition)
}

func TestCurrentCondition_RetriesThrottling(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"weather":[{"main":"Clear"}]}`))
	})

	label, err := c.CurrentCondition(context.Background(), domain.Location{})
	require.NoError(t, err)
	require.Equal(t, "Clear", label)
	require.Equal(t, int32(3), calls.Load())
}

func TestCurrentCondition_Unauthorized(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid key", http.StatusUnauthorized)
	})

	_, err := c.CurrentCondition(context.Background(), domain.Location{})
	var se *httpx.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusUnauthorized, se.Code)
	require.Equal(t, int32(1), calls.Load())
}

func TestCurrentCondition_RateLimitHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"weather":[{"main":"Clouds"}]}`))
	})
	c2, err := NewOpenWeatherClient(Options{APIKey: "k", BaseURL: "http://unused", RatePerSecond: 0.001, Burst: 1})
	require.NoError(t, err)
	c2.http = c.http
	c2.baseURL = c.baseURL

	_, err = c2.CurrentCondition(context.Background(), domain.Location{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c2.CurrentCondition(ctx, domain.Location{})
	require.Error(t, err)
}

func TestNewOpenWeatherClient_RequiresKey(t *testing.T) {
	_, err := NewOpenWeatherClient(Options{})
	require.Error(t, err)
}

// Package weather implements ports.WeatherSource on top of the OpenWeather
// current-conditions API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/platform/httpx"
	"vrp-route-env/internal/platform/obs"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.openweathermap.org"

// ErrNoCondition is returned when the response carries no weather entry.
var ErrNoCondition = errors.New("weather response has no condition")

type currentResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// OpenWeatherClient looks up the current condition label at a coordinate.
//
// Outbound calls share one token-bucket limiter so a fleet of environments
// cannot exhaust the API quota. The client is safe for concurrent use.
type OpenWeatherClient struct {
	http    *httpx.Client
	limiter *rate.Limiter
	apiKey  string
	baseURL string
}

type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RatePerSecond caps outbound requests; 0 disables limiting.
	RatePerSecond float64
	Burst         int
}

func NewOpenWeatherClient(opts Options) (*OpenWeatherClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openweather api key is empty")
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	return &OpenWeatherClient{
		http:    httpx.NewClient(timeout),
		limiter: limiter,
		apiKey:  opts.APIKey,
		baseURL: baseURL,
	}, nil
}

// CurrentCondition returns the upstream "main" label, e.g. "Rain".
func (c *OpenWeatherClient) CurrentCondition(ctx context.Context, loc domain.Location) (_ string, err error) {
	defer obs.Time(ctx, "weather.CurrentCondition")(&err)

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("weather: rate limit: %w", err)
	}

	endpoint := c.baseURL + "/data/2.5/weather"
	resp, err := c.http.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
		q.Set("lon", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
		q.Set("appid", c.apiKey)
		q.Set("units", "metric")
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("weather: request: %w", err)
	}
	defer resp.Body.Close()

	var decoded currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("weather: decode response: %w", err)
	}

	if len(decoded.Weather) == 0 || strings.TrimSpace(decoded.Weather[0].Main) == "" {
		return "", ErrNoCondition
	}

	return decoded.Weather[0].Main, nil
}

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-scroller/internal/weather"
)

// kelvinOffset converts the API's default Kelvin readings to Celsius.
const kelvinOffset = 273.15

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	o := buildOptions("https://api.openweathermap.org/data/2.5/weather", opts)

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: o.baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: o.backoff,
		},
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Fetch queries the current weather. Units are left at the API default
// (Kelvin) and converted here. Fields missing from a well-formed payload keep
// their zero value.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, fmt.Errorf("openweather: %w", errNoAPIKey)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("q", loc.Query())

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Snapshot{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Name string `json:"name"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("openweather: read body: %w", err)
	}
	log.Printf("DEBUG: openweather: payload %s", body)

	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("openweather: decode: %w", err)
	}

	snapshot := weather.Snapshot{
		Location:     payload.Name,
		TemperatureC: payload.Main.Temp - kelvinOffset,
		HumidityPct:  int(math.Round(payload.Main.Humidity)),
		Provider:     p.name,
		FetchedAt:    time.Now().UTC(),
	}
	if len(payload.Weather) > 0 {
		snapshot.Condition = payload.Weather[0].Main
		snapshot.Description = payload.Weather[0].Description
	}
	return snapshot, nil
}

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-scroller/internal/common"
	"github.com/i474232898/weather-scroller/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...Option) *WeatherAPIProvider {
	o := buildOptions("https://api.weatherapi.com/v1/current.json", opts)

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: o.baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: o.backoff,
		},
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, fmt.Errorf("weatherapi: %w", errNoAPIKey)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "city,country".
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
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
		Current struct {
			TempC     float64 `json:"temp_c"`
			Humidity  float64 `json:"humidity"`
			Condition struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("weatherapi: decode: %w", err)
	}

	text := strings.TrimSpace(payload.Current.Condition.Text)

	return weather.Snapshot{
		Location:     payload.Location.Name,
		Condition:    mapWeatherAPICondition(text),
		Description:  strings.ToLower(text),
		TemperatureC: payload.Current.TempC,
		HumidityPct:  int(math.Round(payload.Current.Humidity)),
		Provider:     p.name,
		FetchedAt:    time.Now().UTC(),
	}, nil
}

// mapWeatherAPICondition folds WeatherAPI's free-text condition into the
// OpenWeatherMap main groups so both providers scroll the same vocabulary.
func mapWeatherAPICondition(text string) string {
	switch {
	case text == "":
		return ""
	case common.HasAnyFold(text, "thunder", "storm"):
		return "Thunderstorm"
	case common.HasAnyFold(text, "drizzle"):
		return "Drizzle"
	case common.HasAnyFold(text, "rain", "shower"):
		return "Rain"
	case common.HasAnyFold(text, "snow", "sleet", "blizzard", "ice pellets"):
		return "Snow"
	case common.HasAnyFold(text, "mist", "fog"):
		return "Mist"
	case common.HasAnyFold(text, "cloud", "overcast"):
		return "Clouds"
	case common.HasAnyFold(text, "sunny", "clear"):
		return "Clear"
	default:
		return text
	}
}

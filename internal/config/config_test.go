package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENWEATHER_API_KEY", "secret")
	t.Setenv("WEATHER_LOCATION_CITY", "Eindhoven")
	t.Setenv("WEATHER_LOCATION_COUNTRY", "NL")
	t.Setenv("TIMEZONE", "UTC")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Provider != "openweather" || cfg.APIKey() != "secret" {
		t.Fatalf("unexpected provider config: %s %q", cfg.Provider, cfg.APIKey())
	}
	if cfg.Topology != "full" || cfg.GatherInterval != 5*time.Minute || cfg.ClockInterval != time.Minute {
		t.Fatalf("unexpected cycle defaults: %s %s %s", cfg.Topology, cfg.GatherInterval, cfg.ClockInterval)
	}
	if cfg.TickInterval != 100*time.Millisecond {
		t.Fatalf("expected 100ms tick, got %s", cfg.TickInterval)
	}
	if cfg.NetworkProbeAddr != "api.openweathermap.org:443" {
		t.Fatalf("unexpected probe address %q", cfg.NetworkProbeAddr)
	}
	if cfg.Location.Query() != "Eindhoven,NL" {
		t.Fatalf("unexpected location %+v", cfg.Location)
	}
	if cfg.Timezone != time.UTC {
		t.Fatalf("expected UTC timezone, got %v", cfg.Timezone)
	}
}

func TestWeatherTopologyDefaultsToOneMinute(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CYCLE_TOPOLOGY", "weather")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GatherInterval != time.Minute {
		t.Fatalf("expected 1m gather interval, got %s", cfg.GatherInterval)
	}
}

func TestWeatherAPIProvider(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("WEATHER_PROVIDER", "weatherapi")
	t.Setenv("WEATHERAPI_API_KEY", "other")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey() != "other" || cfg.NetworkProbeAddr != "api.weatherapi.com:443" {
		t.Fatalf("unexpected weatherapi config: %q %q", cfg.APIKey(), cfg.NetworkProbeAddr)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing key":      {"OPENWEATHER_API_KEY": ""},
		"missing city":     {"WEATHER_LOCATION_CITY": ""},
		"unknown provider": {"WEATHER_PROVIDER": "openmeteo"},
		"unknown topology": {"CYCLE_TOPOLOGY": "spiral"},
		"bad duration":     {"GATHER_INTERVAL": "soon"},
		"tick too slow":    {"TICK_INTERVAL": "5s"},
		"bad timezone":     {"TIMEZONE": "Mars/Olympus"},
		"bad time format":  {"TIME_FORMAT": "seconds"},
		"bad output":       {"DISPLAY_OUTPUT": "hdmi"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-scroller/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	// Weather source.
	Provider          string `validate:"oneof=openweather weatherapi"`
	OpenWeatherAPIKey string `validate:"required_if=Provider openweather"`
	WeatherAPIKey     string `validate:"required_if=Provider weatherapi"`
	Location          weather.Location
	HTTPTimeout       time.Duration `validate:"gt=0"`
	HTTPMaxRetries    int           `validate:"gte=0,lte=10"`

	// Display cycle.
	Topology       string        `validate:"oneof=full weather"`
	TickInterval   time.Duration `validate:"gte=10ms,lte=1s"`
	GatherInterval time.Duration `validate:"gte=1s"`
	ClockInterval  time.Duration `validate:"gte=1s"`
	GatherMode     string        `validate:"oneof=async sync"`
	CycleDebug     bool

	// Time of day.
	NTPServer         string        `validate:"required,hostname_port"`
	NTPResyncInterval time.Duration `validate:"gte=1m"`
	Timezone          *time.Location
	TimeFormat        string `validate:"oneof=colon compact"`

	// Connectivity probe.
	NetworkProbeAddr     string        `validate:"required,hostname_port"`
	NetworkProbeInterval time.Duration `validate:"gte=1s"`

	// LED matrix.
	DisplayWidth  int           `validate:"gte=8,lte=512"`
	DisplayHeight int           `validate:"gte=6,lte=64"`
	DisplaySpeed  time.Duration `validate:"gt=0"`
	DisplayPause  time.Duration `validate:"gte=0"`
	DisplayOutput string        `validate:"oneof=ansi plain none"`

	// Snapshot history kept for the status API (0 = unlimited).
	StoreMaxHistory int `validate:"gte=0"`

	Port string `validate:"required,numeric"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Provider = getenvDefault("WEATHER_PROVIDER", "openweather")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.Location = weather.Location{
		City:    strings.TrimSpace(os.Getenv("WEATHER_LOCATION_CITY")),
		Country: strings.TrimSpace(os.Getenv("WEATHER_LOCATION_COUNTRY")),
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	cfg.HTTPMaxRetries = getenvInt("HTTP_MAX_RETRIES", 0)

	cfg.Topology = getenvDefault("CYCLE_TOPOLOGY", "full")
	if cfg.TickInterval, err = getenvDuration("TICK_INTERVAL", "100ms"); err != nil {
		return nil, err
	}
	// The weather-only cycle refreshes every minute, the full cycle every five.
	defaultGather := "5m"
	if cfg.Topology == "weather" {
		defaultGather = "1m"
	}
	if cfg.GatherInterval, err = getenvDuration("GATHER_INTERVAL", defaultGather); err != nil {
		return nil, err
	}
	if cfg.ClockInterval, err = getenvDuration("CLOCK_INTERVAL", "1m"); err != nil {
		return nil, err
	}
	cfg.GatherMode = getenvDefault("GATHER_MODE", "async")
	cfg.CycleDebug = getenvBool("CYCLE_DEBUG", false)

	cfg.NTPServer = getenvDefault("NTP_SERVER", "pool.ntp.org:123")
	if cfg.NTPResyncInterval, err = getenvDuration("NTP_RESYNC_INTERVAL", "24h"); err != nil {
		return nil, err
	}
	tz := getenvDefault("TIMEZONE", "Local")
	if cfg.Timezone, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.TimeFormat = getenvDefault("TIME_FORMAT", "colon")

	cfg.NetworkProbeAddr = getenvDefault("NETWORK_PROBE_ADDR", defaultProbeAddr(cfg.Provider))
	if cfg.NetworkProbeInterval, err = getenvDuration("NETWORK_PROBE_INTERVAL", "30s"); err != nil {
		return nil, err
	}

	cfg.DisplayWidth = getenvInt("DISPLAY_WIDTH", 32)
	cfg.DisplayHeight = getenvInt("DISPLAY_HEIGHT", 8)
	if cfg.DisplaySpeed, err = getenvDuration("DISPLAY_SPEED", "100ms"); err != nil {
		return nil, err
	}
	if cfg.DisplayPause, err = getenvDuration("DISPLAY_PAUSE", "2s"); err != nil {
		return nil, err
	}
	cfg.DisplayOutput = getenvDefault("DISPLAY_OUTPUT", "ansi")

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 8h at 5-minute gathers
	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaultProbeAddr(provider string) string {
	if provider == "weatherapi" {
		return "api.weatherapi.com:443"
	}
	return "api.openweathermap.org:443"
}

// APIKey returns the key of the selected provider.
func (c *AppConfig) APIKey() string {
	if c.Provider == "weatherapi" {
		return c.WeatherAPIKey
	}
	return c.OpenWeatherAPIKey
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

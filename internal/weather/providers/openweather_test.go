package providers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/i474232898/weather-scroller/internal/weather"
)

var testLoc = weather.Location{City: "Eindhoven", Country: "NL"}

func newOpenWeatherServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("appid"); got != "secret" {
			t.Errorf("expected appid=secret, got %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "Eindhoven,NL" {
			t.Errorf("expected q=Eindhoven,NL, got %q", got)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenWeatherFetchConvertsKelvin(t *testing.T) {
	srv := newOpenWeatherServer(t, http.StatusOK, `{
		"name": "Eindhoven",
		"main": {"temp": 293.65, "humidity": 64},
		"weather": [{"main": "Clouds", "description": "scattered clouds"}]
	}`)

	p := NewOpenWeatherProvider(srv.Client(), "secret", WithBaseURL(srv.URL))
	s, err := p.Fetch(context.Background(), testLoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Location != "Eindhoven" || s.Condition != "Clouds" || s.Description != "scattered clouds" {
		t.Fatalf("unexpected text fields: %+v", s)
	}
	if math.Abs(s.TemperatureC-20.5) > 1e-9 {
		t.Fatalf("expected 20.5 C, got %v", s.TemperatureC)
	}
	if s.HumidityPct != 64 {
		t.Fatalf("expected humidity 64, got %d", s.HumidityPct)
	}
	if s.Cleared() {
		t.Fatalf("expected populated snapshot")
	}
}

func TestOpenWeatherMissingFieldsKeepZeroValues(t *testing.T) {
	srv := newOpenWeatherServer(t, http.StatusOK, `{}`)

	p := NewOpenWeatherProvider(srv.Client(), "secret", WithBaseURL(srv.URL))
	s, err := p.Fetch(context.Background(), testLoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Location != "" || s.Condition != "" {
		t.Fatalf("expected empty text fields, got %+v", s)
	}
	if math.Abs(s.TemperatureC+273.15) > 1e-9 {
		t.Fatalf("expected -273.15 C for a missing temperature, got %v", s.TemperatureC)
	}
}

func TestOpenWeatherServerError(t *testing.T) {
	srv := newOpenWeatherServer(t, http.StatusInternalServerError, `oops`)

	p := NewOpenWeatherProvider(srv.Client(), "secret", WithBaseURL(srv.URL))
	_, err := p.Fetch(context.Background(), testLoc)
	if !errors.Is(err, errServerError) {
		t.Fatalf("expected errServerError, got %v", err)
	}
}

func TestOpenWeatherUnauthorized(t *testing.T) {
	srv := newOpenWeatherServer(t, http.StatusUnauthorized, `{"cod":401}`)

	p := NewOpenWeatherProvider(srv.Client(), "secret", WithBaseURL(srv.URL))
	_, err := p.Fetch(context.Background(), testLoc)
	if !errors.Is(err, errUnexpected) {
		t.Fatalf("expected errUnexpected, got %v", err)
	}
}

func TestOpenWeatherMalformedPayload(t *testing.T) {
	srv := newOpenWeatherServer(t, http.StatusOK, `{"name": `)

	p := NewOpenWeatherProvider(srv.Client(), "secret", WithBaseURL(srv.URL))
	if _, err := p.Fetch(context.Background(), testLoc); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestOpenWeatherRetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"name":"Eindhoven","main":{"temp":273.15,"humidity":50},"weather":[{"main":"Snow","description":"light snow"}]}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "secret", WithBaseURL(srv.URL), WithMaxRetries(1))
	s, err := p.Fetch(context.Background(), testLoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if s.Condition != "Snow" || s.TemperatureC != 0 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestOpenWeatherMissingKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "")
	if _, err := p.Fetch(context.Background(), testLoc); !errors.Is(err, errNoAPIKey) {
		t.Fatalf("expected errNoAPIKey, got %v", err)
	}
}

func TestForName(t *testing.T) {
	if p, err := ForName("openweather", http.DefaultClient, "k"); err != nil || p.Name() != "openweathermap" {
		t.Fatalf("unexpected provider %v, err %v", p, err)
	}
	if p, err := ForName("weatherapi", http.DefaultClient, "k"); err != nil || p.Name() != "weatherapi" {
		t.Fatalf("unexpected provider %v, err %v", p, err)
	}
	if _, err := ForName("openmeteo", http.DefaultClient, "k"); !errors.Is(err, errUnknown) {
		t.Fatalf("expected errUnknown, got %v", err)
	}
}

package weather

import (
	"fmt"
	"strconv"
	"time"
)

// Location represents the place the device reports weather for.
// City must be provided.
type Location struct {
	City    string `json:"city" validate:"required"`
	Country string `json:"country"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// Query returns the "city,country" form accepted by the weather APIs.
func (l Location) Query() string {
	if l.Country == "" {
		return l.City
	}
	return fmt.Sprintf("%s,%s", l.City, l.Country)
}

// Snapshot is the result of one fetch attempt.
//
// The measured fields are either all populated from one successful fetch or
// all cleared. Sequence is stamped by the Service on every attempt and is not
// part of that rule.
type Snapshot struct {
	Location     string    `json:"location"`
	Condition    string    `json:"condition"`
	Description  string    `json:"description"`
	TemperatureC float64   `json:"temperatureC"`
	HumidityPct  int       `json:"humidityPercent"`
	Provider     string    `json:"provider,omitempty"`
	FetchedAt    time.Time `json:"fetchedAt"` // zero when cleared
	Sequence     int       `json:"sequence"`
}

// Cleared reports whether the snapshot carries no measurement.
func (s Snapshot) Cleared() bool {
	return s.FetchedAt.IsZero()
}

// Format renders the snapshot as the single line scrolled on the display.
func (s Snapshot) Format() string {
	var temp, hum string
	if !s.Cleared() {
		temp = strconv.FormatFloat(s.TemperatureC, 'f', 2, 64)
		hum = strconv.Itoa(s.HumidityPct)
	}
	return fmt.Sprintf("%s, %s: %s. T: %s C, H: %s%% ==== [Counter %d]",
		s.Location, s.Condition, s.Description, temp, hum, s.Sequence)
}

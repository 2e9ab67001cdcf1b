package weather

import (
	"context"
)

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI).
// A successful Fetch returns a populated snapshot; Sequence is left for the
// Service to stamp.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (Snapshot, error)
}

// Link reports whether the device currently has network connectivity.
type Link interface {
	Connected() bool
}

// Store is the contract the in-memory snapshot history must satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot Snapshot)
	GetLatest(loc Location) (Snapshot, error)
	GetRecent(loc Location, limit int) ([]Snapshot, error)
}

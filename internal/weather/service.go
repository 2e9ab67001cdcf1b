package weather

import (
	"context"
	"errors"
	"log"
	"time"

	"go.uber.org/atomic"
)

// ErrNoData is returned when no fetch result has been recorded.
var ErrNoData = errors.New("no weather data for location")

// Service performs one fetch per call against the configured provider and
// records the outcome. It never returns an error: every failure is absorbed
// here and surfaces only as a cleared snapshot.
type Service struct {
	provider Provider
	link     Link
	store    Store
	location Location
	timeout  time.Duration

	// sequence counts fetch attempts that reached the provider, for the life
	// of the process. Offline skips do not count.
	sequence atomic.Int64
}

// NewService creates a new Service. link and store may be nil.
func NewService(provider Provider, link Link, store Store, loc Location, timeout time.Duration) *Service {
	return &Service{
		provider: provider,
		link:     link,
		store:    store,
		location: loc,
		timeout:  timeout,
	}
}

// Fetch runs one blocking fetch-and-parse and returns the resulting snapshot,
// populated on success and cleared on any failure. A failed request advances
// the sequence; a skip because the link is down keeps it.
func (s *Service) Fetch(ctx context.Context) Snapshot {
	snapshot, attempted := s.fetch(ctx)
	if attempted {
		snapshot.Sequence = int(s.sequence.Inc())
	} else {
		snapshot.Sequence = int(s.sequence.Load())
	}

	if s.store != nil {
		s.store.SaveSnapshot(s.location, snapshot)
	}
	return snapshot
}

func (s *Service) fetch(ctx context.Context) (Snapshot, bool) {
	if s.provider == nil {
		log.Printf("ERROR: No provider available to fetch weather data for %s", s.location.Key())
		return Snapshot{}, false
	}
	if s.link != nil && !s.link.Connected() {
		log.Printf("INFO: network unavailable; skipping %s fetch for %s", s.provider.Name(), s.location.Key())
		return Snapshot{}, false
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	snapshot, err := s.provider.Fetch(ctx, s.location)
	if err != nil {
		log.Printf("provider %s fetch failed for %s: %v", s.provider.Name(), s.location.Key(), err)
		return Snapshot{}, true
	}
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now().UTC()
	}
	return snapshot, true
}

// Sequence returns the number of fetch attempts so far.
func (s *Service) Sequence() int {
	return int(s.sequence.Load())
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest() (Snapshot, error) {
	if s.store == nil {
		return Snapshot{}, ErrNoData
	}
	return s.store.GetLatest(s.location)
}

// GetRecent delegates to the underlying store.
func (s *Service) GetRecent(limit int) ([]Snapshot, error) {
	if s.store == nil {
		return nil, ErrNoData
	}
	return s.store.GetRecent(s.location, limit)
}

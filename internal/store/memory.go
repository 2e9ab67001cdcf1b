package store

import (
	sync "github.com/sasha-s/go-deadlock"

	"github.com/i474232898/weather-scroller/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = weather.ErrNoData
)

// SnapshotHistory holds the fetch results for a location, oldest first.
type SnapshotHistory struct {
	Snapshots []weather.Snapshot
}

// MemoryStore is a concurrency-safe in-memory history of fetch results.
// Cleared snapshots from failed fetches are kept too: they are what the
// display showed.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: history
	data map[string]*SnapshotHistory

	maxHistory int // max number of snapshots per location
}

// NewMemoryStore creates a new MemoryStore.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
	}
}

// SaveSnapshot appends a new snapshot for a location and enforces retention.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.Snapshot) {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &SnapshotHistory{}
		s.data[key] = history
	}

	history.Snapshots = append(history.Snapshots, snapshot)

	if s.maxHistory > 0 && len(history.Snapshots) > s.maxHistory {
		over := len(history.Snapshots) - s.maxHistory
		history.Snapshots = append([]weather.Snapshot(nil), history.Snapshots[over:]...)
	}
}

// GetLatest returns the most recent snapshot for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.Snapshot, error) {
	key := loc.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Snapshots) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}

// GetRecent returns up to limit of the newest snapshots for a location,
// oldest first. A limit <= 0 returns the whole history.
func (s *MemoryStore) GetRecent(loc weather.Location, limit int) ([]weather.Snapshot, error) {
	key := loc.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Snapshots) == 0 {
		return nil, ErrNotFound
	}

	start := 0
	if limit > 0 && len(history.Snapshots) > limit {
		start = len(history.Snapshots) - limit
	}

	result := make([]weather.Snapshot, len(history.Snapshots)-start)
	copy(result, history.Snapshots[start:])
	return result, nil
}

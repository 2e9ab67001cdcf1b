package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-scroller/internal/weather"
)

var testLoc = weather.Location{City: "Eindhoven", Country: "NL"}

func TestGetLatestEmpty(t *testing.T) {
	s := NewMemoryStore(10)

	if _, err := s.GetLatest(testLoc); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetRecent(testLoc, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRetentionByCount(t *testing.T) {
	s := NewMemoryStore(3)

	for i := 1; i <= 5; i++ {
		s.SaveSnapshot(testLoc, weather.Snapshot{Sequence: i, FetchedAt: time.Now()})
	}

	all, err := s.GetRecent(testLoc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(all))
	}
	if all[0].Sequence != 3 || all[2].Sequence != 5 {
		t.Fatalf("unexpected retained sequences: %d..%d", all[0].Sequence, all[2].Sequence)
	}

	latest, err := s.GetLatest(testLoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.Sequence != 5 {
		t.Fatalf("expected latest sequence 5, got %d", latest.Sequence)
	}
}

func TestGetRecentLimitAndCopy(t *testing.T) {
	s := NewMemoryStore(0)

	for i := 1; i <= 4; i++ {
		s.SaveSnapshot(testLoc, weather.Snapshot{Sequence: i})
	}

	recent, err := s.GetRecent(testLoc, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 2 || recent[0].Sequence != 3 || recent[1].Sequence != 4 {
		t.Fatalf("unexpected recent snapshots: %+v", recent)
	}

	recent[0].Sequence = 99
	again, _ := s.GetRecent(testLoc, 2)
	if again[0].Sequence != 3 {
		t.Fatalf("store history was mutated through returned slice")
	}
}

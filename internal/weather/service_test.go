package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

type stubProvider struct {
	calls    int
	snapshot Snapshot
	err      error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Fetch(ctx context.Context, loc Location) (Snapshot, error) {
	p.calls++
	if _, ok := ctx.Deadline(); !ok {
		return Snapshot{}, errors.New("fetch without deadline")
	}
	return p.snapshot, p.err
}

type stubLink bool

func (l *stubLink) Connected() bool { return bool(*l) }

type stubStore struct {
	saved []Snapshot
}

func (s *stubStore) SaveSnapshot(loc Location, snapshot Snapshot) {
	s.saved = append(s.saved, snapshot)
}

func (s *stubStore) GetLatest(loc Location) (Snapshot, error) {
	return s.saved[len(s.saved)-1], nil
}

func (s *stubStore) GetRecent(loc Location, limit int) ([]Snapshot, error) {
	return s.saved, nil
}

var testLoc = Location{City: "Eindhoven", Country: "NL"}

func goodSnapshot() Snapshot {
	return Snapshot{
		Location:     "Eindhoven",
		Condition:    "Clear",
		Description:  "clear sky",
		TemperatureC: 20.5,
		HumidityPct:  40,
		FetchedAt:    time.Now().UTC(),
	}
}

func TestFetchStampsSequence(t *testing.T) {
	c := qt.New(t)

	p := &stubProvider{snapshot: goodSnapshot()}
	st := &stubStore{}
	link := stubLink(true)
	svc := NewService(p, &link, st, testLoc, time.Second)

	for want := 1; want <= 3; want++ {
		s := svc.Fetch(context.Background())
		c.Assert(s.Cleared(), qt.IsFalse)
		c.Assert(s.Sequence, qt.Equals, want)
	}
	c.Assert(svc.Sequence(), qt.Equals, 3)
	c.Assert(st.saved, qt.HasLen, 3)
}

func TestFetchFailureClearsButCounts(t *testing.T) {
	c := qt.New(t)

	p := &stubProvider{snapshot: goodSnapshot()}
	svc := NewService(p, nil, &stubStore{}, testLoc, time.Second)

	first := svc.Fetch(context.Background())
	c.Assert(first.Sequence, qt.Equals, 1)

	p.err = errors.New("boom")
	failed := svc.Fetch(context.Background())
	c.Assert(failed.Cleared(), qt.IsTrue)
	c.Assert(failed.Location, qt.Equals, "")
	c.Assert(failed.Condition, qt.Equals, "")
	c.Assert(failed.Sequence, qt.Equals, 2)

	p.err = nil
	again := svc.Fetch(context.Background())
	c.Assert(again.Sequence, qt.Equals, 3)
}

func TestFetchOfflineSkipsProviderAndKeepsSequence(t *testing.T) {
	c := qt.New(t)

	p := &stubProvider{snapshot: goodSnapshot()}
	st := &stubStore{}
	link := stubLink(true)
	svc := NewService(p, &link, st, testLoc, time.Second)

	c.Assert(svc.Fetch(context.Background()).Sequence, qt.Equals, 1)

	link = false
	s := svc.Fetch(context.Background())
	c.Assert(p.calls, qt.Equals, 1)
	c.Assert(s.Cleared(), qt.IsTrue)
	c.Assert(s.Sequence, qt.Equals, 1)
	c.Assert(svc.Sequence(), qt.Equals, 1)
	c.Assert(st.saved, qt.HasLen, 2)

	link = true
	c.Assert(svc.Fetch(context.Background()).Sequence, qt.Equals, 2)
}

func TestReadsWithoutStore(t *testing.T) {
	c := qt.New(t)

	svc := NewService(&stubProvider{snapshot: goodSnapshot()}, nil, nil, testLoc, time.Second)

	_, err := svc.GetLatest()
	c.Assert(errors.Is(err, ErrNoData), qt.IsTrue)

	recent, err := svc.GetRecent(5)
	c.Assert(errors.Is(err, ErrNoData), qt.IsTrue)
	c.Assert(recent, qt.HasLen, 0)
}

func TestFetchFillsMissingTimestamp(t *testing.T) {
	c := qt.New(t)

	snap := goodSnapshot()
	snap.FetchedAt = time.Time{}
	svc := NewService(&stubProvider{snapshot: snap}, nil, nil, testLoc, time.Second)

	c.Assert(svc.Fetch(context.Background()).Cleared(), qt.IsFalse)
}

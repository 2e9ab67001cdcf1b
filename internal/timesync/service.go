// Package timesync keeps a network-corrected wall clock for the display.
//
// The host clock is corrected by an offset measured against an NTP server
// once at startup, and again whenever Resync runs. Until the first successful
// sync the uncorrected host clock is used.
package timesync

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
)

// Format selects how the time of day is rendered.
type Format string

const (
	// FormatColon renders "15:04".
	FormatColon Format = "colon"
	// FormatCompact renders "1504".
	FormatCompact Format = "compact"
)

func (f Format) layout() (string, error) {
	switch f {
	case FormatColon, "":
		return "15:04", nil
	case FormatCompact:
		return "1504", nil
	default:
		return "", fmt.Errorf("unknown time format %q", f)
	}
}

// QueryFunc asks a time server for the current time.
type QueryFunc func(ctx context.Context, host string) (time.Time, error)

// Service resolves the current local time.
type Service struct {
	server   string
	location *time.Location
	layout   string
	clock    clock.Clock
	query    QueryFunc

	mu       sync.RWMutex
	offset   time.Duration
	syncedAt time.Time
}

// New creates a Service that syncs against server ("host:port") and formats
// times in loc.
func New(server string, loc *time.Location, format Format, clk clock.Clock) (*Service, error) {
	layout, err := format.layout()
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	if clk == nil {
		clk = clock.NewClock()
	}
	return &Service{
		server:   server,
		location: loc,
		layout:   layout,
		clock:    clk,
		query:    Query,
	}, nil
}

// WithQuery replaces the network query, for tests and alternative sources.
func (s *Service) WithQuery(q QueryFunc) *Service {
	s.query = q
	return s
}

// Sync measures the offset between the host clock and the time server.
func (s *Service) Sync(ctx context.Context) error {
	sent := s.clock.Now()
	server, err := s.query(ctx, s.server)
	if err != nil {
		return fmt.Errorf("ntp query %s: %w", s.server, err)
	}
	received := s.clock.Now()

	// Assume the reply was stamped halfway through the round trip.
	local := sent.Add(received.Sub(sent) / 2)
	offset := server.Sub(local)

	s.mu.Lock()
	s.offset = offset
	s.syncedAt = received
	s.mu.Unlock()

	log.Printf("INFO: timesync: synced with %s, offset %s", s.server, offset)
	return nil
}

// Resync is the periodic job form of Sync: failures are logged and the
// previous offset is kept.
func (s *Service) Resync(ctx context.Context) {
	if err := s.Sync(ctx); err != nil {
		log.Printf("timesync: resync failed, keeping previous offset: %v", err)
	}
}

// Synced reports whether at least one sync succeeded.
func (s *Service) Synced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.syncedAt.IsZero()
}

// Now returns the corrected current time in the configured location.
func (s *Service) Now() time.Time {
	s.mu.RLock()
	offset := s.offset
	s.mu.RUnlock()
	return s.clock.Now().Add(offset).In(s.location)
}

// Format returns the current time of day in the configured pattern.
func (s *Service) Format() string {
	return s.Now().Format(s.layout)
}

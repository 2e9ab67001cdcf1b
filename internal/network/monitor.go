package network

import (
	"context"
	"log"
	"net"
	"time"

	"go.uber.org/atomic"
)

// DialFunc opens a connection; it matches (*net.Dialer).DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Monitor tracks whether the weather API host is reachable. Probe is run by
// the scheduler; Connected is read by the weather service before each fetch.
type Monitor struct {
	addr    string
	timeout time.Duration
	dial    DialFunc

	up       *atomic.Bool
	failures *atomic.Int64
}

// NewMonitor creates a Monitor probing addr ("host:port") over TCP. The link
// is assumed up until the first probe says otherwise.
func NewMonitor(addr string, timeout time.Duration) *Monitor {
	d := &net.Dialer{}
	return &Monitor{
		addr:     addr,
		timeout:  timeout,
		dial:     d.DialContext,
		up:       atomic.NewBool(true),
		failures: atomic.NewInt64(0),
	}
}

// Probe dials the target once and records the result.
func (m *Monitor) Probe(ctx context.Context) bool {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	conn, err := m.dial(ctx, "tcp", m.addr)
	if err != nil {
		n := m.failures.Inc()
		if m.up.CAS(true, false) {
			log.Printf("network: %s unreachable: %v", m.addr, err)
		} else {
			log.Printf("DEBUG: network: %s still unreachable (%d probes): %v", m.addr, n, err)
		}
		return false
	}
	_ = conn.Close()

	m.failures.Store(0)
	if m.up.CAS(false, true) {
		log.Printf("INFO: network: %s reachable again", m.addr)
	}
	return true
}

// Connected reports the result of the last probe.
func (m *Monitor) Connected() bool {
	return m.up.Load()
}

package network

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestProbeReachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("tcp not available: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	m := NewMonitor(ln.Addr().String(), time.Second)
	if !m.Probe(context.Background()) {
		t.Fatalf("expected probe to succeed")
	}
	if !m.Connected() {
		t.Fatalf("expected connected")
	}
}

func TestProbeUnreachableThenRecovers(t *testing.T) {
	m := NewMonitor("device.test:443", time.Second)

	fail := true
	m.dial = func(ctx context.Context, network, address string) (net.Conn, error) {
		if fail {
			return nil, &net.OpError{Op: "dial", Net: network, Err: context.DeadlineExceeded}
		}
		client, server := net.Pipe()
		_ = server.Close()
		return client, nil
	}

	if !m.Connected() {
		t.Fatalf("expected link assumed up before first probe")
	}
	if m.Probe(context.Background()) {
		t.Fatalf("expected probe to fail")
	}
	if m.Connected() {
		t.Fatalf("expected disconnected after failed probe")
	}
	m.Probe(context.Background())
	if got := m.failures.Load(); got != 2 {
		t.Fatalf("expected 2 consecutive failures, got %d", got)
	}

	fail = false
	if !m.Probe(context.Background()) {
		t.Fatalf("expected probe to succeed")
	}
	if !m.Connected() || m.failures.Load() != 0 {
		t.Fatalf("expected connected with failures reset")
	}
}

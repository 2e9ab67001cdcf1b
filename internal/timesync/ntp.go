package timesync

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const ntpPacketSize = 48

// modeServer is the mode field of a server reply.
const modeServer = 4

var (
	errNotServerReply = errors.New("ntp: reply is not in server mode")
	errKissOfDeath    = errors.New("ntp: kiss-o'-death reply (stratum 0)")
	errNoTimestamp    = errors.New("ntp: reply has no transmit timestamp")
)

// ntpEpochOffset is the number of seconds between the NTP epoch (1900) and
// the Unix epoch (1970).
const ntpEpochOffset = 2208988800

// Query sends a single SNTP request to host ("host:port") and returns the
// server's transmit time.
//
// based on https://github.com/tinygo-org/drivers/blob/release/examples/net/ntpclient/main.go
func Query(ctx context.Context, host string) (time.Time, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", host)
	if err != nil {
		return time.Time{}, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return time.Time{}, err
		}
	}

	return getCurrentTime(conn)
}

func getCurrentTime(conn net.Conn) (time.Time, error) {
	if err := sendNTPpacket(conn); err != nil {
		return time.Time{}, err
	}

	response := make([]byte, ntpPacketSize)
	n, err := conn.Read(response)
	if err != nil && err != io.EOF {
		return time.Time{}, err
	}
	if n != ntpPacketSize {
		return time.Time{}, fmt.Errorf("expected NTP packet size of %d: %d", ntpPacketSize, n)
	}

	return parseNTPPacket(response)
}

func sendNTPpacket(conn net.Conn) error {
	// LI = 0, version = 4, mode = 3 (client)
	var request = [ntpPacketSize]byte{
		0xe3,
	}

	_, err := conn.Write(request[:])
	return err
}

// parseNTPPacket checks the reply header and reads the transmit timestamp,
// which starts at byte 40: four bytes of seconds since 1900 followed by four
// bytes of binary fraction.
func parseNTPPacket(r []byte) (time.Time, error) {
	if len(r) < ntpPacketSize {
		return time.Time{}, fmt.Errorf("expected NTP packet size of %d: %d", ntpPacketSize, len(r))
	}
	if mode := r[0] & 0x7; mode != modeServer {
		return time.Time{}, fmt.Errorf("%w: mode %d", errNotServerReply, mode)
	}
	if r[1] == 0 {
		return time.Time{}, errKissOfDeath
	}

	secs := binary.BigEndian.Uint32(r[40:44])
	frac := binary.BigEndian.Uint32(r[44:48])
	if secs == 0 {
		return time.Time{}, errNoTimestamp
	}

	nanos := (int64(frac) * int64(time.Second)) >> 32
	return time.Unix(int64(secs)-ntpEpochOffset, nanos), nil
}

// Package udp implements the bridge's fire-and-forget real-time parameter
// sender: one outbound UDP port, no reads, no retries, no ordering
// guarantee.
package udp

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// maxDatagramBytes is the sender's safe UDP payload limit, comfortably
// under the common 1500-byte Ethernet MTU once IP/UDP headers are
// accounted for.
const maxDatagramBytes = 1200

// Message is the minimal JSON envelope carried on the real-time
// channel.
type Message struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// Sender owns the outbound real-time UDP socket. It is safe for concurrent
// use: net.UDPConn.Write is safe to call from multiple goroutines, and
// there is no shared mutable state beyond the socket itself.
type Sender struct {
	conn *net.UDPConn
}

// Dial opens the outbound UDP socket to addr ("host:port"). No connection
// handshake occurs at the UDP level; this only fixes the destination for
// subsequent Writes.
func Dial(addr string) (*Sender, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.Internal, "resolving real-time UDP address", err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.Disconnected, "dialing real-time UDP socket", err)
	}
	return &Sender{conn: conn}, nil
}

// Send encodes msg as JSON and writes it as a single datagram. It returns
// immediately after the write syscall; there is no acknowledgment, no
// retry, and out-of-order delivery relative to other Send calls is
// expected and accepted by callers.
func (s *Sender) Send(msg Message) error {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return bridgeerr.Wrap(bridgeerr.Internal, "encoding real-time message", err)
	}
	if len(encoded) > maxDatagramBytes {
		return bridgeerr.New(bridgeerr.InvalidInput,
			fmt.Sprintf("real-time payload %d bytes exceeds %d byte limit", len(encoded), maxDatagramBytes))
	}
	if _, err := s.conn.Write(encoded); err != nil {
		return bridgeerr.Wrap(bridgeerr.Disconnected, "writing real-time datagram", err)
	}
	return nil
}

// Close releases the socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}

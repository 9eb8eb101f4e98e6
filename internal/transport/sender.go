// Package transport implements the UDP reliability layer that feeds the
// session/dispatch and sync layers: datagram framing redundancy on send,
// sequence-gated de-duplication on receive, and the reader/writer/control
// goroutines bound to the listening sockets.
package transport

import (
	"sync"

	"github.com/kaillera-go/relay/internal/protocol"
)

const ringSize = 3

// RedundantSender bundles the last three outgoing messages into every
// datagram (§4.2), giving roughly 3x redundancy so a single lost datagram
// rarely drops a logical message. One sender belongs to exactly one
// client; all of a client's outbound traffic passes through it, which is
// what keeps that client's message order intact end to end.
type RedundantSender struct {
	mu   sync.Mutex
	seq  uint16
	ring [][]byte // newest last; at most ringSize entries
}

func NewRedundantSender() *RedundantSender {
	return &RedundantSender{}
}

// Send builds message(seq, t, payload), pushes it into the ring, and
// returns the datagram to write to the socket: count:u8 followed by the
// ring in newest-first order.
func (s *RedundantSender) Send(t byte, payload []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := protocol.Encode(protocol.Message{Seq: s.seq, Type: t, Payload: payload})
	s.seq++

	s.ring = append(s.ring, msg)
	if len(s.ring) > ringSize {
		s.ring = s.ring[1:]
	}

	out := make([]byte, 0, 1+len(s.ring)*8)
	out = append(out, byte(len(s.ring)))
	for i := len(s.ring) - 1; i >= 0; i-- {
		out = append(out, s.ring[i]...)
	}
	return out
}

// NextSeq reports the sequence that will be assigned to the next
// message, for tests and diagnostics.
func (s *RedundantSender) NextSeq() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

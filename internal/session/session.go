// Package session maps peer addresses to sessions (§4.4): each session
// owns the per-peer redundant sender and receive de-duplicator, tracks
// last-seen time for idle eviction, and is the dispatch boundary that
// contains handler panics so one bad message never takes down the
// process or another peer's session.
package session

import (
	"net"
	"sync"
	"time"

	"github.com/kaillera-go/relay/internal/transport"
)

// Session is one peer's connection state.
type Session struct {
	Addr   *net.UDPAddr
	Sender *transport.RedundantSender
	Dedup  *transport.Deduplicator

	mu       sync.Mutex
	lastSeen time.Time
}

func newSession(addr *net.UDPAddr) *Session {
	return &Session{
		Addr:     addr,
		Sender:   transport.NewRedundantSender(),
		Dedup:    transport.NewDeduplicator(),
		lastSeen: time.Now(),
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// IdleSince reports how long this session has gone without a message.
func (s *Session) IdleSince() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastSeen)
}

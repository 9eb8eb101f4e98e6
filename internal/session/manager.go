package session

import (
	"net"
	"sync"
	"time"

	"github.com/kaillera-go/relay/internal/logger"
	"github.com/kaillera-go/relay/internal/metrics"
	"github.com/kaillera-go/relay/internal/protocol"
)

// MessageHandler processes one message that has already cleared the
// per-peer dedup gate. Dispatch is best-effort per §4.4: a handler error
// or panic is logged and contained, never fatal to the process or to
// other sessions.
type MessageHandler func(s *Session, msg protocol.Message)

// EvictFunc is called when a session is swept for idling past the
// timeout, so the caller can remove associated lobby/game state.
type EvictFunc func(addr *net.UDPAddr)

// Manager owns every live session, keyed by peer address.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	idleTimeout time.Duration
	handler     MessageHandler
	onEvict     EvictFunc
}

func NewManager(idleTimeout time.Duration, handler MessageHandler, onEvict EvictFunc) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		handler:     handler,
		onEvict:     onEvict,
	}
}

// getOrCreate returns the session for addr, creating one on first sight.
func (m *Manager) getOrCreate(addr *net.UDPAddr) *Session {
	key := addr.String()

	m.mu.RLock()
	s, ok := m.sessions[key]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s
	}
	s = newSession(addr)
	m.sessions[key] = s
	metrics.SessionsActive.Inc()
	return s
}

// Dispatch is the transport.Handler entry point: one decoded datagram's
// worth of (redundant) messages arrives per call, still ungated. It is
// run through the session's dedup gate as one unit so the single-message
// seq==0 reset rule (§4.3) sees the whole datagram, then every admitted
// message is handed to the configured handler in sequence order.
func (m *Manager) Dispatch(addr *net.UDPAddr, messages []protocol.Message) {
	s := m.getOrCreate(addr)
	s.touch()

	admitted := s.Dedup.Admit(messages)
	for _, am := range admitted {
		m.runHandler(s, am)
	}
}

func (m *Manager) runHandler(s *Session, msg protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("session: handler panic for %s: %v", s.Addr, r)
		}
	}()
	m.handler(s, msg)
}

// Get returns the session for addr, if one exists.
func (m *Manager) Get(addr *net.UDPAddr) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[addr.String()]
	return s, ok
}

// Remove evicts a session immediately (e.g. on explicit quit).
func (m *Manager) Remove(addr *net.UDPAddr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[addr.String()]; ok {
		delete(m.sessions, addr.String())
		metrics.SessionsActive.Dec()
	}
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SweepOnce evicts every session idle past idleTimeout, invoking onEvict
// for each so the caller can tear down associated client/game state.
func (m *Manager) SweepOnce() {
	m.mu.Lock()
	var stale []*net.UDPAddr
	for _, s := range m.sessions {
		if s.IdleSince() > m.idleTimeout {
			stale = append(stale, s.Addr)
		}
	}
	for _, addr := range stale {
		delete(m.sessions, addr.String())
		metrics.SessionsActive.Dec()
		metrics.SessionsEvicted.Inc()
	}
	m.mu.Unlock()

	for _, addr := range stale {
		logger.Info("session: evicting idle peer %s", addr)
		if m.onEvict != nil {
			m.onEvict(addr)
		}
	}
}

// RunSweeper runs SweepOnce on the given period until stop is closed.
func (m *Manager) RunSweeper(period time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.SweepOnce()
		}
	}
}

// Package sync implements the per-game input synchronization engine:
// the CORE algorithm of §4.6. It owns no network state — it consumes raw
// payloads per player index and returns the outbound bundles (or cache
// references) the transport layer must send, in the order they were
// produced.
//
// The lobby calls into the manager without holding the state store's
// lock; the mutex here is what serializes every call, which also makes
// the type safe to exercise directly from tests.
package sync

import (
	"sync"

	"github.com/kaillera-go/relay/internal/metrics"
)

// OutputKind distinguishes a full bundle from a cache reference.
type OutputKind int

const (
	OutputGameData OutputKind = iota
	OutputGameCache
)

// Output is one outbound message the sync engine produced for Player.
type Output struct {
	Player   int
	Kind     OutputKind
	Data     []byte // set when Kind == OutputGameData
	Position int    // set when Kind == OutputGameCache
}

// Manager holds one game's synchronization state: per-player delays,
// input queues, caches, and send fan-out buffers.
type Manager struct {
	mu sync.Mutex

	delays  []int
	dropped []bool

	clientCache []*fifoCache // input side, keyed by source player
	outputCache []*fifoCache // output side, keyed by destination player

	inputQueue [][][]byte // I_i, per source player

	// sendBuffers[j][k] holds queued units from source k destined for
	// player j (B_{j,k} in §4.6).
	sendBuffers [][][][]byte

	unitSize       int
	latched        bool
	pendingPadding []int
}

// NewManager builds a sync manager from the ordered per-player delays.
// Delays must all be >= 1, the invariant §3 places on conn_type.
func NewManager(delays []int) *Manager {
	p := len(delays)
	m := &Manager{
		delays:      append([]int(nil), delays...),
		dropped:     make([]bool, p),
		clientCache: make([]*fifoCache, p),
		outputCache: make([]*fifoCache, p),
		inputQueue:  make([][][]byte, p),
		sendBuffers: make([][][][]byte, p),
	}
	for i := 0; i < p; i++ {
		m.clientCache[i] = newFIFOCache()
		m.outputCache[i] = newFIFOCache()
		m.sendBuffers[i] = make([][][]byte, p)
	}

	minDelay := delays[0]
	for _, d := range delays {
		if d < minDelay {
			minDelay = d
		}
	}
	m.pendingPadding = make([]int, p)
	for i, d := range delays {
		m.pendingPadding[i] = d - minDelay
	}
	return m
}

// Players returns the number of seats P.
func (m *Manager) Players() int { return len(m.delays) }

// UnitSize returns the latched unit size U, or 0 before the first input.
func (m *Manager) UnitSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unitSize
}

// IsDropped reports whether player i has been marked dropped.
func (m *Manager) IsDropped(i int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.dropped) {
		return false
	}
	return m.dropped[i]
}

// AllDropped reports whether every seat has been marked dropped. The
// lobby then closes and removes the game; the game does not go back to
// Waiting.
func (m *Manager) AllDropped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allDroppedLocked()
}

func (m *Manager) allDroppedLocked() bool {
	for _, d := range m.dropped {
		if !d {
			return false
		}
	}
	return true
}

func (m *Manager) validPlayer(i int) bool {
	return i >= 0 && i < len(m.delays)
}

// ProcessData handles an incoming GameData(payload) from player i.
func (m *Manager) ProcessData(player int, payload []byte) ([]Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.validPlayer(player) {
		return nil, ErrInvalidPlayer
	}
	if m.dropped[player] {
		return nil, nil
	}

	if !m.latched {
		d := m.delays[player]
		if d <= 0 || len(payload) == 0 || len(payload)%d != 0 {
			return nil, ErrBadUnitSize
		}
		m.unitSize = len(payload) / d
		m.latched = true
		m.applyPaddingLocked()
	} else {
		expected := m.delays[player] * m.unitSize
		if len(payload) != expected {
			return nil, ErrBadUnitSize
		}
	}

	stored := append([]byte(nil), payload...)
	m.clientCache[player].push(stored)
	m.enqueueUnitsLocked(player, stored)

	return m.drainAndEmitLocked(), nil
}

// ProcessCacheRef handles an incoming GameCache(pos) from player i,
// resolving it against that player's own client cache.
func (m *Manager) ProcessCacheRef(player int, pos int) ([]Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.validPlayer(player) {
		return nil, ErrInvalidPlayer
	}
	if m.dropped[player] {
		return nil, nil
	}
	if !m.latched {
		return nil, ErrUnknownCachePosition
	}

	blob, ok := m.clientCache[player].get(pos)
	if !ok {
		metrics.IncCacheMiss("input")
		return nil, ErrUnknownCachePosition
	}
	metrics.IncCacheHit("input")

	m.enqueueUnitsLocked(player, blob)
	return m.drainAndEmitLocked(), nil
}

// MarkDropped sets player i's dropped flag and runs the drain step so
// players still connected keep receiving bundles. Marking an
// already-dropped player is a no-op.
func (m *Manager) MarkDropped(player int) ([]Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.validPlayer(player) {
		return nil, ErrInvalidPlayer
	}
	if m.dropped[player] {
		return nil, nil
	}
	m.dropped[player] = true
	m.inputQueue[player] = nil

	if m.allDroppedLocked() {
		return nil, nil
	}
	return m.drainAndEmitLocked(), nil
}

func (m *Manager) applyPaddingLocked() {
	for i, n := range m.pendingPadding {
		for k := 0; k < n; k++ {
			m.inputQueue[i] = append(m.inputQueue[i], zeroUnit(m.unitSize))
		}
	}
}

func (m *Manager) enqueueUnitsLocked(player int, blob []byte) {
	d := m.delays[player]
	for k := 0; k < d; k++ {
		unit := make([]byte, m.unitSize)
		copy(unit, blob[k*m.unitSize:(k+1)*m.unitSize])
		m.inputQueue[player] = append(m.inputQueue[player], unit)
	}
}

func zeroUnit(u int) []byte { return make([]byte, u) }

// drainAndEmitLocked runs the canonical drain-then-emit pipeline
// described in §4.6 and returns every bundle/cache-reference produced.
func (m *Manager) drainAndEmitLocked() []Output {
	p := len(m.delays)

	var active []int
	for i := 0; i < p; i++ {
		if !m.dropped[i] {
			active = append(active, i)
		}
	}
	if len(active) == 0 {
		return nil
	}

	for m.allActiveHaveInputLocked(active) {
		row := make([][]byte, p)
		for i := 0; i < p; i++ {
			if m.dropped[i] {
				row[i] = zeroUnit(m.unitSize)
				continue
			}
			row[i] = m.inputQueue[i][0]
			m.inputQueue[i] = m.inputQueue[i][1:]
		}
		for j := 0; j < p; j++ {
			for k := 0; k < p; k++ {
				m.sendBuffers[j][k] = append(m.sendBuffers[j][k], row[k])
			}
		}
	}

	var outputs []Output
	for j := 0; j < p; j++ {
		outputs = append(outputs, m.emitLocked(j)...)
	}
	return outputs
}

func (m *Manager) allActiveHaveInputLocked(active []int) bool {
	for _, i := range active {
		if len(m.inputQueue[i]) == 0 {
			return false
		}
	}
	return true
}

func (m *Manager) emitLocked(j int) []Output {
	p := len(m.delays)
	dj := m.delays[j]

	var outputs []Output
	for m.fullRowsReadyLocked(j, dj) {
		bundle := make([]byte, 0, dj*p*m.unitSize)
		for r := 0; r < dj; r++ {
			for k := 0; k < p; k++ {
				bundle = append(bundle, m.sendBuffers[j][k][r]...)
			}
		}
		for k := 0; k < p; k++ {
			m.sendBuffers[j][k] = m.sendBuffers[j][k][dj:]
		}

		if pos, found := m.outputCache[j].find(bundle); found {
			metrics.IncCacheHit("output")
			outputs = append(outputs, Output{Player: j, Kind: OutputGameCache, Position: pos})
		} else {
			metrics.IncCacheMiss("output")
			m.outputCache[j].push(bundle)
			outputs = append(outputs, Output{Player: j, Kind: OutputGameData, Data: bundle})
		}
	}
	return outputs
}

func (m *Manager) fullRowsReadyLocked(j, dj int) bool {
	for k := range m.sendBuffers[j] {
		if len(m.sendBuffers[j][k]) < dj {
			return false
		}
	}
	return true
}

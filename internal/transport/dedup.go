package transport

import (
	"sync"

	"github.com/kaillera-go/relay/internal/protocol"
)

// Deduplicator implements the per-peer receive gate from §4.3: messages
// are admitted into the handler layer only in strictly increasing
// sequence order, with a special reset path for the first datagram of a
// (re)connection.
type Deduplicator struct {
	mu           sync.Mutex
	nextExpected uint16
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Admit applies the gate to one decoded datagram's messages. Messages
// arrive in the redundant sender's newest-first wire order; the gate
// walks them oldest-first so a peer that catches the gate up by more
// than one sequence within a single datagram admits every eligible
// message, not just the first it happens to see.
//
// A datagram containing exactly one message with seq == 0 resets
// next_expected to 0 first — this is how stock clients re-register
// across restarts, and must be preserved exactly (see SPEC_FULL.md §9).
func (d *Deduplicator) Admit(messages []protocol.Message) []protocol.Message {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(messages) == 1 && messages[0].Seq == 0 {
		d.nextExpected = 0
	}

	var admitted []protocol.Message
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Seq != d.nextExpected {
			continue
		}
		admitted = append(admitted, m)
		d.nextExpected++
	}
	return admitted
}

// NextExpected reports the next sequence this gate will admit, for tests.
func (d *Deduplicator) NextExpected() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nextExpected
}

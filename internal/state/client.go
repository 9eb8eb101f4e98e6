// Package state holds the in-memory client/game store (§3, §4.7): clients
// by address and by user id, games by id, and the atomic counters that
// allocate user and game ids. Every operation here is atomic with
// respect to other operations on the same entity, per §5's
// reader-writer locking model.
package state

import "net"

// PlayerStatus mirrors §3's player status enum.
type PlayerStatus int

const (
	StatusIdle PlayerStatus = iota
	StatusNetSync
	StatusPlaying
)

// Client is one connected peer's lobby-visible state.
type Client struct {
	Addr     *net.UDPAddr
	UserID   uint16
	Name     string
	Emulator string
	ConnType byte
	Ping     float64 // EWMA, see SPEC_FULL.md §3
	Status   PlayerStatus
	GameID   uint32 // 0 means "not in a game"
	InGame   bool
}

// recordPing folds one RTT sample into the client's EWMA ping, matching
// the real Kaillera server's ping := ping/2 + sample/2 smoothing.
func (c *Client) recordPing(sampleMillis float64) {
	if c.Ping == 0 {
		c.Ping = sampleMillis
		return
	}
	c.Ping = c.Ping/2 + sampleMillis/2
}

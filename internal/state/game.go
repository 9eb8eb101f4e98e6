package state

import (
	"net"

	syncengine "github.com/kaillera-go/relay/internal/sync"
)

// GameStatus mirrors §3's game status enum.
type GameStatus int

const (
	GameWaiting GameStatus = iota
	GameNetSync
	GamePlaying
)

// MaxPlayersPerGame is the hard cap from §3.
const MaxPlayersPerGame = 4

// GamePlayer is one ordered player-list entry (§3). Ready tracks the
// start-of-game barrier (§4.5): set when this player's Ready-To-Play has
// been received, cleared on the next Start.
type GamePlayer struct {
	Addr     *net.UDPAddr
	Name     string
	UserID   uint16
	ConnType byte
	Dropped  bool
	Ready    bool
}

// Game is one lobby game. Sync is created at the start-of-game barrier
// (Status moving to GameNetSync) and nil while Waiting (§3's "Sync
// manager... present when Playing, absent when Waiting").
type Game struct {
	ID       uint32
	Name     string
	Emulator string
	OwnerID  uint16
	Status   GameStatus
	Players  []GamePlayer
	Sync     *syncengine.Manager
}

// PlayerIndex returns the 0-indexed position of userID in the player
// list, or -1 if absent. Player number in the wire protocol is this
// value + 1 (§9's "Player number").
func (g *Game) PlayerIndex(userID uint16) int {
	for i, p := range g.Players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// AllReady reports whether every non-dropped player has sent
// Ready-To-Play.
func (g *Game) AllReady() bool {
	for _, p := range g.Players {
		if !p.Dropped && !p.Ready {
			return false
		}
	}
	return true
}

// Delays returns the ordered per-player conn_type vector, which doubles
// as the per-frame delay vector the sync manager is built from (§3).
func (g *Game) Delays() []int {
	delays := make([]int, len(g.Players))
	for i, p := range g.Players {
		delays[i] = int(p.ConnType)
	}
	return delays
}

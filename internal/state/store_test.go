package state

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func addr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port}
}

func TestNextIDsNeverRepeat(t *testing.T) {
	s := NewStore()
	seen := make(map[uint16]bool)
	for i := 0; i < 100; i++ {
		id := s.NextUserID()
		require.False(t, seen[id], "user id %d repeated", id)
		seen[id] = true
	}

	seenGame := make(map[uint32]bool)
	for i := 0; i < 100; i++ {
		id := s.NextGameID()
		require.False(t, seenGame[id], "game id %d repeated", id)
		seenGame[id] = true
	}
}

func TestAddGetRemoveClient(t *testing.T) {
	s := NewStore()
	c := &Client{Addr: addr(1), UserID: 1, Name: "alice"}
	require.NoError(t, s.AddClient(c))

	got, ok := s.GetClient(addr(1))
	require.True(t, ok)
	require.Equal(t, "alice", got.Name)

	byID, ok := s.GetClientByID(1)
	require.True(t, ok)
	require.Same(t, got, byID)

	require.ErrorIs(t, s.AddClient(&Client{Addr: addr(1), UserID: 2}), ErrClientExists)

	s.RemoveClient(addr(1))
	_, ok = s.GetClient(addr(1))
	require.False(t, ok)
}

func TestUpdateClientNotFound(t *testing.T) {
	s := NewStore()
	err := s.UpdateClient(addr(99), func(c *Client) {})
	require.ErrorIs(t, err, ErrClientNotFound)
}

func TestRecordPingEWMA(t *testing.T) {
	s := NewStore()
	c := &Client{Addr: addr(1), UserID: 1}
	require.NoError(t, s.AddClient(c))

	require.NoError(t, s.RecordPing(addr(1), 100))
	require.Equal(t, float64(100), c.Ping)

	require.NoError(t, s.RecordPing(addr(1), 50))
	require.Equal(t, float64(75), c.Ping) // 100/2 + 50/2
}

func TestGameLifecycle(t *testing.T) {
	s := NewStore()
	g := &Game{ID: 1, Name: "game", Status: GameWaiting}
	s.AddGame(g)

	got, ok := s.GetGame(1)
	require.True(t, ok)
	require.Equal(t, GameWaiting, got.Status)

	require.NoError(t, s.UpdateGame(1, func(g *Game) { g.Status = GamePlaying }))
	got, _ = s.GetGame(1)
	require.Equal(t, GamePlaying, got.Status)

	require.ErrorIs(t, s.UpdateGame(2, func(g *Game) {}), ErrGameNotFound)

	s.RemoveGame(1)
	_, ok = s.GetGame(1)
	require.False(t, ok)
}

func TestGamePlayerIndexAndDelays(t *testing.T) {
	g := &Game{Players: []GamePlayer{
		{UserID: 10, ConnType: 1},
		{UserID: 20, ConnType: 2},
	}}
	require.Equal(t, 0, g.PlayerIndex(10))
	require.Equal(t, 1, g.PlayerIndex(20))
	require.Equal(t, -1, g.PlayerIndex(99))
	require.Equal(t, []int{1, 2}, g.Delays())
}

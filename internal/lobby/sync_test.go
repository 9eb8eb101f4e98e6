package lobby_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaillera-go/relay/internal/protocol"
	"github.com/kaillera-go/relay/internal/state"
)

// setupTwoPlayerGame logs two clients in, has the first create a game and
// the second join it, and returns their addresses plus the game id.
func setupTwoPlayerGame(t *testing.T, h *harness) (owner, other *net.UDPAddr, gameID uint32) {
	t.Helper()
	owner, other = addrFor(t, 40100), addrFor(t, 40101)
	h.login(owner, "owner", "snes9x", 1)
	h.login(other, "p2", "snes9x", 1)

	h.send(owner, protocol.TypeCreateGame, protocol.BuildCreateGame(protocol.CreateGame{GameName: "g1", Emulator: "snes9x"}))
	ownerClient, _ := h.store.GetClient(owner)
	h.send(other, protocol.TypeJoinGame, protocol.BuildJoinGame(protocol.JoinGame{GameID: ownerClient.GameID}))

	return owner, other, ownerClient.GameID
}

func TestStartGameBarrierRequiresOwnerAndAllReady(t *testing.T) {
	h := newHarness(t)
	owner, other, gameID := setupTwoPlayerGame(t, h)

	// Non-owner cannot start.
	h.send(other, protocol.TypeStartGame, nil)
	game, _ := h.store.GetGame(gameID)
	require.Equal(t, state.GameWaiting, game.Status)

	h.send(owner, protocol.TypeStartGame, nil)
	game, _ = h.store.GetGame(gameID)
	require.Equal(t, state.GameNetSync, game.Status)
	require.NotNil(t, game.Sync)

	msg, ok := h.outbox.last(t, other)
	require.True(t, ok)
	require.Equal(t, byte(protocol.TypeStartGame), msg.Type)

	// Only one of two players ready: still NetSync.
	h.send(owner, protocol.TypeReadyToPlay, nil)
	game, _ = h.store.GetGame(gameID)
	require.Equal(t, state.GameNetSync, game.Status)

	h.send(other, protocol.TypeReadyToPlay, nil)
	game, _ = h.store.GetGame(gameID)
	require.Equal(t, state.GamePlaying, game.Status)

	msg, ok = h.outbox.last(t, owner)
	require.True(t, ok)
	require.Equal(t, byte(protocol.TypeReadyToPlay), msg.Type)
}

func TestGameDataRelaysThroughSyncEngine(t *testing.T) {
	h := newHarness(t)
	owner, other, gameID := setupTwoPlayerGame(t, h)

	h.send(owner, protocol.TypeStartGame, nil)
	h.send(owner, protocol.TypeReadyToPlay, nil)
	h.send(other, protocol.TypeReadyToPlay, nil)

	// Both seats have conn_type 1 (delay 1), so the first GameData latches
	// the unit size at len(payload) and every subsequent payload from
	// either player must be exactly that size.
	frame := []byte{1, 2, 3, 4}
	h.send(owner, protocol.TypeGameData, protocol.BuildGameData(protocol.GameData{Data: frame}))
	game, _ := h.store.GetGame(gameID)
	require.Equal(t, len(frame), game.Sync.UnitSize())

	h.send(other, protocol.TypeGameData, protocol.BuildGameData(protocol.GameData{Data: frame}))

	// With both seats at delay 1, one unit from each player completes a
	// row, which is enough to emit a bundle to both seats.
	ownerMsg, ownerGotData := h.outbox.last(t, owner)
	otherMsg, otherGotData := h.outbox.last(t, other)
	require.True(t, ownerGotData)
	require.True(t, otherGotData)
	require.Equal(t, byte(protocol.TypeGameData), ownerMsg.Type)
	require.Equal(t, byte(protocol.TypeGameData), otherMsg.Type)
}

func TestDropGameTearsDownOnAllDropped(t *testing.T) {
	h := newHarness(t)
	owner, other, gameID := setupTwoPlayerGame(t, h)

	h.send(owner, protocol.TypeStartGame, nil)
	h.send(owner, protocol.TypeReadyToPlay, nil)
	h.send(other, protocol.TypeReadyToPlay, nil)

	ownerClient, ok := h.store.GetClient(owner)
	require.True(t, ok)

	h.send(owner, protocol.TypeDropGame, nil)
	game, ok := h.store.GetGame(gameID)
	require.True(t, ok)
	require.True(t, game.Players[game.PlayerIndex(ownerClient.UserID)].Dropped)

	msg, ok := h.outbox.last(t, other)
	require.True(t, ok)
	require.Equal(t, byte(protocol.TypeDropGame), msg.Type)

	h.send(other, protocol.TypeDropGame, nil)
	_, gameStillExists := h.store.GetGame(gameID)
	require.False(t, gameStillExists)
}

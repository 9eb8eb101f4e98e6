package lobby

import (
	"github.com/kaillera-go/relay/internal/logger"
	"github.com/kaillera-go/relay/internal/metrics"
	"github.com/kaillera-go/relay/internal/protocol"
	"github.com/kaillera-go/relay/internal/session"
	"github.com/kaillera-go/relay/internal/state"
	syncengine "github.com/kaillera-go/relay/internal/sync"
)

// handleStartGame implements the start-of-game barrier's first half
// (§4.5): only the owner may trigger it, and only while Waiting. The
// sync manager is created here from the current player delays; status
// moves to NetSync and every player is notified of their frame delay and
// seat number. The barrier completes in handleReadyToPlay once every
// player has acknowledged.
func (l *Lobby) handleStartGame(sess *session.Session) {
	client, ok := l.Store.GetClient(sess.Addr)
	if !ok || !client.InGame {
		return
	}
	game, ok := l.Store.GetGame(client.GameID)
	if !ok {
		return
	}
	if client.UserID != game.OwnerID {
		logger.Warn("lobby: non-owner %s tried to start game %d, ignoring", sess.Addr, game.ID)
		return
	}
	if game.Status != state.GameWaiting {
		logger.Warn("lobby: %s tried to start game %d that is not waiting, ignoring", sess.Addr, game.ID)
		return
	}

	err := l.Store.UpdateGame(game.ID, func(g *state.Game) {
		g.Status = state.GameNetSync
		g.Sync = syncengine.NewManager(g.Delays())
		for i := range g.Players {
			g.Players[i].Ready = false
		}
	})
	if err != nil {
		return
	}
	game, _ = l.Store.GetGame(game.ID)

	total := byte(len(game.Players))
	for i, p := range game.Players {
		l.Store.UpdateClient(p.Addr, func(c *state.Client) { c.Status = state.StatusNetSync })
		notice := protocol.BuildStartGameNotify(protocol.StartGameNotify{
			FrameDelay: uint16(p.ConnType),
			PlayerNum:  byte(i + 1),
			Total:      total,
		})
		l.sendTo(p.Addr, protocol.TypeStartGame, notice)
	}
	logger.Info("lobby: game %d entering netsync with %d players", game.ID, total)
}

// handleReadyToPlay completes the barrier: once every seated player has
// acknowledged, status flips to Playing for the game and every player,
// and a Ready-To-Play notification is broadcast inside the game.
func (l *Lobby) handleReadyToPlay(sess *session.Session) {
	client, ok := l.Store.GetClient(sess.Addr)
	if !ok || !client.InGame {
		return
	}

	var allReady bool
	err := l.Store.UpdateGame(client.GameID, func(g *state.Game) {
		idx := g.PlayerIndex(client.UserID)
		if idx < 0 {
			return
		}
		g.Players[idx].Ready = true
		allReady = g.AllReady()
		if allReady {
			g.Status = state.GamePlaying
		}
	})
	if err != nil || !allReady {
		return
	}

	game, ok := l.Store.GetGame(client.GameID)
	if !ok {
		return
	}
	for _, p := range game.Players {
		l.Store.UpdateClient(p.Addr, func(c *state.Client) { c.Status = state.StatusPlaying })
		l.sendTo(p.Addr, protocol.TypeReadyToPlay, protocol.BuildReadyToPlay())
	}
	logger.Info("lobby: game %d is now playing", game.ID)
}

// handleGameData feeds one player's raw input through the game's sync
// manager and fans the resulting outputs out to their recipients.
func (l *Lobby) handleGameData(sess *session.Session, payload []byte) {
	game, idx, ok := l.syncGameFor(sess)
	if !ok {
		return
	}
	gd, err := protocol.ParseGameData(payload)
	if err != nil {
		logger.Warn("lobby: malformed game data from %s: %v", sess.Addr, err)
		return
	}

	outs, err := game.Sync.ProcessData(idx, gd.Data)
	if err != nil {
		l.reportSyncError(sess, err)
		return
	}
	metrics.BytesRelayed.Add(float64(len(gd.Data)))
	l.emitSyncOutputs(game, outs)
}

func (l *Lobby) handleGameCache(sess *session.Session, payload []byte) {
	game, idx, ok := l.syncGameFor(sess)
	if !ok {
		return
	}
	gc, err := protocol.ParseGameCache(payload)
	if err != nil {
		logger.Warn("lobby: malformed game cache ref from %s: %v", sess.Addr, err)
		return
	}

	outs, err := game.Sync.ProcessCacheRef(idx, int(gc.Position))
	if err != nil {
		l.reportSyncError(sess, err)
		return
	}
	l.emitSyncOutputs(game, outs)
}

// handleDropGame marks the sender dropped in its own game's sync manager
// and, once every seat has dropped, closes and removes the game rather
// than returning it to Waiting.
func (l *Lobby) handleDropGame(sess *session.Session) {
	client, ok := l.Store.GetClient(sess.Addr)
	if !ok || !client.InGame {
		return
	}
	game, ok := l.Store.GetGame(client.GameID)
	if !ok {
		return
	}
	l.dropPlayer(game, client.UserID)
}

func (l *Lobby) dropPlayer(game *state.Game, userID uint16) {
	if game.Status != state.GamePlaying || game.Sync == nil {
		return
	}
	idx := game.PlayerIndex(userID)
	if idx < 0 {
		return
	}

	l.Store.UpdateGame(game.ID, func(g *state.Game) {
		g.Players[idx].Dropped = true
	})
	metrics.PlayersDropped.Inc()

	outs, err := game.Sync.MarkDropped(idx)
	if err != nil {
		logger.Error("lobby: mark_dropped(%d) on game %d: %v", idx, game.ID, err)
		return
	}

	notice := protocol.BuildDropGame(protocol.DropGame{
		Name: game.Players[idx].Name, PlayerNum: byte(idx + 1),
	})
	for _, p := range game.Players {
		l.sendTo(p.Addr, protocol.TypeDropGame, notice)
	}

	l.emitSyncOutputs(game, outs)

	if game.Sync.AllDropped() {
		l.closeGame(game)
	}
}

// syncGameFor resolves the caller's game and seat index, returning ok =
// false if the sender is not a seated player in an in-progress game.
func (l *Lobby) syncGameFor(sess *session.Session) (*state.Game, int, bool) {
	client, ok := l.Store.GetClient(sess.Addr)
	if !ok || !client.InGame {
		return nil, 0, false
	}
	game, ok := l.Store.GetGame(client.GameID)
	if !ok || game.Status != state.GamePlaying || game.Sync == nil {
		return nil, 0, false
	}
	idx := game.PlayerIndex(client.UserID)
	if idx < 0 {
		return nil, 0, false
	}
	return game, idx, true
}

func (l *Lobby) emitSyncOutputs(game *state.Game, outs []syncengine.Output) {
	for _, o := range outs {
		if o.Player < 0 || o.Player >= len(game.Players) {
			continue
		}
		addr := game.Players[o.Player].Addr
		metrics.BundlesEmitted.Inc()
		switch o.Kind {
		case syncengine.OutputGameData:
			l.sendTo(addr, protocol.TypeGameData, protocol.BuildGameData(protocol.GameData{Data: o.Data}))
		case syncengine.OutputGameCache:
			l.sendTo(addr, protocol.TypeGameCache, protocol.BuildGameCache(protocol.GameCache{Position: byte(o.Position)}))
		}
	}
}

func (l *Lobby) reportSyncError(sess *session.Session, err error) {
	kind := "unknown"
	switch err {
	case syncengine.ErrInvalidPlayer:
		kind = "invalid_player"
	case syncengine.ErrUnknownCachePosition:
		kind = "unknown_cache_position"
	case syncengine.ErrBadUnitSize:
		kind = "bad_unit_size"
	}
	metrics.IncSyncError(kind)
	logger.Error("lobby: sync error for %s: %v", sess.Addr, err)
}

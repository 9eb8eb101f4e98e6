package lobby

import (
	"github.com/kaillera-go/relay/internal/logger"
	"github.com/kaillera-go/relay/internal/metrics"
	"github.com/kaillera-go/relay/internal/protocol"
	"github.com/kaillera-go/relay/internal/session"
	"github.com/kaillera-go/relay/internal/state"
)

func (l *Lobby) handleCreateGame(sess *session.Session, payload []byte) {
	req, err := protocol.ParseCreateGame(payload)
	if err != nil {
		logger.Warn("lobby: malformed create game from %s: %v", sess.Addr, err)
		return
	}
	client, ok := l.Store.GetClient(sess.Addr)
	if !ok {
		return
	}
	if client.InGame {
		logger.Warn("lobby: %s tried to create a game while already in one, ignoring", sess.Addr)
		return
	}

	gameName := protocol.TruncateName(req.GameName, protocol.MaxGameNameBytes)
	game := &state.Game{
		ID:       l.Store.NextGameID(),
		Name:     gameName,
		Emulator: req.Emulator,
		OwnerID:  client.UserID,
		Status:   state.GameWaiting,
		Players: []state.GamePlayer{
			{Addr: sess.Addr, Name: client.Name, UserID: client.UserID, ConnType: client.ConnType},
		},
	}
	l.Store.AddGame(game)
	metrics.GamesActive.Inc()

	l.Store.UpdateClient(sess.Addr, func(c *state.Client) {
		c.InGame = true
		c.GameID = game.ID
	})

	l.send(sess, protocol.TypeCreateGame, protocol.BuildCreateGame(protocol.CreateGame{
		GameName: gameName,
		Emulator: req.Emulator,
		GameID:   game.ID,
	}))
	logger.Info("lobby: %s created game %d (%q)", sess.Addr, game.ID, gameName)
}

func (l *Lobby) handleJoinGame(sess *session.Session, payload []byte) {
	req, err := protocol.ParseJoinGame(payload)
	if err != nil {
		logger.Warn("lobby: malformed join game from %s: %v", sess.Addr, err)
		return
	}
	client, ok := l.Store.GetClient(sess.Addr)
	if !ok {
		return
	}
	if client.InGame {
		logger.Warn("lobby: %s tried to join a game while already in one, ignoring", sess.Addr)
		return
	}

	game, ok := l.Store.GetGame(req.GameID)
	if !ok {
		logger.Warn("lobby: %s tried to join unknown game %d, ignoring", sess.Addr, req.GameID)
		return
	}
	if game.Status != state.GameWaiting {
		logger.Warn("lobby: %s tried to join game %d that is not waiting, ignoring", sess.Addr, req.GameID)
		return
	}
	if len(game.Players) >= state.MaxPlayersPerGame || len(game.Players) >= l.Cfg.MaxPlayers {
		logger.Warn("lobby: %s tried to join full game %d, ignoring", sess.Addr, req.GameID)
		return
	}

	err = l.Store.UpdateGame(req.GameID, func(g *state.Game) {
		g.Players = append(g.Players, state.GamePlayer{
			Addr: sess.Addr, Name: client.Name, UserID: client.UserID, ConnType: client.ConnType,
		})
	})
	if err != nil {
		return
	}

	l.Store.UpdateClient(sess.Addr, func(c *state.Client) {
		c.InGame = true
		c.GameID = req.GameID
	})
	l.Store.RecordPing(sess.Addr, float64(req.Ping))

	game, _ = l.Store.GetGame(req.GameID)
	notice := protocol.BuildJoinGame(protocol.JoinGame{
		GameID: game.ID, Name: client.Name, Ping: uint32(client.Ping), UserID: client.UserID, ConnType: client.ConnType,
	})
	for _, p := range game.Players {
		l.sendTo(p.Addr, protocol.TypeJoinGame, notice)
	}
	l.broadcastGameStatus(game)
	logger.Info("lobby: %s joined game %d", sess.Addr, req.GameID)
}

func (l *Lobby) handleQuitGame(sess *session.Session, payload []byte) {
	client, ok := l.Store.GetClient(sess.Addr)
	if !ok {
		return
	}
	if client.InGame {
		l.leaveGame(client, client.GameID)
	}
	l.Store.RemoveClient(sess.Addr)
	logger.Info("lobby: %s quit", sess.Addr)
}

// leaveGame removes client from the game it occupies. The owner leaving
// closes the game outright (§3: "destroyed when the owner quits"); any
// other departure that empties the game also closes it; otherwise the
// remaining players are renumbered and notified. A departure mid-game
// routes through the sync engine's drop path instead of a hard removal.
func (l *Lobby) leaveGame(client *state.Client, gameID uint32) {
	game, ok := l.Store.GetGame(gameID)
	if !ok {
		return
	}

	if game.Status == state.GamePlaying {
		l.dropPlayer(game, client.UserID)
		return
	}

	idx := game.PlayerIndex(client.UserID)
	if idx < 0 {
		return
	}

	if client.UserID == game.OwnerID || len(game.Players) == 1 {
		l.closeGame(game)
		return
	}

	l.Store.UpdateGame(gameID, func(g *state.Game) {
		g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	})
	game, _ = l.Store.GetGame(gameID)
	l.broadcastGameStatus(game)
}

func (l *Lobby) closeGame(game *state.Game) {
	notice := protocol.BuildCloseGame(protocol.CloseGame{GameID: game.ID})
	for _, p := range game.Players {
		l.sendTo(p.Addr, protocol.TypeCloseGame, notice)
		l.Store.UpdateClient(p.Addr, func(c *state.Client) {
			c.InGame = false
			c.GameID = 0
			c.Status = state.StatusIdle
		})
	}
	l.Store.RemoveGame(game.ID)
	metrics.GamesActive.Dec()
}

func (l *Lobby) broadcastGameStatus(game *state.Game) {
	status := byte(game.Status)
	notice := protocol.BuildUpdateGameStatus(protocol.UpdateGameStatus{
		GameID: game.ID, Status: status, Num: byte(len(game.Players)), Max: state.MaxPlayersPerGame,
	})
	for _, addr := range l.Store.AllClientAddresses() {
		l.sendTo(addr, protocol.TypeUpdateGameStatus, notice)
	}
}

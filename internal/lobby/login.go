package lobby

import (
	"github.com/kaillera-go/relay/internal/logger"
	"github.com/kaillera-go/relay/internal/protocol"
	"github.com/kaillera-go/relay/internal/session"
	"github.com/kaillera-go/relay/internal/state"
)

func (l *Lobby) handleLogin(sess *session.Session, payload []byte) {
	login, err := protocol.ParseUserLogin(payload)
	if err != nil {
		logger.Warn("lobby: malformed login from %s: %v", sess.Addr, err)
		return
	}
	if login.ConnType < protocol.MinConnType || login.ConnType > protocol.MaxConnType {
		logger.Warn("lobby: login from %s has out-of-range conn_type %d, ignoring", sess.Addr, login.ConnType)
		return
	}

	if _, exists := l.Store.GetClient(sess.Addr); exists {
		logger.Warn("lobby: duplicate login from already-registered peer %s", sess.Addr)
		return
	}

	name := protocol.TruncateName(login.Name, protocol.MaxLoginNameBytes)
	client := &state.Client{
		Addr:     sess.Addr,
		UserID:   l.Store.NextUserID(),
		Name:     name,
		Emulator: login.Emulator,
		ConnType: login.ConnType,
		Status:   state.StatusIdle,
	}
	if err := l.Store.AddClient(client); err != nil {
		logger.Warn("lobby: could not register client %s: %v", sess.Addr, err)
		return
	}

	l.send(sess, protocol.TypeS2CAck, protocol.BuildS2CAck())
	logger.Info("lobby: %s logged in as %q (user %d, emulator %q, conn_type %d)",
		sess.Addr, name, client.UserID, client.Emulator, client.ConnType)
}

func (l *Lobby) handleGlobalChat(sess *session.Session, payload []byte) {
	chat, err := protocol.ParseChat(payload)
	if err != nil {
		logger.Warn("lobby: malformed global chat from %s: %v", sess.Addr, err)
		return
	}
	client, ok := l.Store.GetClient(sess.Addr)
	if !ok {
		return
	}

	out := protocol.BuildChat(protocol.Chat{Name: client.Name, Message: chat.Message})
	for _, addr := range l.Store.AllClientAddresses() {
		l.sendTo(addr, protocol.TypeGlobalChat, out)
	}
}

func (l *Lobby) handleGameChat(sess *session.Session, payload []byte) {
	chat, err := protocol.ParseChat(payload)
	if err != nil {
		logger.Warn("lobby: malformed game chat from %s: %v", sess.Addr, err)
		return
	}
	client, ok := l.Store.GetClient(sess.Addr)
	if !ok || !client.InGame {
		logger.Warn("lobby: game chat from %s who is not in a game, ignoring", sess.Addr)
		return
	}
	game, ok := l.Store.GetGame(client.GameID)
	if !ok {
		return
	}

	out := protocol.BuildChat(protocol.Chat{Name: client.Name, Message: chat.Message})
	for _, p := range game.Players {
		l.sendTo(p.Addr, protocol.TypeGameChat, out)
	}
}

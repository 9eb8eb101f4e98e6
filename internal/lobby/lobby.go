// Package lobby implements the external collaborators named by §4.7 and
// §1's "out of scope" list: login, server status, chat, and the
// create/join/quit/kick/start/drop game handlers. It is the layer that
// turns decoded protocol messages into state-store mutations and
// outbound notifications, and the one that creates/tears down each
// game's sync.Manager at the start-of-game barrier (§4.5) and on
// full-drop (§4.6).
package lobby

import (
	"net"

	"github.com/kaillera-go/relay/internal/config"
	"github.com/kaillera-go/relay/internal/logger"
	"github.com/kaillera-go/relay/internal/protocol"
	"github.com/kaillera-go/relay/internal/session"
	"github.com/kaillera-go/relay/internal/state"
)

// Outbox is the subset of transport.Socket the lobby needs: handing a
// pre-built datagram to the writer goroutine. Handlers never touch the
// UDP connection directly (§5).
type Outbox interface {
	Enqueue(addr *net.UDPAddr, data []byte)
}

// Lobby wires the state store, session table, and outbound socket
// together and holds the few server-identity settings echoed to
// clients. Sessions is set once via Bind after the session.Manager is
// constructed — the two are mutually referential (the manager needs a
// handler built from the lobby, the lobby needs the manager to address
// peers by session), so construction happens in two steps rather than
// threading the manager through every handler call.
type Lobby struct {
	Store    *state.Store
	Sockets  Outbox
	Cfg      config.Config
	Sessions *session.Manager
}

func New(store *state.Store, sockets Outbox, cfg config.Config) *Lobby {
	return &Lobby{Store: store, Sockets: sockets, Cfg: cfg}
}

// Bind attaches the session manager once it exists.
func (l *Lobby) Bind(sessions *session.Manager) { l.Sessions = sessions }

// send builds a redundancy-wrapped datagram through sess's sender and
// hands it to the writer goroutine.
func (l *Lobby) send(sess *session.Session, msgType byte, payload []byte) {
	data := sess.Sender.Send(msgType, payload)
	l.Sockets.Enqueue(sess.Addr, data)
}

// sendTo looks up the session for addr and sends through it; used for
// broadcast fan-out where the caller only has the client's address.
func (l *Lobby) sendTo(addr *net.UDPAddr, msgType byte, payload []byte) {
	sess, ok := l.Sessions.Get(addr)
	if !ok {
		return
	}
	l.send(sess, msgType, payload)
}

// Dispatch is the session.MessageHandler entry point: routes one
// admitted message by type to its handler. Unknown types are logged at
// warn and ignored (§7).
func (l *Lobby) Dispatch(sess *session.Session, msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeUserLogin:
		l.handleLogin(sess, msg.Payload)
	case protocol.TypeC2SAck:
		// Handshake completion; no action beyond having replied to login.
	case protocol.TypeGlobalChat:
		l.handleGlobalChat(sess, msg.Payload)
	case protocol.TypeGameChat:
		l.handleGameChat(sess, msg.Payload)
	case protocol.TypeCreateGame:
		l.handleCreateGame(sess, msg.Payload)
	case protocol.TypeJoinGame:
		l.handleJoinGame(sess, msg.Payload)
	case protocol.TypeQuitGame, protocol.TypeUserQuit, protocol.TypeClientQuit:
		l.handleQuitGame(sess, msg.Payload)
	case protocol.TypeStartGame:
		l.handleStartGame(sess)
	case protocol.TypeGameData:
		l.handleGameData(sess, msg.Payload)
	case protocol.TypeGameCache:
		l.handleGameCache(sess, msg.Payload)
	case protocol.TypeDropGame:
		l.handleDropGame(sess)
	case protocol.TypeReadyToPlay:
		l.handleReadyToPlay(sess)
	default:
		logger.Warn("lobby: unhandled message type 0x%02X from %s", msg.Type, sess.Addr)
	}
}

// OnEvict is the session.EvictFunc: removes the client (and, if it owns
// or occupies a game, drops it from that game) on idle timeout.
func (l *Lobby) OnEvict(addr *net.UDPAddr) {
	client, ok := l.Store.GetClient(addr)
	if !ok {
		l.Store.RemoveClient(addr)
		return
	}
	if client.InGame {
		l.leaveGame(client, client.GameID)
	}
	l.Store.RemoveClient(addr)
}

// Status implements transport.StatusFunc for the control port's §4.8
// query.
func (l *Lobby) Status() (playerCount, maxPlayers int, serverName string) {
	return l.Store.ClientCount(), l.Cfg.MaxPlayers, l.Cfg.ServerName
}


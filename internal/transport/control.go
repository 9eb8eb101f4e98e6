package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/kaillera-go/relay/internal/logger"
)

const (
	helloRequest = "HELLO0.83\000"
	pingRequest  = "PING\000"
	pongReply    = "PONG\000"
	statusQuery  = 'S'
)

// StatusFunc reports the current lobby snapshot for the control port's
// status query (§4.8).
type StatusFunc func() (playerCount, maxPlayers int, serverName string)

// ControlSocket answers the stateless HELLO/PING handshake (§6) and the
// single-byte status query (§4.8). It is stateless and needs no
// reader/writer split: every request gets one reply written inline.
type ControlSocket struct {
	conn     *net.UDPConn
	mainPort int
	status   StatusFunc
}

// ListenControl binds the control port. mainPort is embedded in the
// HELLO reply so clients learn where to connect for the framed
// protocol.
func ListenControl(addr string, mainPort int, status StatusFunc) (*ControlSocket, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve control port %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("bind control port %s: %w", addr, err)
	}
	return &ControlSocket{conn: conn, mainPort: mainPort, status: status}, nil
}

func (c *ControlSocket) Close() error { return c.conn.Close() }

// Run answers requests until ctx is canceled or the socket is closed.
func (c *ControlSocket) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()

	buf := make([]byte, 256)
	for {
		n, addr, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("control: read error: %v", err)
			continue
		}

		reply := c.handle(buf[:n])
		if reply == nil {
			continue
		}
		if _, err := c.conn.WriteToUDP(reply, addr); err != nil {
			logger.Warn("control: write error to %s: %v", addr, err)
		}
	}
}

func (c *ControlSocket) handle(req []byte) []byte {
	switch string(req) {
	case helloRequest:
		return []byte(fmt.Sprintf("HELLOD00D%d\000", c.mainPort))
	case pingRequest:
		return []byte(pongReply)
	}

	if len(req) == 1 && req[0] == statusQuery {
		players, max, name := c.status()
		return []byte(fmt.Sprintf("%d\000%d\000%s\000", players, max, name))
	}

	logger.Warn("control: unrecognized request %q, ignoring", req)
	return nil
}

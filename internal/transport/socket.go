package transport

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/kaillera-go/relay/internal/logger"
	"github.com/kaillera-go/relay/internal/metrics"
	"github.com/kaillera-go/relay/internal/protocol"
)

// outboundQueueCapacity is the bounded outbound queue size named by §5:
// "capacity >= 100".
const outboundQueueCapacity = 100

// outboundDatagram is one write destined for the main UDP socket.
type outboundDatagram struct {
	addr *net.UDPAddr
	data []byte
}

// Handler processes one decoded datagram's worth of messages from a
// peer, in the redundant sender's newest-first wire order. The
// session/dispatch layer supplies this; it owns the per-peer dedup gate
// that needs to see the whole datagram at once to apply the
// single-message seq==0 reset rule (§4.3).
type Handler func(addr *net.UDPAddr, messages []protocol.Message)

// Socket owns the main UDP listener and its reader/writer goroutines.
// Handlers never touch the connection directly; they enqueue through
// Enqueue, which blocks if the outbound queue is full — the natural
// backpressure against a slow kernel send buffer called for in §5.
type Socket struct {
	conn    *net.UDPConn
	outbox  chan outboundDatagram
	handler Handler
}

// Listen binds the main UDP port. handler is invoked once per decoded
// datagram with all of its messages, before any dedup gating; it must
// not block.
func Listen(addr string, handler Handler) (*Socket, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve main port %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("bind main port %s: %w", addr, err)
	}
	return &Socket{
		conn:    conn,
		outbox:  make(chan outboundDatagram, outboundQueueCapacity),
		handler: handler,
	}, nil
}

// Enqueue hands a pre-built datagram (as produced by a RedundantSender)
// to the writer goroutine. Blocks when the outbound queue is full.
func (s *Socket) Enqueue(addr *net.UDPAddr, data []byte) {
	s.outbox <- outboundDatagram{addr: addr, data: data}
}

// Addr returns the bound local address.
func (s *Socket) Addr() net.Addr { return s.conn.LocalAddr() }

// Close releases the underlying connection, unblocking the reader loop.
func (s *Socket) Close() error { return s.conn.Close() }

// Run starts the reader and writer loops and blocks until ctx is
// canceled or either loop errors, tearing the other down via errgroup's
// shared context — replacing a hand-rolled channel-of-errors with the
// same pattern the rest of the pack reaches for when fanning out a
// small fixed set of long-running goroutines.
func (s *Socket) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return s.conn.Close()
	})
	g.Go(func() error { return s.readLoop(ctx) })
	g.Go(func() error { return s.writeLoop(ctx) })

	return g.Wait()
}

func (s *Socket) readLoop(ctx context.Context) error {
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("transport: read error: %v", err)
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		messages, err := protocol.DecodeDatagram(data)
		if err != nil {
			metrics.MalformedFrames.Inc()
			logger.Warn("transport: malformed datagram from %s: %v", addr, err)
			continue
		}

		s.handler(addr, messages)
	}
}

func (s *Socket) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case out := <-s.outbox:
			if _, err := s.conn.WriteToUDP(out.data, out.addr); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("transport: write error to %s: %v", out.addr, err)
				continue
			}
			metrics.BytesRelayed.Add(float64(len(out.data)))
		}
	}
}

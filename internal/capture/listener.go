package capture

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/rs/zerolog/log"
)

// Handler receives each datagram. Payload is owned by the handler.
type Handler func(Packet)

// Listener reads DHCP datagrams from a UDP socket.
type Listener struct {
	conn    net.PacketConn
	maxSize int
}

// Listen binds a UDP socket on addr. maxSize bounds each read.
func Listen(addr string, maxSize int) (*Listener, error) {
	conn, err := net.ListenPacket("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("capture: listen %s: %w", addr, err)
	}
	log.Info().Str("addr", conn.LocalAddr().String()).Msg("capture.Listen bound")
	return &Listener{conn: conn, maxSize: maxSize}, nil
}

func (l *Listener) Addr() net.Addr { return l.conn.LocalAddr() }

// Serve delivers datagrams to h until ctx is done or the socket fails. It
// closes the socket on return.
func (l *Listener) Serve(ctx context.Context, h Handler) error {
	defer l.conn.Close()
	stop := context.AfterFunc(ctx, func() {
		_ = l.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	local := addrPort(l.conn.LocalAddr())
	buf := make([]byte, l.maxSize+1)
	for {
		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("capture.Listener.Serve stopped")
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return fmt.Errorf("capture: read: %w", err)
		}
		if n > l.maxSize {
			log.Warn().Str("from", from.String()).Int("max", l.maxSize).Msg("capture.Listener.Serve oversized datagram dropped")
			continue
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		h(Packet{
			Time:    time.Now(),
			Src:     addrPort(from),
			Dst:     local,
			Payload: payload,
		})
	}
}

func addrPort(a net.Addr) netip.AddrPort {
	if ua, ok := a.(*net.UDPAddr); ok {
		ap := ua.AddrPort()
		return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
	}
	return netip.AddrPort{}
}

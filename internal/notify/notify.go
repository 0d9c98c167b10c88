// Package notify delivers unsolicited notices to live sessions over a
// connectionless, best-effort channel.  Nothing here reports delivery
// failures to the command that triggered the notice: a notice that
// cannot be sent is logged and forgotten.
package notify

import (
	"context"
	"log"
	"net"
	"net/netip"
	"time"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/session"
)

// EndpointFunc derives the notification endpoint of a session from the
// peer address of its connection.  ok is false when no endpoint can be
// derived; the session is then skipped.
type EndpointFunc func(peer netip.AddrPort) (netip.AddrPort, bool)

// PeerPortOffset addresses the peer host at its connection port plus
// offset.  Clients listen for notices on local TCP port + 1, so the
// default offset is 1.
func PeerPortOffset(offset int) EndpointFunc {
	return func(peer netip.AddrPort) (netip.AddrPort, bool) {
		if !peer.IsValid() {
			return netip.AddrPort{}, false
		}
		port := int(peer.Port()) + offset
		if port <= 0 || port > 65535 {
			return netip.AddrPort{}, false
		}
		return netip.AddrPortFrom(peer.Addr(), uint16(port)), true
	}
}

// Notice is one message and the sessions it is for.  Targets are a
// snapshot taken while the state lock was held.
type Notice struct {
	Message string
	Targets []session.Target
}

// NewUserNotice announces a registration to every live airline session.
func NewUserNotice(u model.User, targets []session.Target) Notice {
	return Notice{
		Message: "BROADCAST NEW_USER " + u.Username + " " + u.Role.String(),
		Targets: targets,
	}
}

// NewFlightNotice announces a flight to every live customer session.
func NewFlightNotice(f *model.Flight, targets []session.Target) Notice {
	return Notice{
		Message: "BROADCAST NEW_FLIGHT " + f.ID + " " + f.Origin + " " + f.Destination + " " + f.Time,
		Targets: targets,
	}
}

// Notifier sends notices.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Discard drops every notice.
type Discard struct{}

func (Discard) Notify(context.Context, Notice) {}

// UDPNotifier sends one datagram per target from a single unconnected
// socket.
type UDPNotifier struct {
	conn         net.PacketConn
	endpoint     EndpointFunc
	writeTimeout time.Duration
}

// NewUDPNotifier opens the sending socket.  A nil endpoint selects
// PeerPortOffset(1).
func NewUDPNotifier(endpoint EndpointFunc, writeTimeout time.Duration) (*UDPNotifier, error) {
	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, err
	}
	if endpoint == nil {
		endpoint = PeerPortOffset(1)
	}
	if writeTimeout <= 0 {
		writeTimeout = 500 * time.Millisecond
	}
	return &UDPNotifier{conn: conn, endpoint: endpoint, writeTimeout: writeTimeout}, nil
}

// Notify sends n.Message to every target.  Errors are logged.
func (u *UDPNotifier) Notify(ctx context.Context, n Notice) {
	payload := []byte(n.Message)
	for _, t := range n.Targets {
		if ctx.Err() != nil {
			return
		}
		dst, ok := u.endpoint(t.Peer)
		if !ok {
			continue
		}
		_ = u.conn.SetWriteDeadline(time.Now().Add(u.writeTimeout))
		if _, err := u.conn.WriteTo(payload, net.UDPAddrFromAddrPort(dst)); err != nil {
			log.Printf("notify: send to %s (%s) failed: %v", t.Username, dst, err)
		}
	}
}

// Close releases the socket.
func (u *UDPNotifier) Close() error { return u.conn.Close() }

package notify

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/session"
)

func TestPeerPortOffset(t *testing.T) {
	plusOne := PeerPortOffset(1)

	got, ok := plusOne(netip.MustParseAddrPort("10.1.2.3:5000"))
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddrPort("10.1.2.3:5001"), got)

	_, ok = plusOne(netip.MustParseAddrPort("10.1.2.3:65535"))
	assert.False(t, ok)
	_, ok = plusOne(netip.AddrPort{})
	assert.False(t, ok)
}

func TestNotices(t *testing.T) {
	n := NewUserNotice(model.User{Username: "alice", Role: model.RoleCustomer}, nil)
	assert.Equal(t, "BROADCAST NEW_USER alice CUSTOMER", n.Message)

	f := &model.Flight{ID: "FL1", Origin: "JFK", Destination: "LAX", Time: "10:00"}
	assert.Equal(t, "BROADCAST NEW_FLIGHT FL1 JFK LAX 10:00", NewFlightNotice(f, nil).Message)
}

func TestUDPNotifier_DeliversToEveryTarget(t *testing.T) {
	var (
		listeners []net.PacketConn
		targets   []session.Target
	)
	for i := 0; i < 2; i++ {
		pc, err := net.ListenPacket("udp", "127.0.0.1:0")
		require.NoError(t, err)
		defer pc.Close()
		listeners = append(listeners, pc)
		port := pc.LocalAddr().(*net.UDPAddr).Port
		// The endpoint is derived as peer port + 1.
		targets = append(targets, session.Target{
			SessionID: "s",
			Username:  "u",
			Peer:      netip.AddrPortFrom(netip.MustParseAddr("127.0.0.1"), uint16(port-1)),
		})
	}
	// A target without an endpoint is skipped without disturbing the rest.
	targets = append(targets, session.Target{SessionID: "x", Username: "ghost"})

	udp, err := NewUDPNotifier(nil, 0)
	require.NoError(t, err)
	defer udp.Close()

	udp.Notify(context.Background(), Notice{Message: "BROADCAST NEW_USER bob AIRLINE", Targets: targets})

	buf := make([]byte, 256)
	for _, pc := range listeners {
		require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
		n, _, err := pc.ReadFrom(buf)
		require.NoError(t, err)
		assert.Equal(t, "BROADCAST NEW_USER bob AIRLINE", string(buf[:n]))
	}
}

func TestUDPNotifier_StopsOnCancelledContext(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()
	port := pc.LocalAddr().(*net.UDPAddr).Port

	udp, err := NewUDPNotifier(PeerPortOffset(0), time.Second)
	require.NoError(t, err)
	defer udp.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	udp.Notify(ctx, Notice{Message: "x", Targets: []session.Target{
		{Peer: netip.AddrPortFrom(netip.MustParseAddr("127.0.0.1"), uint16(port))},
	}})

	require.NoError(t, pc.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = pc.ReadFrom(make([]byte, 8))
	assert.Error(t, err)
}

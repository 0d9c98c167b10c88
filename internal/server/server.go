// Package server is the session layer of the command protocol.  It
// accepts TCP connections, gives each one a session id and a goroutine,
// and feeds every frame it reads to the command processor.  A frame is
// whatever a single read returns, at most MaxFrameBytes long, with any
// trailing CR/LF removed; responses are written back verbatim.
package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/airline-reservation/internal/handler"
)

// DefaultMaxFrameBytes bounds a single command frame.
const DefaultMaxFrameBytes = 1023

// Options configures a Server.
type Options struct {
	MaxFrameBytes int           // read buffer per frame; DefaultMaxFrameBytes when zero
	IdleTimeout   time.Duration // close sessions silent this long; zero disables
}

// Server runs one session per accepted connection.
type Server struct {
	proc     *handler.Processor
	maxFrame int
	idle     time.Duration

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	shutdown bool
	wg       sync.WaitGroup
}

// New returns a server dispatching frames to proc.
func New(proc *handler.Processor, opts Options) *Server {
	if opts.MaxFrameBytes <= 0 {
		opts.MaxFrameBytes = DefaultMaxFrameBytes
	}
	return &Server{
		proc:     proc,
		maxFrame: opts.MaxFrameBytes,
		idle:     opts.IdleTimeout,
		conns:    make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or the
// listener fails.  On return the listener and every open session are
// closed and their goroutines have finished.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log.Printf("server: listening on %s", ln.Addr())
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer s.closeAll()

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = nextBackoff(backoff)
				log.Printf("server: accept error: %v; retrying in %s", err, backoff)
				time.Sleep(backoff)
				continue
			}
			return err
		}
		backoff = 0
		if !s.track(conn) {
			_ = conn.Close()
			return nil
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.serveConn(ctx, conn)
		}()
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > time.Second {
		d = time.Second
	}
	return d
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// closeAll ends every session and waits for their goroutines.
func (s *Server) closeAll() {
	s.mu.Lock()
	s.shutdown = true
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// serveConn runs one session.  Any read error, including a clean close
// by the peer, ends the session the same way.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	id := uuid.NewString()
	peer := PeerAddr(conn.RemoteAddr())
	s.proc.OpenSession(id, peer)
	defer s.proc.CloseSession(id)
	defer conn.Close()

	buf := make([]byte, s.maxFrame)
	for {
		if s.idle > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.idle))
		}
		n, err := conn.Read(buf)
		if n > 0 {
			frame := strings.TrimRight(string(buf[:n]), "\r\n")
			resp := s.proc.Handle(ctx, id, frame)
			if _, werr := conn.Write([]byte(resp)); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// PeerAddr converts a connection address into the form sessions store.
// IPv4-mapped IPv6 addresses are unmapped so that notices go out over
// IPv4 to IPv4 peers.
func PeerAddr(a net.Addr) netip.AddrPort {
	switch t := a.(type) {
	case *net.TCPAddr:
		ap := t.AddrPort()
		return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
	case nil:
		return netip.AddrPort{}
	}
	ap, err := netip.ParseAddrPort(a.String())
	if err != nil {
		return netip.AddrPort{}
	}
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}

// Package handler implements the command protocol.  A Processor turns
// one command frame from a session into one response frame: it splits
// the frame into tokens, runs the matching command against the store
// inside a single Store.Update (or View for LIST_FLIGHTS), and renders
// the outcome.  Notices and events produced by a command are collected
// while the lock is held and delivered after it is released.
//
// The package also hosts the Echo handlers of the admin HTTP API.
package handler

import (
	"context"
	"log"
	"net/netip"
	"strings"
	"time"

	"github.com/iliyamo/airline-reservation/internal/middleware"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/notify"
	"github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/service"
)

// Options configures a Processor.  Zero values are usable: the real
// clock, no notices, no events and no rate limiting.
type Options struct {
	Now      func() time.Time
	Notifier notify.Notifier
	Events   service.Emitter
	Limiter  *middleware.CommandLimiter
}

// Processor executes command frames on behalf of sessions.
type Processor struct {
	store    *repository.Store
	now      func() time.Time
	notifier notify.Notifier
	events   service.Emitter
	limiter  *middleware.CommandLimiter
}

// NewProcessor returns a processor operating on store.
func NewProcessor(store *repository.Store, opts Options) *Processor {
	if store == nil {
		panic("nil store passed to NewProcessor")
	}
	p := &Processor{
		store:    store,
		now:      opts.Now,
		notifier: opts.Notifier,
		events:   opts.Events,
		limiter:  opts.Limiter,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.notifier == nil {
		p.notifier = notify.Discard{}
	}
	return p
}

// Store returns the state domain the processor mutates.
func (p *Processor) Store() *repository.Store { return p.store }

// result is what a command produced besides its error.
type result struct {
	response string
	notices  []notify.Notice
	events   []queue.Event
}

type command func(p *Processor, sessionID string, args []string) (result, error)

// commands maps the first token of a frame to its implementation.
// Matching is exact and case sensitive.
var commands = map[string]command{
	"LIST_FLIGHTS": (*Processor).listFlights,
	"REGISTER":     (*Processor).register,
	"LOGIN":        (*Processor).login,
	"ADD_FLIGHT":   (*Processor).addFlight,
	"RESERVE":      (*Processor).reserve,
	"CONFIRM":      (*Processor).confirm,
	"CANCEL":       (*Processor).cancel,
}

// OpenSession registers a newly accepted connection as anonymous.
func (p *Processor) OpenSession(sessionID string, peer netip.AddrPort) {
	_ = p.store.Update(func(tx *repository.Tx) error {
		tx.Sessions.Open(sessionID, peer)
		return nil
	})
}

// CloseSession drops the connection's binding.  Its reservations stay.
func (p *Processor) CloseSession(sessionID string) {
	_ = p.store.Update(func(tx *repository.Tx) error {
		tx.Sessions.Unbind(sessionID)
		return nil
	})
}

// Handle executes one frame and returns the response frame.  It never
// panics and never returns an empty response.
func (p *Processor) Handle(ctx context.Context, sessionID, frame string) (response string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("handler: session %s: panic handling %q: %v", sessionID, frame, r)
			response = internalError
		}
	}()

	fields := strings.Fields(frame)
	if len(fields) == 0 {
		return errorResponse(model.ErrUnknownCommand)
	}
	name := fields[0]
	run, ok := commands[name]
	if !ok {
		return errorResponse(model.ErrUnknownCommand)
	}
	if !p.allow(ctx, sessionID, name) {
		return errorResponse(model.ErrRateLimited)
	}

	res, err := run(p, sessionID, fields[1:])
	if err != nil {
		return errorResponse(err)
	}
	p.deliver(ctx, res)
	return res.response
}

// allow consults the rate limiter.  Limiter errors fail open.
func (p *Processor) allow(ctx context.Context, sessionID, name string) bool {
	if !p.limiter.Enabled() {
		return true
	}
	var ip string
	_ = p.store.View(func(tx *repository.Tx) error {
		if s, ok := tx.Sessions.Get(sessionID); ok && s.Peer.IsValid() {
			ip = s.Peer.Addr().String()
		}
		return nil
	})
	ok, retry, err := p.limiter.Allow(ctx, middleware.RateKey{IP: ip, SessionID: sessionID, Command: name})
	if err != nil {
		log.Printf("handler: %v", err)
	}
	if !ok {
		log.Printf("handler: session %s rate limited on %s, retry in %s", sessionID, name, retry)
	}
	return ok
}

// deliver sends notices and queues events after the lock is released.
func (p *Processor) deliver(ctx context.Context, res result) {
	for _, n := range res.notices {
		if len(n.Targets) > 0 {
			p.notifier.Notify(ctx, n)
		}
	}
	if p.events != nil && len(res.events) > 0 {
		p.events.Emit(res.events...)
	}
}

const internalError = "ERROR Internal"

// errorResponse renders err as an error frame.  Only domain errors
// reach the client by name.
func errorResponse(err error) string {
	if e, ok := model.AsError(err); ok {
		return "ERROR " + e.Error()
	}
	log.Printf("handler: unexpected error: %v", err)
	return internalError
}

// arg returns args[i], or "" when the frame was too short.
func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// identity reads the caller of a command inside a transaction.
func identity(tx *repository.Tx, sessionID string) (string, model.Role) {
	username, role, _ := tx.Sessions.IdentityFor(sessionID)
	return username, role
}

// Package session tracks live client connections and the identity each
// one has authenticated as.  The registry is a single bidirectional
// table: session id → session and username → session id, kept in step
// so that a username is bound to at most one live session.
//
// Registry does no locking.  It belongs to the shared state domain and
// is only reached through repository.Store, which serializes access.
package session

import (
	"net/netip"
	"sort"

	"github.com/iliyamo/airline-reservation/internal/model"
)

// Session is the server-side state of one connection.
type Session struct {
	ID       string         // connection handle assigned by the session layer
	Peer     netip.AddrPort // remote address of the connection
	Username string         // empty while anonymous
	Role     model.Role     // role of Username; zero while anonymous
}

// Authenticated reports whether the session has logged in.
func (s *Session) Authenticated() bool { return s.Username != "" }

// Target is a snapshot of a live session used to address a
// notification after the state lock has been released.
type Target struct {
	SessionID string
	Username  string
	Peer      netip.AddrPort
}

// Registry maps live sessions to their identities.
type Registry struct {
	byID   map[string]*Session
	byUser map[string]string // username -> session id
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*Session),
		byUser: make(map[string]string),
	}
}

// Open records a freshly accepted, anonymous session.  Opening an id
// that already exists resets it to anonymous.
func (r *Registry) Open(id string, peer netip.AddrPort) {
	r.Unbind(id)
	r.byID[id] = &Session{ID: id, Peer: peer}
}

// Bind associates the session with an authenticated user.  It fails
// with ErrUserAlreadyLoggedIn when the username is held by a different
// live session.  A session that was bound to another username gives
// that username up.  Binding an id that was never opened creates it
// with an unknown peer.
func (r *Registry) Bind(id string, u model.User) error {
	if owner, ok := r.byUser[u.Username]; ok && owner != id {
		return model.ErrUserAlreadyLoggedIn
	}
	s, ok := r.byID[id]
	if !ok {
		s = &Session{ID: id}
		r.byID[id] = s
	}
	if s.Username != "" && s.Username != u.Username {
		delete(r.byUser, s.Username)
	}
	s.Username = u.Username
	s.Role = u.Role
	r.byUser[u.Username] = id
	return nil
}

// IdentityFor returns the session's username and role.  ok is false
// for anonymous or unknown sessions.
func (r *Registry) IdentityFor(id string) (username string, role model.Role, ok bool) {
	s, found := r.byID[id]
	if !found || !s.Authenticated() {
		return "", 0, false
	}
	return s.Username, s.Role, true
}

// Get returns a copy of the session.
func (r *Registry) Get(id string) (Session, bool) {
	s, ok := r.byID[id]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// SessionOf returns the id of the session the username is bound to.
func (r *Registry) SessionOf(username string) (string, bool) {
	id, ok := r.byUser[username]
	return id, ok
}

// Unbind forgets the session and releases its username.  It is called
// when the connection ends, however it ends.  Unknown ids are ignored.
func (r *Registry) Unbind(id string) {
	s, ok := r.byID[id]
	if !ok {
		return
	}
	if s.Username != "" && r.byUser[s.Username] == id {
		delete(r.byUser, s.Username)
	}
	delete(r.byID, id)
}

// LiveSessionsByRole returns the authenticated sessions whose user has
// the given role, ordered by session id.
func (r *Registry) LiveSessionsByRole(role model.Role) []Target {
	out := make([]Target, 0)
	for _, s := range r.byID {
		if s.Authenticated() && s.Role == role {
			out = append(out, Target{SessionID: s.ID, Username: s.Username, Peer: s.Peer})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

// Len returns the number of live sessions, anonymous included.
func (r *Registry) Len() int { return len(r.byID) }

// CountByRole returns the number of authenticated sessions per role.
func (r *Registry) CountByRole() map[model.Role]int {
	out := make(map[model.Role]int, 2)
	for _, s := range r.byID {
		if s.Authenticated() {
			out[s.Role]++
		}
	}
	return out
}

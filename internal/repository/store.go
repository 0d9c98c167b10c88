package repository

import (
	"sync"
	"time"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/session"
)

// Tx is exclusive (or, inside View, shared) access to the whole state
// domain.  A Tx is only valid for the duration of the callback it was
// passed to and must not be retained.
type Tx struct {
	Users        *UserRepo
	Flights      *FlightRepo
	Reservations *ReservationRepo
	Sessions     *session.Registry
}

// Options configures a Store.
type Options struct {
	ReservationTimeout time.Duration // temporary hold window; DefaultReservationTimeout when zero
	BcryptCost         int           // 0 stores passwords as opaque secrets
}

// Store owns the directory, the ledger and the session registry behind
// one lock.  Every command and every expiry sweep runs as a single
// Update, so no two read-modify-write sequences interleave.
type Store struct {
	mu sync.RWMutex
	tx Tx
}

// NewStore returns an empty state domain.
func NewStore(opts Options) *Store {
	flights := NewFlightRepo()
	return &Store{tx: Tx{
		Users:        NewUserRepo(opts.BcryptCost),
		Flights:      flights,
		Reservations: NewReservationRepo(flights, opts.ReservationTimeout),
		Sessions:     session.NewRegistry(),
	}}
}

// Update runs fn with exclusive access.  fn must not block on I/O.
// Repository operations validate before they mutate, so an error
// returned from fn leaves no partial change behind as long as fn
// performs at most one mutating call after its checks.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.tx)
}

// View runs fn with shared access.  fn must not mutate anything.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.tx)
}

// Secret prepares a password for UserRepo.Create.  It reads only
// immutable configuration and is called without the lock.
func (s *Store) Secret(password string) (string, error) { return s.tx.Users.Secret(password) }

// Verify checks a password against a user fetched earlier.  Like
// Secret it does not take the lock.
func (s *Store) Verify(u model.User, password string) bool { return s.tx.Users.Verify(u, password) }

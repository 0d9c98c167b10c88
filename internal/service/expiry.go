package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/airline-reservation/internal/model"
	q "github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/repository"
)

// DefaultSweepInterval is how often lapsed temporary holds are released.
const DefaultSweepInterval = 5 * time.Second

// ExpiryScheduler periodically releases temporary holds that outlived
// the reservation timeout.  Each sweep runs as one store update, the
// same entry point commands use, so a reservation is never confirmed
// and expired at the same time.
type ExpiryScheduler struct {
	store    *repository.Store
	interval time.Duration
	now      func() time.Time
	events   Emitter
}

// NewExpiryScheduler returns a scheduler sweeping store every interval.
// now defaults to time.Now and events may be nil.
func NewExpiryScheduler(store *repository.Store, interval time.Duration, now func() time.Time, events Emitter) *ExpiryScheduler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if now == nil {
		now = time.Now
	}
	return &ExpiryScheduler{store: store, interval: interval, now: now, events: events}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *ExpiryScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep releases every lapsed hold once and returns the released
// reservations.
func (s *ExpiryScheduler) Sweep() []*model.Reservation {
	now := s.now()
	var expired []*model.Reservation
	_ = s.store.Update(func(tx *repository.Tx) error {
		expired = tx.Reservations.SweepExpired(now)
		return nil
	})
	if len(expired) == 0 {
		return nil
	}
	log.Printf("expiry: released %d lapsed reservation(s)", len(expired))
	if s.events != nil {
		evs := make([]q.Event, 0, len(expired))
		for _, res := range expired {
			ev := q.NewEvent(q.EventReservationExpired, now)
			ev.ReservationID = res.ID
			ev.FlightID = res.FlightID
			ev.Username = res.Username
			ev.Seats = res.SeatCodes()
			evs = append(evs, ev)
		}
		s.events.Emit(evs...)
	}
	return expired
}

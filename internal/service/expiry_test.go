package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airline-reservation/internal/model"
	q "github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/repository"
)

type recordingEmitter struct{ events []q.Event }

func (r *recordingEmitter) Emit(events ...q.Event) { r.events = append(r.events, events...) }

func seedStore(t *testing.T, at time.Time) *repository.Store {
	t.Helper()
	store := repository.NewStore(repository.Options{ReservationTimeout: 30 * time.Second})
	require.NoError(t, store.Update(func(tx *repository.Tx) error {
		if _, err := tx.Flights.Create(model.RoleAirline, repository.FlightInput{
			ID: "FL1", Origin: "JFK", Destination: "LAX", Time: "10:00", Columns: 3, Rows: 2,
		}); err != nil {
			return err
		}
		for _, seat := range []string{"A1", "B1"} {
			if _, err := tx.Reservations.Reserve(repository.ReserveInput{
				Username: "alice", Role: model.RoleCustomer, FlightID: "FL1", Seats: []string{seat},
			}, at); err != nil {
				return err
			}
		}
		_, err := tx.Reservations.Confirm("R2", "alice", at)
		return err
	}))
	return store
}

func TestExpiryScheduler_Sweep(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := start
	store := seedStore(t, start)
	events := &recordingEmitter{}
	sched := NewExpiryScheduler(store, time.Second, func() time.Time { return now }, events)

	now = start.Add(30 * time.Second)
	assert.Empty(t, sched.Sweep(), "the boundary is still inside the window")
	assert.Empty(t, events.events)

	now = start.Add(31 * time.Second)
	swept := sched.Sweep()
	require.Len(t, swept, 1)
	assert.Equal(t, "R1", swept[0].ID)
	require.Len(t, events.events, 1)
	assert.Equal(t, q.EventReservationExpired, events.events[0].Type)
	assert.Equal(t, []string{"A1"}, events.events[0].Seats)

	_ = store.View(func(tx *repository.Tx) error {
		f, err := tx.Flights.Get("FL1")
		require.NoError(t, err)
		assert.Equal(t, 5, f.Seats.Available())
		_, ok := tx.Reservations.Get("R2")
		assert.True(t, ok, "confirmed reservations are never swept")
		return nil
	})

	// Nothing left to expire.
	assert.Empty(t, sched.Sweep())
}

func TestExpiryScheduler_Defaults(t *testing.T) {
	sched := NewExpiryScheduler(repository.NewStore(repository.Options{}), 0, nil, nil)
	assert.Equal(t, DefaultSweepInterval, sched.interval)
	assert.Empty(t, sched.Sweep())
}

package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airline-reservation/internal/model"
)

var t0 = time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

func newLedger(t *testing.T) (*FlightRepo, *ReservationRepo) {
	t.Helper()
	flights := NewFlightRepo()
	_, err := flights.Create(model.RoleAirline, FlightInput{ID: "FL1", Origin: "JFK", Destination: "LAX", Time: "10:00", Columns: 3, Rows: 2})
	require.NoError(t, err)
	return flights, NewReservationRepo(flights, 30*time.Second)
}

func customer(flight string, seats ...string) ReserveInput {
	return ReserveInput{Username: "alice", Role: model.RoleCustomer, FlightID: flight, Seats: seats}
}

// assertSeatsMatchLedger checks that Reserved cells match the seats held by
// live reservations.
func assertSeatsMatchLedger(t *testing.T, flights *FlightRepo, ledger *ReservationRepo) {
	t.Helper()
	for _, s := range flights.List() {
		f, err := flights.Get(s.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.HeldSeats(s.ID), f.Seats.Reserved(), "flight %s", s.ID)
	}
}

func TestReservationRepo_ReserveChecksInOrder(t *testing.T) {
	_, ledger := newLedger(t)

	tests := []struct {
		name string
		in   ReserveInput
		want error
	}{
		{"anonymous", ReserveInput{FlightID: "FL1", Seats: []string{"A1"}}, model.ErrNotLoggedIn},
		{"airline", ReserveInput{Username: "air1", Role: model.RoleAirline, FlightID: "FL1", Seats: []string{"A1"}}, model.ErrPermissionDenied},
		{"unknown flight", customer("FL9", "A1"), model.ErrFlightNotFound},
		{"missing flight id", customer(""), model.ErrFlightNotFound},
		{"no seats", customer("FL1"), model.ErrNoSeatsSpecified},
		{"bad seat", customer("FL1", "A1", "Q1"), model.ErrInvalidSeatFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.Reserve(tt.in, t0)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 0, ledger.Len())
}

func TestReservationRepo_SeatConflict(t *testing.T) {
	flights, ledger := newLedger(t)

	res, err := ledger.Reserve(customer("FL1", "A1", "B1"), t0)
	require.NoError(t, err)
	assert.Equal(t, "R1", res.ID)
	assert.Equal(t, model.StatusTemporary, res.Status)

	bob := ReserveInput{Username: "bob", Role: model.RoleCustomer, FlightID: "FL1", Seats: []string{"C1", "B1"}}
	_, err = ledger.Reserve(bob, t0)
	assert.ErrorIs(t, err, model.ErrSeatNotAvailable)
	assertSeatsMatchLedger(t, flights, ledger)
}

func TestReservationRepo_IDsNeverReused(t *testing.T) {
	flights, ledger := newLedger(t)

	var ids []string
	for i := 0; i < 3; i++ {
		res, err := ledger.Reserve(customer("FL1", "A1"), t0)
		require.NoError(t, err)
		ids = append(ids, res.ID)
		_, err = ledger.Cancel(res.ID, "alice")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"R1", "R2", "R3"}, ids)
	assertSeatsMatchLedger(t, flights, ledger)
}

func TestReservationRepo_ConfirmWithinWindow(t *testing.T) {
	flights, ledger := newLedger(t)
	res, err := ledger.Reserve(customer("FL1", "A1"), t0)
	require.NoError(t, err)

	_, err = ledger.Confirm(res.ID, "bob", t0)
	assert.ErrorIs(t, err, model.ErrNotYourReservation)
	_, err = ledger.Confirm(res.ID, "", t0)
	assert.ErrorIs(t, err, model.ErrNotLoggedIn)
	_, err = ledger.Confirm("R42", "alice", t0)
	assert.ErrorIs(t, err, model.ErrReservationNotFound)

	// The boundary itself is still inside the window.
	got, err := ledger.Confirm(res.ID, "alice", t0.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)

	// Re-confirming inside the window is fine.
	_, err = ledger.Confirm(res.ID, "alice", t0.Add(30*time.Second))
	assert.NoError(t, err)
	assertSeatsMatchLedger(t, flights, ledger)
}

func TestReservationRepo_ReconfirmAfterWindowKeepsConfirmedRecord(t *testing.T) {
	flights, ledger := newLedger(t)
	res, err := ledger.Reserve(customer("FL1", "A1", "B1"), t0)
	require.NoError(t, err)
	_, err = ledger.Confirm(res.ID, "alice", t0.Add(time.Second))
	require.NoError(t, err)

	late := t0.Add(40 * time.Second)
	_, err = ledger.Confirm(res.ID, "alice", late)
	assert.ErrorIs(t, err, model.ErrReservationExpired)

	got, ok := ledger.Get(res.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusConfirmed, got.Status)
	f, err := flights.Get("FL1")
	require.NoError(t, err)
	assert.Equal(t, 2, f.Seats.Reserved())

	// Confirmed reservations are never swept.
	assert.Empty(t, ledger.SweepExpired(late))
	assert.Equal(t, 1, ledger.Len())
	assertSeatsMatchLedger(t, flights, ledger)
}

func TestReservationRepo_ExpiredConfirmKeepsSeatsUntilSweep(t *testing.T) {
	flights, ledger := newLedger(t)
	res, err := ledger.Reserve(customer("FL1", "A1", "A2"), t0)
	require.NoError(t, err)

	late := t0.Add(31 * time.Second)
	_, err = ledger.Confirm(res.ID, "alice", late)
	assert.ErrorIs(t, err, model.ErrReservationExpired)

	f, _ := flights.Get("FL1")
	assert.Equal(t, 2, f.Seats.Reserved(), "an expired confirm must not release seats")

	swept := ledger.SweepExpired(late)
	require.Len(t, swept, 1)
	assert.Equal(t, res.ID, swept[0].ID)
	assert.Equal(t, 0, f.Seats.Reserved())
	assert.Equal(t, 0, ledger.Len())
	assertSeatsMatchLedger(t, flights, ledger)
}

func TestReservationRepo_SweepOnlyLapsedTemporaryHolds(t *testing.T) {
	flights, ledger := newLedger(t)
	old, err := ledger.Reserve(customer("FL1", "A1"), t0)
	require.NoError(t, err)
	fresh, err := ledger.Reserve(customer("FL1", "B1"), t0.Add(20*time.Second))
	require.NoError(t, err)
	kept, err := ledger.Reserve(customer("FL1", "C1"), t0)
	require.NoError(t, err)
	_, err = ledger.Confirm(kept.ID, "alice", t0.Add(time.Second))
	require.NoError(t, err)

	swept := ledger.SweepExpired(t0.Add(35 * time.Second))
	require.Len(t, swept, 1)
	assert.Equal(t, old.ID, swept[0].ID)

	_, ok := ledger.Get(fresh.ID)
	assert.True(t, ok)
	_, ok = ledger.Get(kept.ID)
	assert.True(t, ok)
	assertSeatsMatchLedger(t, flights, ledger)
}

func TestReservationRepo_CancelThenReserveSameSeat(t *testing.T) {
	flights, ledger := newLedger(t)
	res, err := ledger.Reserve(customer("FL1", "A1"), t0)
	require.NoError(t, err)
	_, err = ledger.Confirm(res.ID, "alice", t0)
	require.NoError(t, err)

	_, err = ledger.Cancel(res.ID, "bob")
	assert.ErrorIs(t, err, model.ErrNotYourReservation)
	_, err = ledger.Cancel(res.ID, "alice")
	require.NoError(t, err)

	bob := ReserveInput{Username: "bob", Role: model.RoleCustomer, FlightID: "FL1", Seats: []string{"A1"}}
	_, err = ledger.Reserve(bob, t0)
	assert.NoError(t, err)
	assertSeatsMatchLedger(t, flights, ledger)
}

func TestReservationRepo_AllReturnsCopies(t *testing.T) {
	_, ledger := newLedger(t)
	for _, seat := range []string{"A1", "B1", "C1", "A2", "B2", "C2"} {
		_, err := ledger.Reserve(customer("FL1", seat), t0)
		require.NoError(t, err)
	}
	// Drop one so the ordering has to cope with gaps.
	_, err := ledger.Cancel("R2", "alice")
	require.NoError(t, err)

	all := ledger.All()
	require.Len(t, all, 5)
	assert.Equal(t, "R1", all[0].ID)
	assert.Equal(t, "R3", all[1].ID)
	all[0].Seats[0] = model.SeatAddr{Row: 1, Col: 1}
	res, _ := ledger.Get("R1")
	assert.Equal(t, model.SeatAddr{Row: 0, Col: 0}, res.Seats[0])
}

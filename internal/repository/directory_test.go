package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airline-reservation/internal/model"
)

func TestUserRepo_CreateAndAuthenticate(t *testing.T) {
	users := NewUserRepo(0)

	_, err := users.Create("alice", "pw", model.RoleCustomer)
	require.NoError(t, err)

	_, err = users.Create("alice", "other", model.RoleAirline)
	assert.ErrorIs(t, err, model.ErrUsernameAlreadyExists)
	assert.Equal(t, 1, users.Len())

	u, err := users.Authenticate("alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, u.Role, "a failed duplicate must not overwrite the user")

	_, err = users.Authenticate("alice", "nope")
	assert.ErrorIs(t, err, model.ErrInvalidPassword)
	_, err = users.Authenticate("carol", "pw")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserRepo_BcryptSecrets(t *testing.T) {
	users := NewUserRepo(4)

	secret, err := users.Secret("pw")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", secret)

	_, err = users.Create("alice", secret, model.RoleCustomer)
	require.NoError(t, err)

	_, err = users.Authenticate("alice", "pw")
	assert.NoError(t, err)
	_, err = users.Authenticate("alice", "PW")
	assert.ErrorIs(t, err, model.ErrInvalidPassword)
}

func TestFlightRepo_Create(t *testing.T) {
	flights := NewFlightRepo()
	in := FlightInput{ID: "FL1", Origin: "JFK", Destination: "LAX", Time: "10:00", Columns: 3, Rows: 2}

	_, err := flights.Create(model.RoleCustomer, in)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	f, err := flights.Create(model.RoleAirline, in)
	require.NoError(t, err)
	assert.Equal(t, 6, f.Seats.Total())

	_, err = flights.Create(model.RoleAirline, in)
	assert.ErrorIs(t, err, model.ErrDuplicateFlightID)

	bad := in
	bad.ID, bad.Columns = "FL2", 27
	_, err = flights.Create(model.RoleAirline, bad)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	bad.Columns, bad.Rows = 2, 0
	_, err = flights.Create(model.RoleAirline, bad)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	assert.Equal(t, 1, flights.Len())
}

func TestFlightRepo_ListKeepsCreationOrder(t *testing.T) {
	flights := NewFlightRepo()
	assert.Empty(t, flights.List())

	for _, id := range []string{"FL9", "FL1", "FL5"} {
		_, err := flights.Create(model.RoleAirline, FlightInput{ID: id, Origin: "A", Destination: "B", Time: "T", Columns: 1, Rows: 1})
		require.NoError(t, err)
	}
	list := flights.List()
	require.Len(t, list, 3)
	assert.Equal(t, "FL9", list[0].ID)
	assert.Equal(t, "FL5", list[2].ID)
	assert.Equal(t, 1, list[1].Available)
}

func TestStore_UpdateSerializesConcurrentReserves(t *testing.T) {
	store := NewStore(Options{})
	require.NoError(t, store.Update(func(tx *Tx) error {
		_, err := tx.Flights.Create(model.RoleAirline, FlightInput{ID: "FL1", Origin: "A", Destination: "B", Time: "T", Columns: 1, Rows: 1})
		return err
	}))

	const n = 32
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			errs <- store.Update(func(tx *Tx) error {
				_, err := tx.Reservations.Reserve(customer("FL1", "A1"), t0)
				return err
			})
		}()
	}
	var ok, conflicts int
	for i := 0; i < n; i++ {
		switch err := <-errs; {
		case err == nil:
			ok++
		default:
			assert.ErrorIs(t, err, model.ErrSeatNotAvailable)
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}

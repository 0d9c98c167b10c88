package repository

import (
	"sort"
	"strconv"
	"time"

	"github.com/iliyamo/airline-reservation/internal/model"
)

// DefaultReservationTimeout is how long a temporary hold survives
// without confirmation.
const DefaultReservationTimeout = 30 * time.Second

// ReservationRepo is the reservation ledger.  It owns the live
// (Temporary or Confirmed) reservations and keeps them in step with the
// seat grids of the flights they reference: a record is only stored
// after its seats were reserved, and it is only removed together with
// the release of its seats.
type ReservationRepo struct {
	flights *FlightRepo
	timeout time.Duration
	byID    map[string]*model.Reservation
	nextID  uint64
}

// NewReservationRepo returns an empty ledger bound to the flight
// directory whose seat maps it mutates.  A non-positive timeout selects
// DefaultReservationTimeout.
func NewReservationRepo(flights *FlightRepo, timeout time.Duration) *ReservationRepo {
	if timeout <= 0 {
		timeout = DefaultReservationTimeout
	}
	return &ReservationRepo{
		flights: flights,
		timeout: timeout,
		byID:    make(map[string]*model.Reservation),
		nextID:  1,
	}
}

// Timeout returns the temporary hold window.
func (r *ReservationRepo) Timeout() time.Duration { return r.timeout }

// ReserveInput carries the caller identity and the RESERVE arguments.
// An empty Username means the session is anonymous.
type ReserveInput struct {
	Username string
	Role     model.Role
	FlightID string
	Seats    []string
}

// Reserve takes a temporary hold on the requested seats.  The checks run
// in a fixed order: login, role, flight, seat list, then the
// all-or-nothing seat reservation.  Nothing is stored unless every seat
// was reserved.
func (r *ReservationRepo) Reserve(in ReserveInput, now time.Time) (*model.Reservation, error) {
	if in.Username == "" {
		return nil, model.ErrNotLoggedIn
	}
	if in.Role != model.RoleCustomer {
		return nil, model.ErrPermissionDenied
	}
	flight, err := r.flights.Get(in.FlightID)
	if err != nil {
		return nil, err
	}
	if len(in.Seats) == 0 {
		return nil, model.ErrNoSeatsSpecified
	}
	addrs, err := flight.Seats.TryReserve(in.Seats)
	if err != nil {
		return nil, err
	}
	res := &model.Reservation{
		ID:        "R" + strconv.FormatUint(r.nextID, 10),
		FlightID:  flight.ID,
		Username:  in.Username,
		Seats:     addrs,
		Status:    model.StatusTemporary,
		CreatedAt: now,
	}
	r.nextID++
	r.byID[res.ID] = res
	return res, nil
}

// owned looks up a reservation on behalf of username.
func (r *ReservationRepo) owned(id, username string) (*model.Reservation, error) {
	if username == "" {
		return nil, model.ErrNotLoggedIn
	}
	res, ok := r.byID[id]
	if !ok {
		return nil, model.ErrReservationNotFound
	}
	if res.Username != username {
		return nil, model.ErrNotYourReservation
	}
	return res, nil
}

// Confirm turns a temporary hold into a confirmed reservation.  Any
// reservation older than the timeout, confirmed or not, is rejected
// with ErrReservationExpired and left exactly as it was: seats stay
// reserved and the status does not change.  Within the window,
// confirming an already confirmed reservation succeeds without change.
func (r *ReservationRepo) Confirm(id, username string, now time.Time) (*model.Reservation, error) {
	res, err := r.owned(id, username)
	if err != nil {
		return nil, err
	}
	if now.Sub(res.CreatedAt) > r.timeout {
		return nil, model.ErrReservationExpired
	}
	res.Status = model.StatusConfirmed
	return res, nil
}

// Cancel releases every seat of the reservation and removes it,
// whatever its status.
func (r *ReservationRepo) Cancel(id, username string) (*model.Reservation, error) {
	res, err := r.owned(id, username)
	if err != nil {
		return nil, err
	}
	r.remove(res)
	return res, nil
}

// remove frees the seats of res and drops the record.
func (r *ReservationRepo) remove(res *model.Reservation) {
	if f, err := r.flights.Get(res.FlightID); err == nil {
		f.Seats.Release(res.Seats)
	}
	delete(r.byID, res.ID)
}

// SweepExpired releases every temporary hold that has outlived the
// timeout at now and returns the removed records ordered by id.
// Confirmed reservations are never swept.
func (r *ReservationRepo) SweepExpired(now time.Time) []*model.Reservation {
	var expired []*model.Reservation
	for _, res := range r.byID {
		if res.ExpiredAt(now, r.timeout) {
			expired = append(expired, res)
		}
	}
	sortByID(expired)
	for _, res := range expired {
		r.remove(res)
	}
	return expired
}

// Get returns the live reservation with the given id.
func (r *ReservationRepo) Get(id string) (*model.Reservation, bool) {
	res, ok := r.byID[id]
	return res, ok
}

// All returns copies of the live reservations ordered by id.
func (r *ReservationRepo) All() []model.Reservation {
	list := make([]*model.Reservation, 0, len(r.byID))
	for _, res := range r.byID {
		list = append(list, res)
	}
	sortByID(list)
	out := make([]model.Reservation, len(list))
	for i, res := range list {
		out[i] = *res
		out[i].Seats = append([]model.SeatAddr(nil), res.Seats...)
	}
	return out
}

// HeldSeats counts the seats referenced by live reservations of a flight.
func (r *ReservationRepo) HeldSeats(flightID string) int {
	n := 0
	for _, res := range r.byID {
		if res.FlightID == flightID {
			n += len(res.Seats)
		}
	}
	return n
}

// Len returns the number of live reservations.
func (r *ReservationRepo) Len() int { return len(r.byID) }

// sortByID orders reservations by their numeric sequence.
func sortByID(list []*model.Reservation) {
	sort.Slice(list, func(i, j int) bool { return seq(list[i].ID) < seq(list[j].ID) })
}

func seq(id string) uint64 {
	n, _ := strconv.ParseUint(id[1:], 10, 64)
	return n
}

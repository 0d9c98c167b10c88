package handler

import (
	"math"
	"strconv"
	"time"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/repository"
)

// reserve handles RESERVE <flight_id> <seat...>.  The seats are held
// temporarily and must be confirmed within the reservation timeout.
func (p *Processor) reserve(sessionID string, args []string) (result, error) {
	now := p.now()
	var (
		res     *model.Reservation
		timeout int
	)
	err := p.store.Update(func(tx *repository.Tx) error {
		username, role := identity(tx, sessionID)
		var err error
		res, err = tx.Reservations.Reserve(repository.ReserveInput{
			Username: username,
			Role:     role,
			FlightID: arg(args, 0),
			Seats:    tail(args, 1),
		}, now)
		timeout = expiresIn(tx.Reservations.Timeout())
		return err
	})
	if err != nil {
		return result{}, err
	}
	return result{
		response: "RESERVED TEMP " + res.ID + " EXPIRES_IN " + strconv.Itoa(timeout),
		events:   []queue.Event{reservationEvent(queue.EventReservationCreated, res, now)},
	}, nil
}

// confirm handles CONFIRM <reservation_id>.
func (p *Processor) confirm(sessionID string, args []string) (result, error) {
	now := p.now()
	var (
		res       *model.Reservation
		confirmed bool
	)
	err := p.store.Update(func(tx *repository.Tx) error {
		username, _ := identity(tx, sessionID)
		var err error
		if prev, ok := tx.Reservations.Get(arg(args, 0)); ok {
			confirmed = prev.Status == model.StatusConfirmed
		}
		res, err = tx.Reservations.Confirm(arg(args, 0), username, now)
		if err == nil {
			snapshot := *res
			res = &snapshot
		}
		return err
	})
	if err != nil {
		return result{}, err
	}
	out := result{response: "CONFIRMATION OK"}
	if !confirmed {
		out.events = append(out.events, reservationEvent(queue.EventReservationConfirmed, res, now))
	}
	return out, nil
}

// cancel handles CANCEL <reservation_id>.  The seats are released
// immediately, whether the reservation was confirmed or not.
func (p *Processor) cancel(sessionID string, args []string) (result, error) {
	now := p.now()
	var res *model.Reservation
	err := p.store.Update(func(tx *repository.Tx) error {
		username, _ := identity(tx, sessionID)
		var err error
		res, err = tx.Reservations.Cancel(arg(args, 0), username)
		return err
	})
	if err != nil {
		return result{}, err
	}
	return result{
		response: "CANCELED OK",
		events:   []queue.Event{reservationEvent(queue.EventReservationCanceled, res, now)},
	}, nil
}

// expiresIn renders the hold window in whole seconds, rounded up so a
// client never sees less time than it has.
func expiresIn(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

func reservationEvent(t queue.EventType, res *model.Reservation, now time.Time) queue.Event {
	ev := queue.NewEvent(t, now)
	ev.ReservationID = res.ID
	ev.FlightID = res.FlightID
	ev.Username = res.Username
	ev.Seats = res.SeatCodes()
	return ev
}

// tail returns args[i:], or nil when the frame was too short.
func tail(args []string, i int) []string {
	if i < len(args) {
		return args[i:]
	}
	return nil
}

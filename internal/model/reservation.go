package model

import "time"

// ReservationStatus is the live state of a reservation.  Expired and
// Canceled are terminal and are represented by removing the record,
// so they never appear on a stored reservation.
type ReservationStatus uint8

const (
	StatusTemporary ReservationStatus = iota + 1
	StatusConfirmed
)

func (s ReservationStatus) String() string {
	switch s {
	case StatusTemporary:
		return "TEMPORARY"
	case StatusConfirmed:
		return "CONFIRMED"
	}
	return ""
}

// Reservation records a customer's hold on one or more seats of a
// flight.  While the record exists its seats are Reserved on the
// flight's grid and no other reservation may reference them.
//
// Fields:
//  ID        – "R<n>", assigned from a monotonically increasing counter.
//  FlightID  – flight the seats belong to.
//  Username  – customer who holds the reservation.
//  Seats     – resolved seat addresses, in request order.
//  Status    – TEMPORARY until confirmed, then CONFIRMED.
//  CreatedAt – when the hold was taken; the expiry window starts here.
type Reservation struct {
	ID        string
	FlightID  string
	Username  string
	Seats     []SeatAddr
	Status    ReservationStatus
	CreatedAt time.Time
}

// SeatCodes renders the held seats in their textual form.
func (r *Reservation) SeatCodes() []string {
	codes := make([]string, len(r.Seats))
	for i, a := range r.Seats {
		codes[i] = a.Code()
	}
	return codes
}

// ExpiredAt reports whether a Temporary hold created at CreatedAt has
// outlived timeout at now.  The boundary itself is still valid.
func (r *Reservation) ExpiredAt(now time.Time, timeout time.Duration) bool {
	return r.Status == StatusTemporary && now.Sub(r.CreatedAt) > timeout
}

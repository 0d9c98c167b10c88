// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a state change of the reservation server.
type EventType string

const (
	EventUserRegistered       EventType = "user.registered"
	EventFlightAdded          EventType = "flight.added"
	EventReservationCreated   EventType = "reservation.created"
	EventReservationConfirmed EventType = "reservation.confirmed"
	EventReservationCanceled  EventType = "reservation.canceled"
	EventReservationExpired   EventType = "reservation.expired"
)

// Event is published after a command or a sweep changed the shared
// state.  It carries enough information for downstream consumers to
// log, audit or notify without querying the server.  Fields that do not
// apply to a type are left empty.
type Event struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	Username      string    `json:"username,omitempty"`
	Role          string    `json:"role,omitempty"`
	FlightID      string    `json:"flight_id,omitempty"`
	Origin        string    `json:"origin,omitempty"`
	Destination   string    `json:"destination,omitempty"`
	Time          string    `json:"time,omitempty"`
	ReservationID string    `json:"reservation_id,omitempty"`
	Seats         []string  `json:"seats,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewEvent stamps a fresh event id and the occurrence time.
func NewEvent(t EventType, at time.Time) Event {
	return Event{ID: uuid.NewString(), Type: t, OccurredAt: at.UTC()}
}

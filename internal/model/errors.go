package model

import "errors"

// Kind groups domain errors into the families the command layer reports.
// The wire format only carries the Code, but logs and tests use the Kind
// to tell an authentication failure from a conflict or a bad frame.
type Kind uint8

const (
	KindAuth Kind = iota + 1
	KindConflict
	KindNotFound
	KindValidation
	KindTemporal
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindTemporal:
		return "temporal"
	case KindProtocol:
		return "protocol"
	}
	return "unknown"
}

// Error is a domain failure that is surfaced to the client as
// "ERROR <Code>".  Detail is optional and, when set, is appended to the
// response after the code (used by InvalidArgument to name the field).
type Error struct {
	Kind   Kind
	Code   string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Code + " " + e.Detail
	}
	return e.Code
}

// Is matches on Code so that a detailed copy of a sentinel still
// satisfies errors.Is against the sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(kind Kind, code string) *Error { return &Error{Kind: kind, Code: code} }

// Authentication and authorization failures.
var (
	ErrUserNotFound        = newError(KindAuth, "UserNotFound")
	ErrInvalidPassword     = newError(KindAuth, "InvalidPassword")
	ErrUserAlreadyLoggedIn = newError(KindAuth, "UserAlreadyLoggedIn")
	ErrNotLoggedIn         = newError(KindAuth, "NotLoggedIn")
	ErrPermissionDenied    = newError(KindAuth, "PermissionDenied")
)

// Conflicts with existing state.
var (
	ErrUsernameAlreadyExists = newError(KindConflict, "UsernameAlreadyExists")
	ErrDuplicateFlightID     = newError(KindConflict, "DuplicateFlightID")
	ErrSeatNotAvailable      = newError(KindConflict, "SeatNotAvailable")
	ErrNotYourReservation    = newError(KindConflict, "NotYourReservation")
)

// Missing referenced records.
var (
	ErrFlightNotFound      = newError(KindNotFound, "FlightNotFound")
	ErrReservationNotFound = newError(KindNotFound, "ReservationNotFound")
)

// Malformed input.
var (
	ErrInvalidSeatFormat = newError(KindValidation, "InvalidSeatFormat")
	ErrNoSeatsSpecified  = newError(KindValidation, "NoSeatsSpecified")
	ErrInvalidArgument   = newError(KindValidation, "InvalidArgument")
)

// ErrReservationExpired is returned when a temporary hold is confirmed
// after its window has closed.
var ErrReservationExpired = newError(KindTemporal, "ReservationExpired")

// Protocol level failures.
var (
	ErrUnknownCommand = newError(KindProtocol, "UnknownCommand")
	ErrRateLimited    = newError(KindProtocol, "RateLimited")
)

// InvalidArgument reports a missing or unparsable token of a command.
func InvalidArgument(field string) error {
	return &Error{Kind: KindValidation, Code: ErrInvalidArgument.Code, Detail: field}
}

// AsError extracts the domain error from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Package repository holds the in-memory state domain of the server:
// the user and flight directory, the reservation ledger and the session
// registry, all owned by a single Store and mutated only inside
// Store.Update.  Domain failures are the sentinel values of package
// model (model.ErrFlightNotFound, model.ErrSeatNotAvailable, ...);
// handlers map them onto "ERROR <Code>" responses without inspecting
// anything but the code.
//
// The optional MySQL audit journal (AuditRepo) also lives here.  It is
// the only repository that performs I/O and it is never called while
// the store lock is held.
package repository

import "errors"

// ErrAuditDisabled is returned by a nil AuditRepo.  Callers treat it as
// "nothing to do".
var ErrAuditDisabled = errors.New("audit journal disabled")

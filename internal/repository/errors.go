// Package repository implements MySQL persistence for the ticketing and
// accreditation domain.  It also defines the sentinel errors shared by
// every layer above it.  Callers distinguish failure scenarios with
// errors.Is and translate them at the boundary: ErrNotFound maps to 404,
// the conflict family to 409, ErrValidation to 400 and ErrForbidden to
// 403.  All sentinels propagate unchanged from the point of detection.
package repository

import "errors"

// ErrNotFound is returned when a referenced event, ticket, batch, link,
// participant or user does not exist.
var ErrNotFound = errors.New("not found")

// ErrLinkOrTicketFull is returned when a registration is attempted
// against a link or parent ticket whose capacity is exhausted.
var ErrLinkOrTicketFull = errors.New("link or ticket full")

// ErrTicketAlreadyUsed is returned when a user already holds an active
// registration on the same ticket.
var ErrTicketAlreadyUsed = errors.New("ticket already used")

// ErrParticipantNotVerified is returned when an unverified user
// registers for an event that carries a signature-requiring term.
var ErrParticipantNotVerified = errors.New("participant must be verified")

// ErrBatchLimitReached is returned when a checkout requests more seats
// from a price batch than it has left.
var ErrBatchLimitReached = errors.New("batch limit reached")

// ErrEventDisabled is returned when accreditation is attempted against
// an event whose status is DISABLE.
var ErrEventDisabled = errors.New("event disabled")

// ErrForbidden is returned when the caller lacks producer or staff
// rights for the target event.
var ErrForbidden = errors.New("forbidden")

// ErrValidation marks malformed input such as a bad document checksum
// or a single-word name.  Concrete failures wrap it with field detail.
var ErrValidation = errors.New("validation failed")

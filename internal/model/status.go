// Package model defines the persistence entities of the ticketing and
// accreditation domain.  Each struct mirrors a table; status families are
// closed sets of typed string constants so that a mistyped literal fails
// to compile instead of silently creating a new state.
package model

// ParticipantStatus is the gating status of an event participant.  A
// participant is blocked on exactly one requirement at a time until all
// gates are satisfied and the status becomes COMPLETE.
type ParticipantStatus string

const (
	StatusAwaitingPayment   ParticipantStatus = "AWAITING_PAYMENT"
	StatusAwaitingFacial    ParticipantStatus = "AWAITING_FACIAL"
	StatusAwaitingQuiz      ParticipantStatus = "AWAITING_QUIZ"
	StatusAwaitingSignature ParticipantStatus = "AWAITING_SIGNATURE"
	StatusComplete          ParticipantStatus = "COMPLETE"
)

// LinkStatus tracks how much of an invitation link's capacity has been
// consumed.  OPEN means no registrations yet, PART_FULL means some seats
// are taken and FULL means the invite count has been reached.
type LinkStatus string

const (
	LinkOpen     LinkStatus = "OPEN"
	LinkPartFull LinkStatus = "PART_FULL"
	LinkFull     LinkStatus = "FULL"
)

// TicketStatus mirrors LinkStatus at the ticket level, aggregated over
// all price batches of the ticket.
type TicketStatus string

const (
	TicketOpen     TicketStatus = "OPEN"
	TicketPartFull TicketStatus = "PART_FULL"
	TicketFull     TicketStatus = "FULL"
)

// HistoricStatus is the direction of a single accreditation transition.
type HistoricStatus string

const (
	HistoricCheckIn  HistoricStatus = "CHECK_IN"
	HistoricCheckOut HistoricStatus = "CHECK_OUT"
)

// CredentialType selects how participants are credentialed at the door.
type CredentialType string

const (
	CredentialQRCode       CredentialType = "QRCODE"
	CredentialFacial       CredentialType = "FACIAL"
	CredentialFacialInSite CredentialType = "FACIAL_IN_SITE"
)

// EventStatus enables or disables an event as a whole.  Accreditation is
// rejected while the event is DISABLE.
type EventStatus string

const (
	EventEnable  EventStatus = "ENABLE"
	EventDisable EventStatus = "DISABLE"
)

// BalanceStatus is the settlement state of one checkout ledger row.
type BalanceStatus string

const (
	BalancePending BalanceStatus = "PENDING"
	BalancePaid    BalanceStatus = "PAID"
	BalanceFailed  BalanceStatus = "FAILED"
)

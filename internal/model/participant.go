package model

import "time"

// EventParticipant is a registration of a user against one ticket of an
// event.  QRCode is an opaque unique token assigned at creation and
// never changed.  Sequential is a 1-based ordinal within the event,
// assigned at creation and never reused.  A soft-deleted row (DeletedAt
// set) frees its link capacity and no longer counts toward any limit.
type EventParticipant struct {
	ID                 uint64            // event_participants.id
	EventID            uint64            // event_participants.event_id
	EventTicketID      uint64            // event_participants.event_ticket_id
	EventTicketPriceID uint64            // event_participants.event_ticket_price_id
	EventTicketLinkID  uint64            // event_participants.event_ticket_link_id
	UserID             uint64            // event_participants.user_id
	QRCode             string            // event_participants.qrcode (opaque, unique, immutable)
	Sequential         int               // event_participants.sequential (1-based per event)
	Status             ParticipantStatus // event_participants.status
	SignerID           *string           // event_participants.signer_id (pending e-signature marker, nullable)
	Signature          *bool             // event_participants.signature (nullable until signed)
	SearchKey          string            // event_participants.search_key (event title + ticket title)
	SendEmailAt        *time.Time        // event_participants.send_email_at (credential email dispatched)
	DeletedAt          *time.Time        // event_participants.deleted_at (soft-delete marker)
	CreatedAt          time.Time         // event_participants.created_at
}

// PendingSignature reports whether the participant has been registered
// with the e-signature provider but has not signed yet.
func (p *EventParticipant) PendingSignature() bool {
	return p.SignerID != nil && (p.Signature == nil || !*p.Signature)
}

// EventParticipantHistoric is one accreditation transition.  The table
// is append-only; the newest row by CreatedAt determines the current
// checked-in state.
type EventParticipantHistoric struct {
	ID            uint64         // event_participant_historics.id
	ParticipantID uint64         // event_participant_historics.event_participant_id
	Status        HistoricStatus // event_participant_historics.status
	CreatedAt     time.Time      // event_participant_historics.created_at
}

// HistoricEntry is a historic row joined with participant and user
// display fields for the paginated accreditation history view.
type HistoricEntry struct {
	ID            uint64         `json:"id"`
	ParticipantID uint64         `json:"participant_id"`
	Status        HistoricStatus `json:"status"`
	Sequential    int            `json:"sequential"`
	UserName      string         `json:"user_name"`
	UserEmail     string         `json:"user_email"`
	TicketTitle   string         `json:"ticket_title"`
	CreatedAt     time.Time      `json:"created_at"`
}

package model

import "time"

// Event is a producer-created event as stored in the `events` table.
// SearchKey is a denormalized concatenation of title and category kept
// for case-insensitive substring search.
//
// Fields:
//  ID        – primary key identifier.
//  Slug      – unique URL slug.
//  Title     – display title.
//  Category  – free-form category label.
//  Status    – ENABLE or DISABLE.
//  Public    – whether the event is publicly listed.
//  StartsAt  – event start timestamp (UTC).
//  EndsAt    – event end timestamp (UTC).
//  SearchKey – denormalized title+category search field.
type Event struct {
	ID        uint64      // events.id
	Slug      string      // events.slug
	Title     string      // events.title
	Category  string      // events.category
	Status    EventStatus // events.status
	Public    bool        // events.public
	StartsAt  time.Time   // events.starts_at
	EndsAt    time.Time   // events.ends_at
	SearchKey string      // events.search_key
	CreatedAt time.Time   // events.created_at
}

// EventConfig holds the single per-event configuration row.  Exactly one
// config exists per event.
//
// Fields:
//  ID                  – primary key identifier.
//  EventID             – owning event.
//  CredentialType      – QRCODE, FACIAL or FACIAL_IN_SITE.
//  ParticipantNetworks – when true, participants must supply at least one
//                        social network profile before completing.
//  PrintAutomatic      – whether badges print automatically on check-in.
//  Limit               – total participant cap across the event.
type EventConfig struct {
	ID                  uint64         // event_configs.id
	EventID             uint64         // event_configs.event_id
	CredentialType      CredentialType // event_configs.credential_type
	ParticipantNetworks bool           // event_configs.participant_networks
	PrintAutomatic      bool           // event_configs.print_automatic
	Limit               int            // event_configs.limit
}

// EventGates is the subset of event configuration consumed by status
// derivation.  HasSignatureTerm folds the event's terms down to the one
// bit the decision tree needs.
type EventGates struct {
	CredentialType      CredentialType
	ParticipantNetworks bool
	HasSignatureTerm    bool
}

// EventTerm is a document attached to an event.  Terms with Signature set
// require every participant to sign before being considered complete.
type EventTerm struct {
	ID        uint64 // event_terms.id
	EventID   uint64 // event_terms.event_id
	Name      string // event_terms.name
	Signature bool   // event_terms.signature (true when signing is required)
	Path      string // event_terms.path (object storage location of the document)
}

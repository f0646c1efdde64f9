package model

import "time"

// EventTicket is a sellable ticket type of an event.  Guests is the sum
// of the capacities of all price batches; Status aggregates fill state
// across the whole ticket.
type EventTicket struct {
	ID        uint64       // event_tickets.id
	EventID   uint64       // event_tickets.event_id
	Title     string       // event_tickets.title
	Slug      string       // event_tickets.slug (unique per event)
	Guests    int          // event_tickets.guests (aggregate capacity)
	Status    TicketStatus // event_tickets.status
	CreatedAt time.Time    // event_tickets.created_at
}

// EventTicketPrice is a priced capacity tranche ("batch") of a ticket.
// Batch numbers order the tranches; a later batch's publish window must
// not open before the earlier batch's window closes.  Publish window
// fields are nullable: a batch without a window is always purchasable.
type EventTicketPrice struct {
	ID             uint64     // event_ticket_prices.id
	EventTicketID  uint64     // event_ticket_prices.event_ticket_id
	Batch          int        // event_ticket_prices.batch (sequence number)
	Guests         int        // event_ticket_prices.guests (capacity of this batch)
	PriceCents     uint32     // event_ticket_prices.price_cents
	PassOnFee      bool       // event_ticket_prices.pass_on_fee
	StartPublishAt *time.Time // event_ticket_prices.start_publish_at (nullable)
	EndPublishAt   *time.Time // event_ticket_prices.end_publish_at (nullable)
}

// EventTicketLink is an invitation carrying capacity against one ticket
// price batch.  Registrations consume the link's Invite capacity; the
// link flips to FULL when the last seat is taken.  Bonus links are rows
// created as a side effect of another purchase.
type EventTicketLink struct {
	ID                 uint64     // event_ticket_links.id
	EventTicketID      uint64     // event_ticket_links.event_ticket_id
	EventTicketPriceID uint64     // event_ticket_links.event_ticket_price_id
	OwnerUserID        uint64     // event_ticket_links.owner_user_id
	Invite             int        // event_ticket_links.invite (capacity granted)
	Status             LinkStatus // event_ticket_links.status
	CreatedAt          time.Time  // event_ticket_links.created_at
}

// EventTicketBonus is a configured grant of extra invitation capacity on
// a different ticket, triggered when a specific batch is purchased.
type EventTicketBonus struct {
	ID                 uint64 // event_ticket_bonuses.id
	EventTicketPriceID uint64 // event_ticket_bonuses.event_ticket_price_id (triggering batch)
	TargetTicketID     uint64 // event_ticket_bonuses.target_ticket_id
	TargetPriceID      uint64 // event_ticket_bonuses.target_price_id (batch the minted link draws from)
	Quantity           int    // event_ticket_bonuses.quantity (invite capacity of the minted link)
}

// LinkDetail is a link joined with its parent ticket and event, loaded
// in one shot by the registration path so that downstream status
// derivation does not need further round trips.
type LinkDetail struct {
	Link   EventTicketLink
	Ticket EventTicket
	Event  Event
	Config EventConfig
	Terms  []EventTerm
}

// HasSignatureTerm reports whether any term of the event requires a
// participant signature.
func (d *LinkDetail) HasSignatureTerm() bool {
	for _, t := range d.Terms {
		if t.Signature {
			return true
		}
	}
	return false
}

// Gates folds the detail down to the event gates consumed by status
// derivation.
func (d *LinkDetail) Gates() EventGates {
	return EventGates{
		CredentialType:      d.Config.CredentialType,
		ParticipantNetworks: d.Config.ParticipantNetworks,
		HasSignatureTerm:    d.HasSignatureTerm(),
	}
}

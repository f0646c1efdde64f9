package model

import "time"

// EventBalance is one write-once ledger row recorded per requested batch
// of a checkout.  SessionID references the payment provider's checkout
// session and stays nil when no payment was required.  Settlement flips
// Status from PENDING to PAID or FAILED; rows are never rewritten
// otherwise.
type EventBalance struct {
	ID          uint64        // event_balances.id
	UserID      uint64        // event_balances.user_id (the buyer)
	EventID     uint64        // event_balances.event_id
	TicketID    uint64        // event_balances.event_ticket_id
	PriceID     uint64        // event_balances.event_ticket_price_id
	Quantity    int           // event_balances.quantity
	AmountCents uint32        // event_balances.amount_cents (quantity * unit price)
	SessionID   *string       // event_balances.session_id (nullable)
	Status      BalanceStatus // event_balances.status
	CreatedAt   time.Time     // event_balances.created_at
}

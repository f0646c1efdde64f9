package service

import (
	"context"
	"errors"
)

// LineItem is one (price batch, quantity) pair of a checkout session.
type LineItem struct {
	PriceRef uint64 `json:"price_ref"`
	Quantity int    `json:"quantity"`
}

// CheckoutSession is the provider-side session created for a purchase.
type CheckoutSession struct {
	URL         string
	SessionID   string
	TotalAmount uint32
}

// PaymentProvider creates checkout sessions for paid line items.
// Settlement arrives asynchronously through the payment.settled queue,
// not through this interface.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, items []LineItem) (*CheckoutSession, error)
}

// ErrNotComparable is returned by a FacialComparer when the two images
// cannot be compared at all (no face found, unusable quality).
var ErrNotComparable = errors.New("images not comparable")

// FacialComparer compares two face images and returns a similarity
// percentage in [0,100].
type FacialComparer interface {
	Compare(ctx context.Context, a, b []byte) (float64, error)
}

// ObjectStore stores and retrieves opaque byte blobs at a path.
type ObjectStore interface {
	Put(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
}

// ParticipantRegisteredEvent is published after a registration commits.
type ParticipantRegisteredEvent struct {
	ParticipantID uint64 `json:"participant_id"`
	EventID       uint64 `json:"event_id"`
	EventTitle    string `json:"event_title"`
	TicketID      uint64 `json:"ticket_id"`
	TicketTitle   string `json:"ticket_title"`
	UserID        uint64 `json:"user_id"`
	UserEmail     string `json:"user_email"`
	Sequential    int    `json:"sequential"`
	Status        string `json:"status"`
	RegisteredAt  string `json:"registered_at"`
}

// Publisher delivers domain events to the message broker.  Publishing
// is best effort: callers log failures and never fail the request.
type Publisher interface {
	ParticipantRegistered(ctx context.Context, ev ParticipantRegisteredEvent) error
}

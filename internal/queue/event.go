// Package queue defines message payloads exchanged over the broker and
// the settlement consumer that applies payment notifications.
package queue

// PaymentSettledEvent is delivered on the payment.settled queue when
// the payment provider reports the outcome of a checkout session.
type PaymentSettledEvent struct {
	SessionID string `json:"session_id"`
	Succeeded bool   `json:"succeeded"`
}

// Queue names used by this application.  Queues are declared durable
// by both producers and consumers so declaration is idempotent.
const (
	ParticipantRegisteredQueue = "participant.registered"
	PaymentSettledQueue        = "payment.settled"
)

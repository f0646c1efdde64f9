package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SweepService reclaims seats held by participants stuck in
// AWAITING_PAYMENT past the payment TTL.  Stale rows are soft-deleted
// (their sequential is never reused) and each affected link and ticket
// reverts to a non-FULL fill state so the seat can be sold again.
type SweepService struct {
	store      Store
	log        *zerolog.Logger
	paymentTTL time.Duration
}

// NewSweepService constructs a SweepService.
func NewSweepService(store Store, log *zerolog.Logger, paymentTTL time.Duration) *SweepService {
	return &SweepService{store: store, log: log, paymentTTL: paymentTTL}
}

// Reclaim runs one sweep pass and returns the number of participants
// reclaimed.  The whole pass is a single unit of work.
func (s *SweepService) Reclaim(ctx context.Context) (int, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cutoff := time.Now().UTC().Add(-s.paymentTTL)
	stale, err := tx.StaleAwaitingPayment(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	for _, p := range stale {
		if err := tx.SoftDeleteParticipant(ctx, p.ID); err != nil {
			return 0, err
		}
		if err := releaseLink(ctx, tx, p.EventTicketLinkID, p.EventTicketID); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true

	if len(stale) > 0 {
		s.log.Info().Int("reclaimed", len(stale)).Msg("stale awaiting-payment participants reclaimed")
	}
	return len(stale), nil
}

package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
)

// SettlementService consumes payment-settled notifications.  On
// success every ledger row of the session flips to PAID and each
// participant still AWAITING_PAYMENT on a settled ticket has its status
// re-derived; on failure the rows flip to FAILED and participants stay
// gated until the reclaim sweep frees their seats.
type SettlementService struct {
	store Store
	log   *zerolog.Logger
}

// NewSettlementService constructs a SettlementService.
func NewSettlementService(store Store, log *zerolog.Logger) *SettlementService {
	return &SettlementService{store: store, log: log}
}

// Settle applies one settlement notification as a single unit of work.
// Unknown session ids are a no-op: the ledger update matches zero rows
// and nothing else happens.
func (s *SettlementService) Settle(ctx context.Context, sessionID string, succeeded bool) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	status := model.BalancePaid
	if !succeeded {
		status = model.BalanceFailed
	}
	if err := tx.SetBalancesStatus(ctx, sessionID, status); err != nil {
		return err
	}

	if succeeded {
		rows, err := tx.BalancesBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			participant, err := tx.ActiveParticipantByUserAndTicket(ctx, row.UserID, row.TicketID)
			if err != nil {
				if isNotFound(err) {
					continue // gifted line, recipient not registered yet
				}
				return err
			}
			if participant.Status != model.StatusAwaitingPayment {
				continue
			}
			gates, err := tx.UserGates(ctx, participant.UserID)
			if err != nil {
				return err
			}
			eventGates, err := eventGatesFor(ctx, tx, participant)
			if err != nil {
				return err
			}
			next := DeriveStatus(eventGates, gates, participant)
			if err := tx.SetParticipantStatus(ctx, participant.ID, next); err != nil {
				return err
			}
			s.log.Info().
				Uint64("participant_id", participant.ID).
				Str("status", string(next)).
				Str("session_id", sessionID).
				Msg("payment settled, status re-derived")
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// eventGatesFor loads the gating configuration of the participant's
// event through the user-scoped gates query.
func eventGatesFor(ctx context.Context, tx Tx, participant *model.EventParticipant) (model.EventGates, error) {
	all, err := tx.ActiveParticipantsByUser(ctx, participant.UserID)
	if err != nil {
		return model.EventGates{}, err
	}
	for _, pg := range all {
		if pg.Participant.ID == participant.ID {
			return pg.Gates, nil
		}
	}
	return model.EventGates{}, nil
}

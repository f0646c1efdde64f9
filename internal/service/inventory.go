package service

import (
	"context"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/repository"
)

// consumeLink allocates one seat from the link inside the caller's unit
// of work.  The link row is locked first, so concurrent registrations
// against the same link serialize here and the loser observes the FULL
// status written by the winner.
//
// The capacity check counts existing participants plus the row about to
// be inserted: a link with invite = 1 flips to FULL on the very first
// registration.  After flipping the link, the parent ticket's fill
// state is recomputed against its aggregate guest capacity.  The caller
// must insert the participant in the same transaction; a failed insert
// rolls the flips back.
func consumeLink(ctx context.Context, tx Tx, linkID uint64) (*model.LinkDetail, error) {
	link, err := tx.LockLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	detail, err := tx.LinkDetail(ctx, link)
	if err != nil {
		return nil, err
	}
	if link.Status == model.LinkFull || detail.Ticket.Status == model.TicketFull {
		return nil, repository.ErrLinkOrTicketFull
	}

	taken, err := tx.CountLinkParticipants(ctx, linkID)
	if err != nil {
		return nil, err
	}
	linkStatus := model.LinkPartFull
	if taken+1 >= link.Invite {
		linkStatus = model.LinkFull
	}
	if err := tx.SetLinkStatus(ctx, linkID, linkStatus); err != nil {
		return nil, err
	}

	ticketTaken, err := tx.CountTicketParticipants(ctx, detail.Ticket.ID)
	if err != nil {
		return nil, err
	}
	ticketStatus := model.TicketPartFull
	if ticketTaken+1 >= detail.Ticket.Guests {
		ticketStatus = model.TicketFull
	}
	if err := tx.SetTicketStatus(ctx, detail.Ticket.ID, ticketStatus); err != nil {
		return nil, err
	}

	detail.Link.Status = linkStatus
	detail.Ticket.Status = ticketStatus
	return detail, nil
}

// releaseLink recomputes link and ticket fill state after a participant
// was soft-deleted, reverting FULL rows so the freed seat can be sold
// again.  Runs inside the reclaim sweep's unit of work.
func releaseLink(ctx context.Context, tx Tx, linkID, ticketID uint64) error {
	remaining, err := tx.CountLinkParticipants(ctx, linkID)
	if err != nil {
		return err
	}
	linkStatus := model.LinkPartFull
	if remaining == 0 {
		linkStatus = model.LinkOpen
	}
	if err := tx.SetLinkStatus(ctx, linkID, linkStatus); err != nil {
		return err
	}

	ticketRemaining, err := tx.CountTicketParticipants(ctx, ticketID)
	if err != nil {
		return err
	}
	ticketStatus := model.TicketPartFull
	if ticketRemaining == 0 {
		ticketStatus = model.TicketOpen
	}
	return tx.SetTicketStatus(ctx, ticketID, ticketStatus)
}

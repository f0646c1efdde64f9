// Package service implements the accreditation and inventory core:
// capacity-safe registration, checkout with bonus allocation, gating
// status derivation, accreditation history and payment settlement.
// Services depend on the Store interface; the MySQL implementation
// lives in internal/repository and tests substitute an in-memory fake.
package service

import (
	"context"
	"time"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/repository"
)

// Store opens units of work and serves the read paths that do not need
// one.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	HistoryPage(ctx context.Context, eventID uint64, page, perPage int) ([]model.HistoricEntry, int, error)
	CheckedInCount(ctx context.Context, eventID uint64) (int, error)
	EventByID(ctx context.Context, eventID uint64) (*model.Event, error)
}

// Tx is one transactional unit of work over the relational schema.
// Every capacity check and its dependent write run against the same Tx
// so that partial failure aborts the whole unit.  Lookups return
// repository.ErrNotFound when the row does not exist.
type Tx interface {
	Commit() error
	Rollback() error

	LockLink(ctx context.Context, linkID uint64) (*model.EventTicketLink, error)
	LinkDetail(ctx context.Context, link *model.EventTicketLink) (*model.LinkDetail, error)
	CountLinkParticipants(ctx context.Context, linkID uint64) (int, error)
	CountTicketParticipants(ctx context.Context, ticketID uint64) (int, error)
	CountBatchParticipants(ctx context.Context, priceID uint64) (int, error)
	SetLinkStatus(ctx context.Context, linkID uint64, status model.LinkStatus) error
	SetTicketStatus(ctx context.Context, ticketID uint64, status model.TicketStatus) error
	CreateLink(ctx context.Context, link *model.EventTicketLink) error
	PriceByID(ctx context.Context, priceID uint64) (*model.EventTicketPrice, error)
	TicketByID(ctx context.Context, ticketID uint64) (*model.EventTicket, error)
	BonusesByPrice(ctx context.Context, priceID uint64) ([]model.EventTicketBonus, error)

	EventByID(ctx context.Context, eventID uint64) (*model.Event, error)
	LockEvent(ctx context.Context, eventID uint64) error
	CountEventParticipants(ctx context.Context, eventID uint64) (int, error)

	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id uint64) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	UserGates(ctx context.Context, userID uint64) (model.UserGates, error)
	LatestFacial(ctx context.Context, userID uint64) (*model.UserFacial, error)
	AddFacial(ctx context.Context, f *model.UserFacial) error
	AddSocial(ctx context.Context, s *model.UserSocial) error

	ActiveParticipantByUserAndTicket(ctx context.Context, userID, ticketID uint64) (*model.EventParticipant, error)
	CreateParticipant(ctx context.Context, p *model.EventParticipant) error
	ParticipantByID(ctx context.Context, id uint64) (*model.EventParticipant, error)
	SetParticipantStatus(ctx context.Context, id uint64, status model.ParticipantStatus) error
	ActiveParticipantsByUser(ctx context.Context, userID uint64) ([]repository.ParticipantGates, error)
	StaleAwaitingPayment(ctx context.Context, cutoff time.Time) ([]model.EventParticipant, error)
	SoftDeleteParticipant(ctx context.Context, id uint64) error

	LatestHistoric(ctx context.Context, participantID uint64) (*model.EventParticipantHistoric, error)
	AppendHistoric(ctx context.Context, participantID uint64, status model.HistoricStatus) (*model.EventParticipantHistoric, error)

	CreateBalance(ctx context.Context, b *model.EventBalance) error
	BalancesBySession(ctx context.Context, sessionID string) ([]model.EventBalance, error)
	SetBalancesStatus(ctx context.Context, sessionID string, status model.BalanceStatus) error
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
)

// Store composes the per-entity repositories behind a single
// unit-of-work boundary.  Every multi-write operation in the service
// layer runs against one Tx obtained from Begin, so a failure anywhere
// in the unit rolls back every write including inventory flips.
type Store struct {
	db  *sql.DB
	log *zerolog.Logger

	Events       *EventRepo
	Tickets      *TicketRepo
	Links        *LinkRepo
	Participants *ParticipantRepo
	Historics    *HistoricRepo
	Users        *UserRepo
	Balances     *BalanceRepo
}

// NewStore wires the repositories over one DB handle.
func NewStore(db *sql.DB, log *zerolog.Logger) *Store {
	return &Store{
		db:           db,
		log:          log,
		Events:       NewEventRepo(db),
		Tickets:      NewTicketRepo(db),
		Links:        NewLinkRepo(db),
		Participants: NewParticipantRepo(db),
		Historics:    NewHistoricRepo(db),
		Users:        NewUserRepo(db),
		Balances:     NewBalanceRepo(db),
	}
}

// DB exposes the underlying handle for callers that manage their own
// statements.
func (s *Store) DB() *sql.DB { return s.db }

// Begin opens a transaction and returns the unit of work bound to it.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, s: s}, nil
}

// HistoryPage returns one page of accreditation history for an event.
func (s *Store) HistoryPage(ctx context.Context, eventID uint64, page, perPage int) ([]model.HistoricEntry, int, error) {
	return s.Historics.ListByEvent(ctx, eventID, page, perPage)
}

// CheckedInCount counts participants currently checked in at the event.
func (s *Store) CheckedInCount(ctx context.Context, eventID uint64) (int, error) {
	return s.Historics.CountCheckedIn(ctx, eventID)
}

// EventByID loads one event outside any transaction.
func (s *Store) EventByID(ctx context.Context, eventID uint64) (*model.Event, error) {
	return s.Events.GetByID(ctx, eventID)
}

// EnabledEventIDs lists ids of events accepting accreditation.
func (s *Store) EnabledEventIDs(ctx context.Context) ([]uint64, error) {
	return s.Events.EnabledIDs(ctx)
}

// Tx is a single unit of work.  Its methods delegate to the per-entity
// repositories with the held transaction; Commit or Rollback must be
// called exactly once.
type Tx struct {
	tx *sql.Tx
	s  *Store
}

// Commit commits the unit of work.
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback aborts the unit of work.  Safe to defer after a commit: the
// driver returns sql.ErrTxDone, which callers ignore.
func (t *Tx) Rollback() error { return t.tx.Rollback() }

func (t *Tx) LockLink(ctx context.Context, linkID uint64) (*model.EventTicketLink, error) {
	return t.s.Links.GetForUpdateTx(ctx, t.tx, linkID)
}

// LinkDetail assembles a locked link's surroundings: parent ticket,
// event, config and terms, in one unit for downstream derivation.
func (t *Tx) LinkDetail(ctx context.Context, link *model.EventTicketLink) (*model.LinkDetail, error) {
	ticket, err := t.s.Tickets.GetByIDTx(ctx, t.tx, link.EventTicketID)
	if err != nil {
		return nil, err
	}
	ev, err := t.s.Events.GetByIDTx(ctx, t.tx, ticket.EventID)
	if err != nil {
		return nil, err
	}
	cfg, err := t.s.Events.ConfigByEventTx(ctx, t.tx, ev.ID)
	if err != nil {
		return nil, err
	}
	terms, err := t.s.Events.TermsByEventTx(ctx, t.tx, ev.ID)
	if err != nil {
		return nil, err
	}
	return &model.LinkDetail{Link: *link, Ticket: *ticket, Event: *ev, Config: *cfg, Terms: terms}, nil
}

func (t *Tx) CountLinkParticipants(ctx context.Context, linkID uint64) (int, error) {
	return t.s.Links.CountActiveTx(ctx, t.tx, linkID)
}

func (t *Tx) CountTicketParticipants(ctx context.Context, ticketID uint64) (int, error) {
	return t.s.Tickets.CountActiveTx(ctx, t.tx, ticketID)
}

func (t *Tx) CountBatchParticipants(ctx context.Context, priceID uint64) (int, error) {
	return t.s.Tickets.CountActiveByPriceTx(ctx, t.tx, priceID)
}

func (t *Tx) SetLinkStatus(ctx context.Context, linkID uint64, status model.LinkStatus) error {
	return t.s.Links.UpdateStatusTx(ctx, t.tx, linkID, status)
}

func (t *Tx) SetTicketStatus(ctx context.Context, ticketID uint64, status model.TicketStatus) error {
	return t.s.Tickets.UpdateStatusTx(ctx, t.tx, ticketID, status)
}

func (t *Tx) CreateLink(ctx context.Context, link *model.EventTicketLink) error {
	return t.s.Links.CreateTx(ctx, t.tx, link)
}

func (t *Tx) PriceByID(ctx context.Context, priceID uint64) (*model.EventTicketPrice, error) {
	return t.s.Tickets.PriceByIDTx(ctx, t.tx, priceID)
}

func (t *Tx) TicketByID(ctx context.Context, ticketID uint64) (*model.EventTicket, error) {
	return t.s.Tickets.GetByIDTx(ctx, t.tx, ticketID)
}

func (t *Tx) BonusesByPrice(ctx context.Context, priceID uint64) ([]model.EventTicketBonus, error) {
	return t.s.Tickets.BonusesByPriceTx(ctx, t.tx, priceID)
}

func (t *Tx) EventByID(ctx context.Context, eventID uint64) (*model.Event, error) {
	return t.s.Events.GetByIDTx(ctx, t.tx, eventID)
}

func (t *Tx) LockEvent(ctx context.Context, eventID uint64) error {
	return t.s.Events.LockTx(ctx, t.tx, eventID)
}

func (t *Tx) CountEventParticipants(ctx context.Context, eventID uint64) (int, error) {
	return t.s.Events.CountParticipantsTx(ctx, t.tx, eventID)
}

func (t *Tx) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return t.s.Users.GetByEmailTx(ctx, t.tx, email)
}

func (t *Tx) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	return t.s.Users.GetByIDTx(ctx, t.tx, id)
}

func (t *Tx) CreateUser(ctx context.Context, u *model.User) error {
	return t.s.Users.CreateTx(ctx, t.tx, u)
}

func (t *Tx) UserGates(ctx context.Context, userID uint64) (model.UserGates, error) {
	return t.s.Users.GatesTx(ctx, t.tx, userID)
}

func (t *Tx) LatestFacial(ctx context.Context, userID uint64) (*model.UserFacial, error) {
	return t.s.Users.LatestFacialTx(ctx, t.tx, userID)
}

func (t *Tx) AddFacial(ctx context.Context, f *model.UserFacial) error {
	return t.s.Users.AddFacialTx(ctx, t.tx, f)
}

func (t *Tx) AddSocial(ctx context.Context, soc *model.UserSocial) error {
	return t.s.Users.AddSocialTx(ctx, t.tx, soc)
}

func (t *Tx) ActiveParticipantByUserAndTicket(ctx context.Context, userID, ticketID uint64) (*model.EventParticipant, error) {
	return t.s.Participants.FindActiveByUserAndTicketTx(ctx, t.tx, userID, ticketID)
}

func (t *Tx) CreateParticipant(ctx context.Context, p *model.EventParticipant) error {
	return t.s.Participants.CreateTx(ctx, t.tx, p)
}

func (t *Tx) ParticipantByID(ctx context.Context, id uint64) (*model.EventParticipant, error) {
	return t.s.Participants.GetByIDTx(ctx, t.tx, id)
}

func (t *Tx) SetParticipantStatus(ctx context.Context, id uint64, status model.ParticipantStatus) error {
	return t.s.Participants.UpdateStatusTx(ctx, t.tx, id, status)
}

func (t *Tx) ActiveParticipantsByUser(ctx context.Context, userID uint64) ([]ParticipantGates, error) {
	return t.s.Participants.ActiveByUserTx(ctx, t.tx, userID)
}

func (t *Tx) StaleAwaitingPayment(ctx context.Context, cutoff time.Time) ([]model.EventParticipant, error) {
	return t.s.Participants.StaleAwaitingPaymentTx(ctx, t.tx, cutoff)
}

func (t *Tx) SoftDeleteParticipant(ctx context.Context, id uint64) error {
	return t.s.Participants.SoftDeleteTx(ctx, t.tx, id)
}

func (t *Tx) LatestHistoric(ctx context.Context, participantID uint64) (*model.EventParticipantHistoric, error) {
	return t.s.Historics.LatestTx(ctx, t.tx, participantID)
}

func (t *Tx) AppendHistoric(ctx context.Context, participantID uint64, status model.HistoricStatus) (*model.EventParticipantHistoric, error) {
	return t.s.Historics.AppendTx(ctx, t.tx, participantID, status)
}

func (t *Tx) CreateBalance(ctx context.Context, b *model.EventBalance) error {
	return t.s.Balances.CreateTx(ctx, t.tx, b)
}

func (t *Tx) BalancesBySession(ctx context.Context, sessionID string) ([]model.EventBalance, error) {
	return t.s.Balances.BySessionTx(ctx, t.tx, sessionID)
}

func (t *Tx) SetBalancesStatus(ctx context.Context, sessionID string, status model.BalanceStatus) error {
	return t.s.Balances.SetStatusBySessionTx(ctx, t.tx, sessionID, status)
}

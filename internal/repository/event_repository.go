package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
)

// EventRepo provides read access to events and the event-scoped locks
// and counts used during registration.  Event rows are created by the
// producer flow and are only ever read here.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, slug, title, category, status, public, starts_at, ends_at, search_key, created_at`

func scanEvent(row *sql.Row) (*model.Event, error) {
	var ev model.Event
	err := row.Scan(&ev.ID, &ev.Slug, &ev.Title, &ev.Category, &ev.Status, &ev.Public,
		&ev.StartsAt, &ev.EndsAt, &ev.SearchKey, &ev.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// GetByID loads a single event.  Returns ErrNotFound when no row exists.
func (r *EventRepo) GetByID(ctx context.Context, eventID uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	return scanEvent(r.db.QueryRowContext(ctx, q, eventID))
}

// EnabledIDs lists the ids of all events currently accepting
// accreditation, used by the dashboard counter warm loop.
func (r *EventRepo) EnabledIDs(ctx context.Context) ([]uint64, error) {
	const q = `SELECT id FROM events WHERE status = 'ENABLE'`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetByIDTx is GetByID within an existing transaction.
func (r *EventRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, eventID uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	return scanEvent(tx.QueryRowContext(ctx, q, eventID))
}

// LockTx takes a row lock on the event.  Sequential numbers are assigned
// as count+1 while this lock is held, which serializes concurrent
// registrations for the same event and keeps the sequence monotonic and
// gapless.  Returns ErrNotFound when the event does not exist.
func (r *EventRepo) LockTx(ctx context.Context, tx *sql.Tx, eventID uint64) error {
	const q = `SELECT id FROM events WHERE id = ? FOR UPDATE`
	var id uint64
	if err := tx.QueryRowContext(ctx, q, eventID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// CountParticipantsTx counts every participant row ever written for the
// event, soft-deleted ones included.  Sequential numbers come from this
// count, so reclaimed registrations must keep occupying their slot or a
// later registration would be handed a number that was already printed
// on someone's badge.
func (r *EventRepo) CountParticipantsTx(ctx context.Context, tx *sql.Tx, eventID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM event_participants WHERE event_id = ?`
	var n int
	if err := tx.QueryRowContext(ctx, q, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ConfigByEventTx loads the single configuration row of an event.
func (r *EventRepo) ConfigByEventTx(ctx context.Context, tx *sql.Tx, eventID uint64) (*model.EventConfig, error) {
	const q = `SELECT id, event_id, credential_type, participant_networks, print_automatic, ` + "`limit`" + `
	           FROM event_configs WHERE event_id = ?`
	var c model.EventConfig
	err := tx.QueryRowContext(ctx, q, eventID).Scan(
		&c.ID, &c.EventID, &c.CredentialType, &c.ParticipantNetworks, &c.PrintAutomatic, &c.Limit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// TermsByEventTx loads all terms of an event ordered by id.
func (r *EventRepo) TermsByEventTx(ctx context.Context, tx *sql.Tx, eventID uint64) ([]model.EventTerm, error) {
	const q = `SELECT id, event_id, name, signature, path FROM event_terms WHERE event_id = ? ORDER BY id`
	rows, err := tx.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var terms []model.EventTerm
	for rows.Next() {
		var t model.EventTerm
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.Signature, &t.Path); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return terms, nil
}

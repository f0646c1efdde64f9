package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
)

// HistoricRepo provides access to the append-only accreditation log.
// Rows are never mutated or deleted; the newest row per participant
// (by created_at, id as tie-break) determines the current state.
type HistoricRepo struct {
	db *sql.DB
}

// NewHistoricRepo returns a new HistoricRepo bound to the given database.
func NewHistoricRepo(db *sql.DB) *HistoricRepo { return &HistoricRepo{db: db} }

// LatestTx returns the most recent historic row for a participant.
// Returns ErrNotFound when the participant has never been accredited.
func (r *HistoricRepo) LatestTx(ctx context.Context, tx *sql.Tx, participantID uint64) (*model.EventParticipantHistoric, error) {
	const q = `SELECT id, event_participant_id, status, created_at
	           FROM event_participant_historics
	           WHERE event_participant_id = ?
	           ORDER BY created_at DESC, id DESC
	           LIMIT 1`
	var h model.EventParticipantHistoric
	err := tx.QueryRowContext(ctx, q, participantID).Scan(&h.ID, &h.ParticipantID, &h.Status, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

// AppendTx inserts one accreditation transition.  Prior rows are never
// touched.  The generated ID and database timestamp are queried back
// onto the returned record.
func (r *HistoricRepo) AppendTx(ctx context.Context, tx *sql.Tx, participantID uint64, status model.HistoricStatus) (*model.EventParticipantHistoric, error) {
	const q = `INSERT INTO event_participant_historics (event_participant_id, status) VALUES (?, ?)`
	res, err := tx.ExecContext(ctx, q, participantID, status)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	const sel = `SELECT id, event_participant_id, status, created_at FROM event_participant_historics WHERE id = ?`
	var h model.EventParticipantHistoric
	if err := tx.QueryRowContext(ctx, sel, id).Scan(&h.ID, &h.ParticipantID, &h.Status, &h.CreatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

// ListByEvent returns one page of accreditation history for an event,
// newest first, joined with participant and user display fields, along
// with the total row count for pagination.  Page is 1-based.
func (r *HistoricRepo) ListByEvent(ctx context.Context, eventID uint64, page, perPage int) ([]model.HistoricEntry, int, error) {
	if page < 1 {
		page = 1
	}
	const countQ = `SELECT COUNT(*)
	                FROM event_participant_historics h
	                JOIN event_participants p ON p.id = h.event_participant_id
	                WHERE p.event_id = ?`
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `SELECT h.id, h.event_participant_id, h.status, h.created_at,
	                  p.sequential, u.name, u.email, t.title
	           FROM event_participant_historics h
	           JOIN event_participants p ON p.id = h.event_participant_id
	           JOIN users u ON u.id = p.user_id
	           JOIN event_tickets t ON t.id = p.event_ticket_id
	           WHERE p.event_id = ?
	           ORDER BY h.created_at DESC, h.id DESC
	           LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, eventID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	entries := make([]model.HistoricEntry, 0)
	for rows.Next() {
		var e model.HistoricEntry
		if err := rows.Scan(&e.ID, &e.ParticipantID, &e.Status, &e.CreatedAt,
			&e.Sequential, &e.UserName, &e.UserEmail, &e.TicketTitle); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// CountCheckedIn counts participants of the event whose newest historic
// row is CHECK_IN.  Backs the dashboard counter.
func (r *HistoricRepo) CountCheckedIn(ctx context.Context, eventID uint64) (int, error) {
	const q = `SELECT COUNT(*)
	           FROM event_participants p
	           WHERE p.event_id = ? AND p.deleted_at IS NULL AND (
	               SELECT h.status FROM event_participant_historics h
	               WHERE h.event_participant_id = p.id
	               ORDER BY h.created_at DESC, h.id DESC LIMIT 1
	           ) = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, eventID, model.HistoricCheckIn).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
)

// BalanceRepo provides access to the checkout ledger.  One row is
// written per requested batch of a checkout attempt; settlement flips
// the status of every row sharing a session and nothing else is ever
// rewritten.
type BalanceRepo struct {
	db *sql.DB
}

// NewBalanceRepo returns a new BalanceRepo bound to the given database.
func NewBalanceRepo(db *sql.DB) *BalanceRepo { return &BalanceRepo{db: db} }

// CreateTx inserts one ledger row and populates its generated ID.
func (r *BalanceRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.EventBalance) error {
	const q = `INSERT INTO event_balances
	           (user_id, event_id, event_ticket_id, event_ticket_price_id, quantity, amount_cents, session_id, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var session interface{}
	if b.SessionID != nil {
		session = *b.SessionID
	}
	res, err := tx.ExecContext(ctx, q, b.UserID, b.EventID, b.TicketID, b.PriceID,
		b.Quantity, b.AmountCents, session, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// BySessionTx returns all ledger rows recorded under one checkout
// session, oldest first.
func (r *BalanceRepo) BySessionTx(ctx context.Context, tx *sql.Tx, sessionID string) ([]model.EventBalance, error) {
	const q = `SELECT id, user_id, event_id, event_ticket_id, event_ticket_price_id, quantity, amount_cents, session_id, status, created_at
	           FROM event_balances WHERE session_id = ? ORDER BY id`
	rows, err := tx.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.EventBalance
	for rows.Next() {
		var b model.EventBalance
		var session sql.NullString
		if err := rows.Scan(&b.ID, &b.UserID, &b.EventID, &b.TicketID, &b.PriceID,
			&b.Quantity, &b.AmountCents, &session, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		if session.Valid {
			v := session.String
			b.SessionID = &v
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetStatusBySessionTx flips every row of a session to the given
// settlement status.
func (r *BalanceRepo) SetStatusBySessionTx(ctx context.Context, tx *sql.Tx, sessionID string, status model.BalanceStatus) error {
	const q = `UPDATE event_balances SET status = ? WHERE session_id = ?`
	_, err := tx.ExecContext(ctx, q, status, sessionID)
	return err
}

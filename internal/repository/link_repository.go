package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
)

// LinkRepo provides data access to event_ticket_links.  Links are the
// shared mutable resource contended by concurrent registrants, so the
// registration path always loads them with GetForUpdateTx before
// checking capacity; the row lock serializes the check-then-flip.
type LinkRepo struct {
	db *sql.DB
}

// NewLinkRepo returns a new LinkRepo bound to the provided database.
func NewLinkRepo(db *sql.DB) *LinkRepo { return &LinkRepo{db: db} }

// GetForUpdateTx loads a link with a row lock held for the remainder of
// the transaction.  Returns ErrNotFound when the link does not exist.
func (r *LinkRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, linkID uint64) (*model.EventTicketLink, error) {
	const q = `SELECT id, event_ticket_id, event_ticket_price_id, owner_user_id, invite, status, created_at
	           FROM event_ticket_links WHERE id = ? FOR UPDATE`
	var l model.EventTicketLink
	err := tx.QueryRowContext(ctx, q, linkID).Scan(
		&l.ID, &l.EventTicketID, &l.EventTicketPriceID, &l.OwnerUserID, &l.Invite, &l.Status, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// CountActiveTx counts non-deleted participants registered through the
// link.  The capacity check compares this count plus the row about to
// be inserted against the link's invite limit.
func (r *LinkRepo) CountActiveTx(ctx context.Context, tx *sql.Tx, linkID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM event_participants WHERE event_ticket_link_id = ? AND deleted_at IS NULL`
	var n int
	if err := tx.QueryRowContext(ctx, q, linkID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateStatusTx persists a new fill status for the link.
func (r *LinkRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, linkID uint64, status model.LinkStatus) error {
	const q = `UPDATE event_ticket_links SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, linkID)
	return err
}

// CreateTx inserts a new invitation link and populates its generated ID.
// Checkout uses this both for purchase links and for the bonus links
// minted by bonus rules.
func (r *LinkRepo) CreateTx(ctx context.Context, tx *sql.Tx, link *model.EventTicketLink) error {
	const q = `INSERT INTO event_ticket_links (event_ticket_id, event_ticket_price_id, owner_user_id, invite, status)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, link.EventTicketID, link.EventTicketPriceID, link.OwnerUserID, link.Invite, link.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = uint64(id)
	return nil
}

// RandomToken generates a random hexadecimal string of n bytes (2n hex
// characters) from crypto/rand.  It backs the opaque qrcode tokens
// assigned to participants at creation.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

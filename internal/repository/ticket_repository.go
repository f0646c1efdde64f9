package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
)

// TicketRepo encapsulates database operations for event tickets, their
// price batches and the bonus rules attached to batches.  Fill-state
// transitions (OPEN/PART_FULL/FULL) always run inside the caller's
// transaction so they commit or roll back together with the participant
// write that caused them.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo given a DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// GetByIDTx loads a ticket within a transaction.  Returns ErrNotFound
// when no row exists.
func (r *TicketRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, ticketID uint64) (*model.EventTicket, error) {
	const q = `SELECT id, event_id, title, slug, guests, status, created_at FROM event_tickets WHERE id = ?`
	var t model.EventTicket
	err := tx.QueryRowContext(ctx, q, ticketID).Scan(
		&t.ID, &t.EventID, &t.Title, &t.Slug, &t.Guests, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// UpdateStatusTx persists a new fill status for the ticket.
func (r *TicketRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, ticketID uint64, status model.TicketStatus) error {
	const q = `UPDATE event_tickets SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, ticketID)
	return err
}

// CountActiveTx counts non-deleted participants across the whole ticket.
func (r *TicketRepo) CountActiveTx(ctx context.Context, tx *sql.Tx, ticketID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM event_participants WHERE event_ticket_id = ? AND deleted_at IS NULL`
	var n int
	if err := tx.QueryRowContext(ctx, q, ticketID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// PriceByIDTx loads a single price batch.  Returns ErrNotFound when the
// batch does not exist.
func (r *TicketRepo) PriceByIDTx(ctx context.Context, tx *sql.Tx, priceID uint64) (*model.EventTicketPrice, error) {
	const q = `SELECT id, event_ticket_id, batch, guests, price_cents, pass_on_fee, start_publish_at, end_publish_at
	           FROM event_ticket_prices WHERE id = ?`
	var p model.EventTicketPrice
	var start, end sql.NullTime
	err := tx.QueryRowContext(ctx, q, priceID).Scan(
		&p.ID, &p.EventTicketID, &p.Batch, &p.Guests, &p.PriceCents, &p.PassOnFee, &start, &end)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if start.Valid {
		t := start.Time
		p.StartPublishAt = &t
	}
	if end.Valid {
		t := end.Time
		p.EndPublishAt = &t
	}
	return &p, nil
}

// CountActiveByPriceTx counts non-deleted participants registered
// against one price batch.
func (r *TicketRepo) CountActiveByPriceTx(ctx context.Context, tx *sql.Tx, priceID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM event_participants WHERE event_ticket_price_id = ? AND deleted_at IS NULL`
	var n int
	if err := tx.QueryRowContext(ctx, q, priceID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// BonusesByPriceTx returns the bonus rules triggered by purchasing the
// given batch.  An empty slice means no bonus links are minted.
func (r *TicketRepo) BonusesByPriceTx(ctx context.Context, tx *sql.Tx, priceID uint64) ([]model.EventTicketBonus, error) {
	const q = `SELECT id, event_ticket_price_id, target_ticket_id, target_price_id, quantity
	           FROM event_ticket_bonuses WHERE event_ticket_price_id = ?`
	rows, err := tx.QueryContext(ctx, q, priceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bonuses := make([]model.EventTicketBonus, 0)
	for rows.Next() {
		var b model.EventTicketBonus
		if err := rows.Scan(&b.ID, &b.EventTicketPriceID, &b.TargetTicketID, &b.TargetPriceID, &b.Quantity); err != nil {
			return nil, err
		}
		bonuses = append(bonuses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bonuses, nil
}

// ValidatePublishWindows checks the batch ordering invariant: for two
// batches of the same ticket, a later batch's publish window must not
// start before the earlier batch's window ends.  Batches without a
// window are skipped.  The slice must be ordered by batch number; the
// first violation is reported with both batch numbers.
func ValidatePublishWindows(prices []model.EventTicketPrice) error {
	for i := 1; i < len(prices); i++ {
		prev, cur := prices[i-1], prices[i]
		if prev.EndPublishAt == nil || cur.StartPublishAt == nil {
			continue
		}
		if cur.StartPublishAt.Before(*prev.EndPublishAt) {
			return fmt.Errorf("%w: batch %d publish window starts before batch %d window ends",
				ErrValidation, cur.Batch, prev.Batch)
		}
	}
	return nil
}

// CreatePrices inserts the price batches of a ticket in one statement
// after validating the publish-window ordering invariant.  A violation
// rejects the whole creation.  Passing an empty slice has no effect.
func (r *TicketRepo) CreatePrices(ctx context.Context, prices []model.EventTicketPrice) error {
	if len(prices) == 0 {
		return nil
	}
	if err := ValidatePublishWindows(prices); err != nil {
		return err
	}
	query := `INSERT INTO event_ticket_prices (event_ticket_id, batch, guests, price_cents, pass_on_fee, start_publish_at, end_publish_at) VALUES `
	args := make([]interface{}, 0, len(prices)*7)
	for i, p := range prices {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		var start, end interface{}
		if p.StartPublishAt != nil {
			start = p.StartPublishAt.UTC()
		}
		if p.EndPublishAt != nil {
			end = p.EndPublishAt.UTC()
		}
		args = append(args, p.EventTicketID, p.Batch, p.Guests, p.PriceCents, p.PassOnFee, start, end)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

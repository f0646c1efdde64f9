package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
)

// ParticipantRepo provides CRUD operations for event participants.
// Participants are created once by the registration flow, have their
// status re-derived after profile mutations, and are soft-deleted by
// the payment-reclaim sweep.  Rows are never hard-deleted.
type ParticipantRepo struct {
	db *sql.DB
}

// NewParticipantRepo returns a new ParticipantRepo bound to the given database.
func NewParticipantRepo(db *sql.DB) *ParticipantRepo { return &ParticipantRepo{db: db} }

const participantColumns = `id, event_id, event_ticket_id, event_ticket_price_id, event_ticket_link_id,
	user_id, qrcode, sequential, status, signer_id, signature, search_key, send_email_at, deleted_at, created_at`

func scanParticipant(scan func(dest ...interface{}) error) (*model.EventParticipant, error) {
	var p model.EventParticipant
	var signerID sql.NullString
	var signature sql.NullBool
	var sendEmailAt, deletedAt sql.NullTime
	err := scan(&p.ID, &p.EventID, &p.EventTicketID, &p.EventTicketPriceID, &p.EventTicketLinkID,
		&p.UserID, &p.QRCode, &p.Sequential, &p.Status, &signerID, &signature,
		&p.SearchKey, &sendEmailAt, &deletedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if signerID.Valid {
		v := signerID.String
		p.SignerID = &v
	}
	if signature.Valid {
		v := signature.Bool
		p.Signature = &v
	}
	if sendEmailAt.Valid {
		t := sendEmailAt.Time
		p.SendEmailAt = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		p.DeletedAt = &t
	}
	return &p, nil
}

// CreateTx inserts a new participant row and populates its generated ID.
// The caller supplies qrcode, sequential, status and search key; the
// insert is part of the same transaction that flipped the link so a
// failure here rolls the flip back.
func (r *ParticipantRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.EventParticipant) error {
	const q = `INSERT INTO event_participants
	           (event_id, event_ticket_id, event_ticket_price_id, event_ticket_link_id, user_id, qrcode, sequential, status, search_key)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, p.EventID, p.EventTicketID, p.EventTicketPriceID,
		p.EventTicketLinkID, p.UserID, p.QRCode, p.Sequential, p.Status, p.SearchKey)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByIDTx loads one participant regardless of soft-delete state.
// Returns ErrNotFound when no row exists.
func (r *ParticipantRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.EventParticipant, error) {
	const q = `SELECT ` + participantColumns + ` FROM event_participants WHERE id = ?`
	p, err := scanParticipant(tx.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// FindActiveByUserAndTicketTx returns the non-deleted participant for a
// (user, ticket) pair.  At most one such row can exist; ErrNotFound is
// returned when the user has not registered on the ticket.
func (r *ParticipantRepo) FindActiveByUserAndTicketTx(ctx context.Context, tx *sql.Tx, userID, ticketID uint64) (*model.EventParticipant, error) {
	const q = `SELECT ` + participantColumns + ` FROM event_participants
	           WHERE user_id = ? AND event_ticket_id = ? AND deleted_at IS NULL`
	p, err := scanParticipant(tx.QueryRowContext(ctx, q, userID, ticketID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// UpdateStatusTx persists a re-derived gating status.
func (r *ParticipantRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.ParticipantStatus) error {
	const q = `UPDATE event_participants SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}

// ParticipantGates pairs an active participant with the event gates
// needed to re-derive its status after a profile mutation.
type ParticipantGates struct {
	Participant model.EventParticipant
	Gates       model.EventGates
}

// ActiveByUserTx returns every non-deleted participant of the user
// together with the owning event's gating configuration.
func (r *ParticipantRepo) ActiveByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) ([]ParticipantGates, error) {
	const q = `SELECT p.id, p.event_id, p.event_ticket_id, p.event_ticket_price_id, p.event_ticket_link_id,
	                  p.user_id, p.qrcode, p.sequential, p.status, p.signer_id, p.signature,
	                  p.search_key, p.send_email_at, p.deleted_at, p.created_at,
	                  c.credential_type, c.participant_networks,
	                  EXISTS(SELECT 1 FROM event_terms t WHERE t.event_id = p.event_id AND t.signature = 1)
	           FROM event_participants p
	           JOIN event_configs c ON c.event_id = p.event_id
	           WHERE p.user_id = ? AND p.deleted_at IS NULL
	           ORDER BY p.id`
	rows, err := tx.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ParticipantGates
	for rows.Next() {
		var p model.EventParticipant
		var signerID sql.NullString
		var signature sql.NullBool
		var sendEmailAt, deletedAt sql.NullTime
		var g model.EventGates
		if err := rows.Scan(&p.ID, &p.EventID, &p.EventTicketID, &p.EventTicketPriceID, &p.EventTicketLinkID,
			&p.UserID, &p.QRCode, &p.Sequential, &p.Status, &signerID, &signature,
			&p.SearchKey, &sendEmailAt, &deletedAt, &p.CreatedAt,
			&g.CredentialType, &g.ParticipantNetworks, &g.HasSignatureTerm); err != nil {
			return nil, err
		}
		if signerID.Valid {
			v := signerID.String
			p.SignerID = &v
		}
		if signature.Valid {
			v := signature.Bool
			p.Signature = &v
		}
		out = append(out, ParticipantGates{Participant: p, Gates: g})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// StaleAwaitingPaymentTx returns non-deleted participants stuck in
// AWAITING_PAYMENT since before the cutoff.  The reclaim sweep
// soft-deletes them and reverts their link capacity.
func (r *ParticipantRepo) StaleAwaitingPaymentTx(ctx context.Context, tx *sql.Tx, cutoff time.Time) ([]model.EventParticipant, error) {
	const q = `SELECT ` + participantColumns + ` FROM event_participants
	           WHERE status = ? AND deleted_at IS NULL AND created_at < ? FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, model.StatusAwaitingPayment, cutoff.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.EventParticipant
	for rows.Next() {
		p, err := scanParticipant(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SoftDeleteTx marks the participant deleted.  The row keeps its
// sequential number; sequentials are never reused.
func (r *ParticipantRepo) SoftDeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE event_participants SET deleted_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
)

// UserRepo provides data access to users and their facial and social
// child collections.  Email lookups are case-insensitive: addresses are
// lowercased on write and on query.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, name, document, phone, address, password_hash, valid_at, created_at, updated_at`

func scanUser(scan func(dest ...interface{}) error) (*model.User, error) {
	var u model.User
	var validAt sql.NullTime
	err := scan(&u.ID, &u.Email, &u.Name, &u.Document, &u.Phone, &u.Address,
		&u.PasswordHash, &validAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if validAt.Valid {
		t := validAt.Time
		u.ValidAt = &t
	}
	return &u, nil
}

// GetByEmailTx resolves a user by lowercased email.  Returns
// ErrNotFound when no account exists for the address.
func (r *UserRepo) GetByEmailTx(ctx context.Context, tx *sql.Tx, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	u, err := scanUser(tx.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(email))).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByIDTx loads a user by primary key.
func (r *UserRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(tx.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// CreateTx inserts a new user and populates the generated ID.  The
// caller must have validated the profile and lowercased the email.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, u *model.User) error {
	const q = `INSERT INTO users (email, name, document, phone, address, password_hash)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, strings.ToLower(u.Email), u.Name, u.Document, u.Phone, u.Address, u.PasswordHash)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GatesTx returns the profile facts consumed by status derivation: the
// number of social networks attached and the expiration of the most
// recent facial record (nil when none exists).
func (r *UserRepo) GatesTx(ctx context.Context, tx *sql.Tx, userID uint64) (model.UserGates, error) {
	var g model.UserGates
	const socialQ = `SELECT COUNT(*) FROM user_socials WHERE user_id = ?`
	if err := tx.QueryRowContext(ctx, socialQ, userID).Scan(&g.SocialCount); err != nil {
		return g, err
	}
	const facialQ = `SELECT expires_at FROM user_facials WHERE user_id = ?
	                 ORDER BY created_at DESC, id DESC LIMIT 1`
	var expires sql.NullTime
	err := tx.QueryRowContext(ctx, facialQ, userID).Scan(&expires)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return g, err
	}
	if err == nil && expires.Valid {
		t := expires.Time
		g.LatestFacialExpires = &t
	}
	return g, nil
}

// LatestFacialTx returns the newest facial record of the user, or
// ErrNotFound when none has been uploaded.
func (r *UserRepo) LatestFacialTx(ctx context.Context, tx *sql.Tx, userID uint64) (*model.UserFacial, error) {
	const q = `SELECT id, user_id, path, expires_at, created_at FROM user_facials
	           WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`
	var f model.UserFacial
	err := tx.QueryRowContext(ctx, q, userID).Scan(&f.ID, &f.UserID, &f.Path, &f.ExpiresAt, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// AddFacialTx inserts a new facial record and populates its ID.
func (r *UserRepo) AddFacialTx(ctx context.Context, tx *sql.Tx, f *model.UserFacial) error {
	const q = `INSERT INTO user_facials (user_id, path, expires_at) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, f.UserID, f.Path, f.ExpiresAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// AddSocialTx inserts a new social network handle and populates its ID.
func (r *UserRepo) AddSocialTx(ctx context.Context, tx *sql.Tx, s *model.UserSocial) error {
	const q = `INSERT INTO user_socials (user_id, network, username) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, s.UserID, s.Network, s.Username)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

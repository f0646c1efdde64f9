package model

import "time"

// User is an attendee account as stored in the `users` table.  Email is
// unique and always stored lowercased.  ValidAt is set once identity or
// term verification completes; events carrying a signature-requiring
// term only accept verified users.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email (unique, lowercased)
	Name         string     // users.name
	Document     string     // users.document (digits only)
	Phone        string     // users.phone
	Address      string     // users.address
	PasswordHash string     // users.password_hash (empty when created via invitation)
	ValidAt      *time.Time // users.valid_at (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// Verified reports whether identity verification has completed.
func (u *User) Verified() bool { return u.ValidAt != nil }

// UserFacial is one uploaded reference photo.  The most recent record by
// creation order is the active one; an expired record gates the user
// back to AWAITING_FACIAL.
type UserFacial struct {
	ID        uint64    // user_facials.id
	UserID    uint64    // user_facials.user_id
	Path      string    // user_facials.path (object storage location)
	ExpiresAt time.Time // user_facials.expires_at
	CreatedAt time.Time // user_facials.created_at
}

// UserSocial is one social network handle attached to a user profile.
type UserSocial struct {
	ID       uint64 // user_socials.id
	UserID   uint64 // user_socials.user_id
	Network  string // user_socials.network
	Username string // user_socials.username
}

// UserGates is the subset of a user's profile consumed by status
// derivation: how many social networks are attached and when the most
// recent facial record expires (nil when no facial record exists).
type UserGates struct {
	SocialCount         int
	LatestFacialExpires *time.Time
}

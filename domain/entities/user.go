package entities

import (
	"time"
)

// Role is the permission level of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// DefaultMessageCredits is the balance a freshly created user starts with
const DefaultMessageCredits int64 = 30

// User represents a Discord user and their message credit balance
type User struct {
	UserID         int64      `db:"user_id" json:"userId,string"`
	Role           Role       `db:"role" json:"role"`
	MessageCredits int64      `db:"message_credits" json:"messageCredits"`
	LastVotedAt    *time.Time `db:"last_voted_at" json:"lastVotedAt"`
	InsertedAt     time.Time  `db:"inserted_at" json:"insertedAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// CanAfford reports whether the balance covers the given cost
func (u *User) CanAfford(cost int64) bool {
	return u.MessageCredits >= cost
}

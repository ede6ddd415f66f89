package user

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system (matches user_role enum)
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User represents a user account (matches users table)
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	Role         Role      `db:"role"`

	// Credits is the platform's internal unit of value: earned by
	// uploading, spent by purchasing. Never negative.
	Credits int `db:"credits"`

	UniversityID  uuid.NullUUID `db:"university_id"`
	EmailVerified bool          `db:"email_verified"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate checks store-level invariants after a row is loaded
func (u *User) Validate() error {
	if u.Credits < 0 {
		return fmt.Errorf("user %s: negative credit balance %d", u.ID, u.Credits)
	}
	return nil
}

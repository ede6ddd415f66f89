package purchase

import (
	"time"

	"github.com/google/uuid"
)

// Entitlement is the durable record that a user purchased a material.
// The unique (user_id, material_id) constraint makes it idempotent.
type Entitlement struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	MaterialID   uuid.UUID `db:"material_id" json:"material_id"`
	CreditsSpent int       `db:"credits_spent" json:"credits_spent"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Result is the outcome of a committed purchase. Balance is the
// post-commit balance read inside the transaction, so the caller
// renders only authoritative state.
type Result struct {
	Entitlement *Entitlement
	Balance     int
}

// PurchasedItem is a purchase joined with material display fields
type PurchasedItem struct {
	Entitlement
	Title string `db:"title" json:"title"`
	Type  string `db:"type" json:"type"`
}

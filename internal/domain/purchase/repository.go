package purchase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/studyhub/studyhub-api/internal/domain/material"
	"github.com/studyhub/studyhub-api/internal/domain/user"
)

// Repository defines purchase data access interface
type Repository interface {
	// Purchase runs the whole purchase as one transaction: debit and
	// entitlement insert commit together or not at all.
	Purchase(ctx context.Context, userID, materialID uuid.UUID) (*Result, error)

	// HasEntitlement reports whether a purchase record exists.
	HasEntitlement(ctx context.Context, userID, materialID uuid.UUID) (bool, error)

	// ListByUser returns the user's purchases, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*PurchasedItem, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new purchase repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Purchase executes the purchase transaction.
//
// Read committed plus a FOR UPDATE lock on the buyer's row serializes
// concurrent purchases by the same user: the second transaction blocks
// on the lock and re-reads state the first one committed. The unique
// (user_id, material_id) index backstops the race between two inserts
// for the same pair.
func (r *repository) Purchase(ctx context.Context, userID, materialID uuid.UUID) (*Result, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("purchase repository begin tx: %w", err)
	}
	defer tx.Rollback()

	var mat struct {
		UserID uuid.UUID `db:"user_id"`
		Price  int       `db:"price"`
	}
	err = tx.GetContext(ctx, &mat,
		`SELECT user_id, price FROM materials WHERE id = $1`, materialID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, material.ErrMaterialNotFound
		}
		return nil, fmt.Errorf("purchase repository load material: %w", err)
	}

	if mat.UserID == userID {
		return nil, ErrAlreadyOwned
	}

	var balance int
	err = tx.GetContext(ctx, &balance,
		`SELECT credits FROM users WHERE id = $1 FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("purchase repository lock user: %w", err)
	}

	var exists bool
	err = tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM material_purchases WHERE user_id = $1 AND material_id = $2)`,
		userID, materialID)
	if err != nil {
		return nil, fmt.Errorf("purchase repository check entitlement: %w", err)
	}
	if exists {
		return nil, ErrAlreadyPurchased
	}

	if balance < mat.Price {
		return nil, ErrInsufficientCredits
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET credits = credits - $2, updated_at = now() WHERE id = $1`,
		userID, mat.Price)
	if err != nil {
		return nil, fmt.Errorf("purchase repository debit: %w", err)
	}

	ent := &Entitlement{
		ID:           uuid.New(),
		UserID:       userID,
		MaterialID:   materialID,
		CreditsSpent: mat.Price,
		CreatedAt:    time.Now(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO material_purchases (id, user_id, material_id, credits_spent, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		ent.ID, ent.UserID, ent.MaterialID, ent.CreditsSpent, ent.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrAlreadyPurchased
		}
		return nil, fmt.Errorf("purchase repository insert entitlement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("purchase repository commit: %w", err)
	}

	return &Result{Entitlement: ent, Balance: balance - mat.Price}, nil
}

// HasEntitlement checks for an existing purchase record
func (r *repository) HasEntitlement(ctx context.Context, userID, materialID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM material_purchases WHERE user_id = $1 AND material_id = $2)`,
		userID, materialID)
	if err != nil {
		return false, fmt.Errorf("purchase repository has entitlement: %w", err)
	}
	return exists, nil
}

// ListByUser returns the user's purchases with material titles
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*PurchasedItem, error) {
	query := `
		SELECT p.id, p.user_id, p.material_id, p.credits_spent, p.created_at,
			m.title, m.type
		FROM material_purchases p
		JOIN materials m ON m.id = p.material_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
	`

	items := []*PurchasedItem{}
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("purchase repository list by user: %w", err)
	}
	return items, nil
}

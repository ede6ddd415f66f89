package stats

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Overview is the aggregate dashboard snapshot
type Overview struct {
	Users        int `db:"users" json:"users"`
	Materials    int `db:"materials" json:"materials"`
	Downloads    int `db:"downloads" json:"downloads"`
	Purchases    int `db:"purchases" json:"purchases"`
	CreditsSpent int `db:"credits_spent" json:"credits_spent"`

	TopMaterials []TopMaterial      `json:"top_materials"`
	Universities []UniversityCounts `json:"universities"`
}

// TopMaterial is a most-downloaded catalog entry
type TopMaterial struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Downloads int       `db:"downloads" json:"downloads"`
	Purchases int       `db:"purchases" json:"purchases"`
}

// UniversityCounts is the per-university breakdown
type UniversityCounts struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Students  int       `db:"students" json:"students"`
	Materials int       `db:"materials" json:"materials"`
}

// Repository runs the dashboard aggregate queries
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates stats repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Overview collects the full dashboard snapshot
func (r *Repository) Overview(ctx context.Context) (*Overview, error) {
	var o Overview

	query := `
		SELECT
			(SELECT count(*) FROM users) AS users,
			(SELECT count(*) FROM materials) AS materials,
			(SELECT coalesce(sum(downloads), 0) FROM materials) AS downloads,
			(SELECT count(*) FROM material_purchases) AS purchases,
			(SELECT coalesce(sum(credits_spent), 0) FROM material_purchases) AS credits_spent
	`
	if err := r.db.GetContext(ctx, &o, query); err != nil {
		return nil, fmt.Errorf("stats repository overview: %w", err)
	}

	top := []TopMaterial{}
	topQuery := `
		SELECT m.id, m.title, m.downloads,
			(SELECT count(*) FROM material_purchases p WHERE p.material_id = m.id) AS purchases
		FROM materials m
		ORDER BY m.downloads DESC, m.created_at DESC
		LIMIT 10
	`
	if err := r.db.SelectContext(ctx, &top, topQuery); err != nil {
		return nil, fmt.Errorf("stats repository top materials: %w", err)
	}
	o.TopMaterials = top

	unis := []UniversityCounts{}
	uniQuery := `
		SELECT u.id, u.name,
			(SELECT count(*) FROM users s WHERE s.university_id = u.id) AS students,
			(SELECT count(*) FROM materials m WHERE m.university_id = u.id) AS materials
		FROM universities u
		ORDER BY u.name
	`
	if err := r.db.SelectContext(ctx, &unis, uniQuery); err != nil {
		return nil, fmt.Errorf("stats repository universities: %w", err)
	}
	o.Universities = unis

	return &o, nil
}

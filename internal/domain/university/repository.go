package university

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("university not found")

// Repository provides university data access
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates university repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// List returns all universities with aggregate counts
func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	query := `
		SELECT u.id, u.name, u.email_domain, u.created_at,
		       (SELECT COUNT(*) FROM courses c WHERE c.university_id = u.id) AS course_count,
		       (SELECT COUNT(*) FROM materials m WHERE m.university_id = u.id) AS material_count,
		       (SELECT COUNT(*) FROM users s WHERE s.university_id = u.id) AS student_count
		FROM universities u
		ORDER BY u.name
	`
	summaries := []Summary{}
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("university repository list: %w", err)
	}
	return summaries, nil
}

// GetByID returns a university with aggregate counts
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Summary, error) {
	query := `
		SELECT u.id, u.name, u.email_domain, u.created_at,
		       (SELECT COUNT(*) FROM courses c WHERE c.university_id = u.id) AS course_count,
		       (SELECT COUNT(*) FROM materials m WHERE m.university_id = u.id) AS material_count,
		       (SELECT COUNT(*) FROM users s WHERE s.university_id = u.id) AS student_count
		FROM universities u
		WHERE u.id = $1
	`
	var s Summary
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("university repository get: %w", err)
	}
	return &s, nil
}

// FindByEmailDomain matches a university by the domain part of an email.
// Returns nil without error when no university claims the domain.
func (r *Repository) FindByEmailDomain(ctx context.Context, email string) (*University, error) {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return nil, nil
	}
	domain := strings.ToLower(email[at+1:])

	var u University
	err := r.db.GetContext(ctx, &u,
		`SELECT id, name, email_domain, created_at FROM universities WHERE email_domain = $1`, domain)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("university repository find by domain: %w", err)
	}
	return &u, nil
}

package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository provides course and enrollment data access
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates course repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a course. Duplicate (code, university) maps to ErrDuplicateCode.
func (r *Repository) Create(ctx context.Context, c *Course) error {
	query := `
		INSERT INTO courses (id, code, name, department, description, university_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Code, c.Name, c.Department, c.Description, c.UniversityID, c.CreatedBy, c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateCode
		}
		return fmt.Errorf("course repository create: %w", err)
	}
	return nil
}

// GetByID returns a course by id
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Course, error) {
	var c Course
	err := r.db.GetContext(ctx, &c, `
		SELECT id, code, name, department, description, university_id, created_by, created_at
		FROM courses WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("course repository get: %w", err)
	}
	return &c, nil
}

// GetByCode returns a course by code within a university, nil when absent
func (r *Repository) GetByCode(ctx context.Context, universityID uuid.UUID, code string) (*Course, error) {
	var c Course
	err := r.db.GetContext(ctx, &c, `
		SELECT id, code, name, department, description, university_id, created_by, created_at
		FROM courses WHERE university_id = $1 AND code = $2
	`, universityID, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("course repository get by code: %w", err)
	}
	return &c, nil
}

// ListByUniversity returns courses of a university
func (r *Repository) ListByUniversity(ctx context.Context, universityID uuid.UUID) ([]*Course, error) {
	courses := []*Course{}
	err := r.db.SelectContext(ctx, &courses, `
		SELECT id, code, name, department, description, university_id, created_by, created_at
		FROM courses WHERE university_id = $1
		ORDER BY code
	`, universityID)
	if err != nil {
		return nil, fmt.Errorf("course repository list by university: %w", err)
	}
	return courses, nil
}

// ListEnrolled returns the courses a user is enrolled in
func (r *Repository) ListEnrolled(ctx context.Context, userID uuid.UUID) ([]*Course, error) {
	courses := []*Course{}
	err := r.db.SelectContext(ctx, &courses, `
		SELECT c.id, c.code, c.name, c.department, c.description, c.university_id, c.created_by, c.created_at
		FROM courses c
		JOIN enrollments e ON e.course_id = c.id
		WHERE e.user_id = $1
		ORDER BY c.code
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("course repository list enrolled: %w", err)
	}
	return courses, nil
}

// Enroll adds a user to a course. Repeated enrollment is a no-op.
func (r *Repository) Enroll(ctx context.Context, userID, courseID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO enrollments (user_id, course_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, course_id) DO NOTHING
	`, userID, courseID)
	if err != nil {
		return fmt.Errorf("course repository enroll: %w", err)
	}
	return nil
}

// Unenroll removes a user from a course
func (r *Repository) Unenroll(ctx context.Context, userID, courseID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		return fmt.Errorf("course repository unenroll: %w", err)
	}
	return nil
}

// IsEnrolled reports whether a user is enrolled in a course
func (r *Repository) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)
	`, userID, courseID)
	if err != nil {
		return false, fmt.Errorf("course repository is enrolled: %w", err)
	}
	return exists, nil
}

// MaterialCount returns the number of materials attached to a course
func (r *Repository) MaterialCount(ctx context.Context, courseID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM materials WHERE course_id = $1`, courseID)
	if err != nil {
		return 0, fmt.Errorf("course repository material count: %w", err)
	}
	return count, nil
}

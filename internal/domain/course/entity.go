package course

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Course represents a university course (matches courses table)
type Course struct {
	ID           uuid.UUID      `db:"id"`
	Code         string         `db:"code"`
	Name         string         `db:"name"`
	Department   string         `db:"department"`
	Description  sql.NullString `db:"description"`
	UniversityID uuid.UUID      `db:"university_id"`
	CreatedBy    uuid.UUID      `db:"created_by"`
	CreatedAt    time.Time      `db:"created_at"`
}

// Enrollment links a user to a course (matches enrollments table)
type Enrollment struct {
	UserID    uuid.UUID `db:"user_id"`
	CourseID  uuid.UUID `db:"course_id"`
	CreatedAt time.Time `db:"created_at"`
}

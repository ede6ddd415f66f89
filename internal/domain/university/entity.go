package university

import (
	"time"

	"github.com/google/uuid"
)

// University represents a university (matches universities table)
type University struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	EmailDomain string    `db:"email_domain" json:"email_domain"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Summary is a university with aggregate counts for listing pages
type Summary struct {
	University
	CourseCount   int `db:"course_count" json:"course_count"`
	MaterialCount int `db:"material_count" json:"material_count"`
	StudentCount  int `db:"student_count" json:"student_count"`
}

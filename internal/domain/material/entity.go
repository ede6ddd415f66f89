package material

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type classifies a study material
type Type string

const (
	TypeNotes      Type = "notes"
	TypeExam       Type = "exam"
	TypeAssignment Type = "assignment"
	TypeBook       Type = "book"
	TypeOther      Type = "other"
)

// Material represents an uploaded study material. Exactly one of FileKey
// and Content carries the material body; both may be absent for a
// metadata-only record. FileKey is the object store key; the public URL
// is resolved at download time, after the access check.
type Material struct {
	ID                   uuid.UUID       `db:"id"`
	UserID               uuid.UUID       `db:"user_id"`
	Title                string          `db:"title"`
	Description          sql.NullString  `db:"description"`
	Type                 Type            `db:"type"`
	Price                int             `db:"price"`
	Downloads            int             `db:"downloads"`
	Rating               sql.NullFloat64 `db:"rating"`
	FileKey              sql.NullString  `db:"file_key"`
	FileType             sql.NullString  `db:"file_type"`
	OriginalName         sql.NullString  `db:"original_name"`
	SizeBytes            sql.NullInt64   `db:"size_bytes"`
	ThumbnailURL         sql.NullString  `db:"thumbnail_url"`
	Content              sql.NullString  `db:"content"`
	CourseID             uuid.NullUUID   `db:"course_id"`
	UniversityID         uuid.NullUUID   `db:"university_id"`
	IsUniversitySpecific bool            `db:"is_university_specific"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

// Validate checks the material's structural invariants
func (m *Material) Validate() error {
	if m.Price < 0 {
		return fmt.Errorf("material %s: negative price %d", m.ID, m.Price)
	}
	if m.FileKey.Valid && m.Content.Valid {
		return fmt.Errorf("material %s: both file and inline content set", m.ID)
	}
	return nil
}

// IsFree reports whether the material costs no credits
func (m *Material) IsFree() bool {
	return m.Price == 0
}

// ListItem is a catalog row with joined display names
type ListItem struct {
	Material
	UploaderName   string         `db:"uploader_name"`
	UniversityName sql.NullString `db:"university_name"`
	CourseCode     sql.NullString `db:"course_code"`
}

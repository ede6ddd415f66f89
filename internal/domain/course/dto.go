package course

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest for POST /courses
type CreateRequest struct {
	Code        string `json:"code" validate:"required,course_code"`
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Department  string `json:"department" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// Response represents a course in API responses
type Response struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Department    string    `json:"department"`
	Description   string    `json:"description,omitempty"`
	UniversityID  uuid.UUID `json:"university_id"`
	CreatedAt     time.Time `json:"created_at"`
	Enrolled      bool      `json:"enrolled"`
	MaterialCount int       `json:"material_count"`
}

func toResponse(c *Course, enrolled bool, materialCount int) Response {
	resp := Response{
		ID:            c.ID,
		Code:          c.Code,
		Name:          c.Name,
		Department:    c.Department,
		UniversityID:  c.UniversityID,
		CreatedAt:     c.CreatedAt,
		Enrolled:      enrolled,
		MaterialCount: materialCount,
	}
	if c.Description.Valid {
		resp.Description = c.Description.String
	}
	return resp
}

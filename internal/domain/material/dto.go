package material

import (
	"time"

	"github.com/google/uuid"
)

// UploadRequest carries the multipart form fields of an upload. The file
// itself (or inline content) travels alongside.
type UploadRequest struct {
	Title                string `json:"title" validate:"required,min=3,max=200"`
	Description          string `json:"description" validate:"max=2000"`
	Type                 string `json:"type" validate:"required,material_type"`
	Price                int    `json:"price" validate:"min=0,max=1000"`
	Content              string `json:"content" validate:"max=100000"`
	CourseID             string `json:"course_id" validate:"omitempty,uuid"`
	IsUniversitySpecific bool   `json:"is_university_specific"`
}

// Response is the API shape of a material. The file location is never
// part of it; the download endpoint hands out the URL after the access
// check.
type Response struct {
	ID                   uuid.UUID  `json:"id"`
	UserID               uuid.UUID  `json:"user_id"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	Type                 Type       `json:"type"`
	Price                int        `json:"price"`
	Downloads            int        `json:"downloads"`
	Rating               *float64   `json:"rating,omitempty"`
	HasFile              bool       `json:"has_file"`
	FileType             string     `json:"file_type,omitempty"`
	OriginalName         string     `json:"original_name,omitempty"`
	SizeBytes            int64      `json:"size_bytes,omitempty"`
	ThumbnailURL         string     `json:"thumbnail_url,omitempty"`
	HasInlineContent     bool       `json:"has_inline_content"`
	CourseID             *uuid.UUID `json:"course_id,omitempty"`
	UniversityID         *uuid.UUID `json:"university_id,omitempty"`
	IsUniversitySpecific bool       `json:"is_university_specific"`
	UploaderName         string     `json:"uploader_name,omitempty"`
	UniversityName       string     `json:"university_name,omitempty"`
	CourseCode           string     `json:"course_code,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// UploadResponse wraps the created material with the reward outcome
type UploadResponse struct {
	Material      Response `json:"material"`
	RewardGranted bool     `json:"reward_granted"`
	Credits       int      `json:"credits"`
}

// DownloadResponse carries the content location after an access check
type DownloadResponse struct {
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
}

// ListFilter narrows a catalog query
type ListFilter struct {
	Type         Type
	CourseID     uuid.UUID
	UniversityID uuid.UUID
	Query        string
	FreeOnly     bool
	Limit        int
	Offset       int
}

func toResponse(m *Material) Response {
	resp := Response{
		ID:                   m.ID,
		UserID:               m.UserID,
		Title:                m.Title,
		Type:                 m.Type,
		Price:                m.Price,
		Downloads:            m.Downloads,
		HasFile:              m.FileKey.Valid,
		HasInlineContent:     m.Content.Valid,
		IsUniversitySpecific: m.IsUniversitySpecific,
		CreatedAt:            m.CreatedAt,
	}
	if m.Description.Valid {
		resp.Description = m.Description.String
	}
	if m.Rating.Valid {
		resp.Rating = &m.Rating.Float64
	}
	if m.FileType.Valid {
		resp.FileType = m.FileType.String
	}
	if m.OriginalName.Valid {
		resp.OriginalName = m.OriginalName.String
	}
	if m.SizeBytes.Valid {
		resp.SizeBytes = m.SizeBytes.Int64
	}
	if m.ThumbnailURL.Valid {
		resp.ThumbnailURL = m.ThumbnailURL.String
	}
	if m.CourseID.Valid {
		resp.CourseID = &m.CourseID.UUID
	}
	if m.UniversityID.Valid {
		resp.UniversityID = &m.UniversityID.UUID
	}
	return resp
}

func toListResponse(item *ListItem) Response {
	resp := toResponse(&item.Material)
	resp.UploaderName = item.UploaderName
	if item.UniversityName.Valid {
		resp.UniversityName = item.UniversityName.String
	}
	if item.CourseCode.Valid {
		resp.CourseCode = item.CourseCode.String
	}
	return resp
}

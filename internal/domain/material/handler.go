package material

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/studyhub/studyhub-api/internal/domain/course"
	"github.com/studyhub/studyhub-api/internal/domain/user"
	"github.com/studyhub/studyhub-api/internal/middleware"
	"github.com/studyhub/studyhub-api/internal/pkg/response"
	"github.com/studyhub/studyhub-api/internal/pkg/storage"
	"github.com/studyhub/studyhub-api/internal/pkg/validator"
)

type Handler struct {
	service       *Service
	maxUploadSize int64
}

func NewHandler(service *Service, maxUploadSize int64) *Handler {
	return &Handler{service: service, maxUploadSize: maxUploadSize}
}

// Upload handles POST /materials (multipart form)
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1024*1024)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		response.BadRequest(w, "Invalid multipart form or file too large")
		return
	}

	req := UploadRequest{
		Title:                r.FormValue("title"),
		Description:          r.FormValue("description"),
		Type:                 r.FormValue("type"),
		Content:              r.FormValue("content"),
		CourseID:             r.FormValue("course_id"),
		IsUniversitySpecific: r.FormValue("is_university_specific") == "true",
	}
	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Invalid price")
			return
		}
		req.Price = price
	}

	if fields := validator.Validate(&req); fields != nil {
		response.ValidationError(w, fields)
		return
	}

	var file multipart.File
	var filename string
	if f, header, err := r.FormFile("file"); err == nil {
		defer f.Close()
		file = f
		filename = header.Filename
	}

	var reader io.Reader
	if file != nil {
		reader = file
	}

	resp, err := h.service.Upload(r.Context(), userID, &req, reader, filename)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoContent):
			response.BadRequest(w, "Provide a file or inline content")
		case errors.Is(err, storage.ErrFileTooLarge):
			response.BadRequest(w, "File exceeds the maximum allowed size")
		case errors.Is(err, storage.ErrEmptyFile):
			response.BadRequest(w, "File is empty")
		case errors.Is(err, storage.ErrInvalidMime):
			response.BadRequest(w, "File type is not allowed")
		case errors.Is(err, course.ErrCourseNotFound):
			response.NotFound(w, "Course not found")
		case errors.Is(err, user.ErrUserNotFound):
			response.Unauthorized(w, "User not found")
		case errors.Is(err, ErrStorage):
			log.Error().Err(err).Msg("material upload storage failure")
			response.BadGateway(w, "Failed to store file")
		default:
			log.Error().Err(err).Msg("material upload failed")
			response.InternalError(w, "Failed to upload material")
		}
		return
	}

	response.Created(w, resp)
}

// List handles GET /materials
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := ListFilter{
		Type:     Type(q.Get("type")),
		Query:    strings.TrimSpace(q.Get("q")),
		FreeOnly: q.Get("free") == "true",
	}
	if raw := q.Get("course_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid course_id")
			return
		}
		filter.CourseID = id
	}
	if raw := q.Get("university_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid university_id")
			return
		}
		filter.UniversityID = id
	}
	if raw := q.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			filter.Offset = offset
		}
	}

	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list materials")
		response.InternalError(w, "Failed to list materials")
		return
	}

	out := make([]Response, 0, len(items))
	for _, item := range items {
		out = append(out, toListResponse(item))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	page := filter.Offset/limit + 1
	response.WithMeta(w, out, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   (total + limit - 1) / limit,
		HasNext: filter.Offset+limit < total,
		HasPrev: filter.Offset > 0,
	})
}

// Get handles GET /materials/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid material ID")
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMaterialNotFound) {
			response.NotFound(w, "Material not found")
			return
		}
		log.Error().Err(err).Msg("failed to get material")
		response.InternalError(w, "Failed to get material")
		return
	}

	response.OK(w, toListResponse(item))
}

// ListMine handles GET /materials/my
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	materials, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		log.Error().Err(err).Msg("failed to list own materials")
		response.InternalError(w, "Failed to list materials")
		return
	}

	out := make([]Response, 0, len(materials))
	for _, m := range materials {
		out = append(out, toResponse(m))
	}
	response.OK(w, out)
}

// Download handles GET /materials/{id}/download
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid material ID")
		return
	}

	resp, err := h.service.Download(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrMaterialNotFound):
			response.NotFound(w, "Material not found")
		case errors.Is(err, ErrForbidden):
			response.Forbidden(w, "Purchase required to download this material")
		case errors.Is(err, ErrNoContent):
			response.NotFound(w, "Material has no content")
		case errors.Is(err, ErrStorage):
			log.Error().Err(err).Msg("material download storage failure")
			response.BadGateway(w, "File store unavailable")
		default:
			log.Error().Err(err).Msg("failed to download material")
			response.InternalError(w, "Failed to download material")
		}
		return
	}

	response.OK(w, resp)
}

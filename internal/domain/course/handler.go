package course

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/studyhub/studyhub-api/internal/domain/user"
	"github.com/studyhub/studyhub-api/internal/middleware"
	"github.com/studyhub/studyhub-api/internal/pkg/response"
	"github.com/studyhub/studyhub-api/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /courses
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fields := validator.Validate(&req); fields != nil {
		response.ValidationError(w, fields)
		return
	}

	c, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoUniversity):
			response.Forbidden(w, "You must belong to a university to create courses")
		case errors.Is(err, ErrDuplicateCode):
			response.Conflict(w, "A course with this code already exists at your university")
		case errors.Is(err, user.ErrUserNotFound):
			response.Unauthorized(w, "User not found")
		default:
			log.Error().Err(err).Msg("failed to create course")
			response.InternalError(w, "Failed to create course")
		}
		return
	}

	response.Created(w, toResponse(c, true, 0))
}

// Get handles GET /courses/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid course ID")
		return
	}

	resp, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), courseID)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			response.NotFound(w, "Course not found")
			return
		}
		log.Error().Err(err).Msg("failed to get course")
		response.InternalError(w, "Failed to get course")
		return
	}

	response.OK(w, resp)
}

// ListMine handles GET /courses/my
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		log.Error().Err(err).Msg("failed to list enrolled courses")
		response.InternalError(w, "Failed to list courses")
		return
	}

	out := make([]Response, 0, len(courses))
	for _, c := range courses {
		out = append(out, toResponse(c, true, 0))
	}
	response.OK(w, out)
}

// ListByUniversity handles GET /universities/{id}/courses
func (h *Handler) ListByUniversity(w http.ResponseWriter, r *http.Request) {
	universityID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid university ID")
		return
	}

	courses, err := h.service.ListByUniversity(r.Context(), universityID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list university courses")
		response.InternalError(w, "Failed to list courses")
		return
	}

	out := make([]Response, 0, len(courses))
	for _, c := range courses {
		out = append(out, toResponse(c, false, 0))
	}
	response.OK(w, out)
}

// Enroll handles POST /courses/{id}/enroll
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid course ID")
		return
	}

	if err := h.service.Enroll(r.Context(), middleware.GetUserID(r.Context()), courseID); err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			response.NotFound(w, "Course not found")
			return
		}
		log.Error().Err(err).Msg("failed to enroll")
		response.InternalError(w, "Failed to enroll")
		return
	}

	response.OK(w, map[string]bool{"enrolled": true})
}

// Unenroll handles DELETE /courses/{id}/enroll
func (h *Handler) Unenroll(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid course ID")
		return
	}

	if err := h.service.Unenroll(r.Context(), middleware.GetUserID(r.Context()), courseID); err != nil {
		log.Error().Err(err).Msg("failed to unenroll")
		response.InternalError(w, "Failed to unenroll")
		return
	}

	response.NoContent(w)
}

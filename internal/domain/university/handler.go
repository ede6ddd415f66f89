package university

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/studyhub/studyhub-api/internal/pkg/response"
)

// Handler handles university HTTP requests
type Handler struct {
	repo *Repository
}

// NewHandler creates university handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /universities
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	universities, err := h.repo.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list universities")
		response.InternalError(w)
		return
	}
	response.OK(w, universities)
}

// Get handles GET /universities/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid university id")
		return
	}

	uni, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "University not found")
			return
		}
		log.Error().Err(err).Str("university_id", id.String()).Msg("failed to get university")
		response.InternalError(w)
		return
	}
	response.OK(w, uni)
}

// Routes returns university router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}

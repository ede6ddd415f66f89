package course

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the course router
func (h *Handler) Routes(authMiddleware, optionalAuthMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(optionalAuthMiddleware)
		r.Get("/{id}", h.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Get("/my", h.ListMine)
		r.Post("/{id}/enroll", h.Enroll)
		r.Delete("/{id}/enroll", h.Unenroll)
	})

	return r
}

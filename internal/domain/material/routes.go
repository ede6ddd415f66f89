package material

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the material router. The purchase and access handlers
// are injected because the purchase package sits on top of this one.
func (h *Handler) Routes(
	authMiddleware, optionalAuthMiddleware func(http.Handler) http.Handler,
	purchase, access http.HandlerFunc,
) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(optionalAuthMiddleware)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/access", access)
		// Free materials download without an account; the access
		// evaluator handles the anonymous case.
		r.Get("/{id}/download", h.Download)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Upload)
		r.Get("/my", h.ListMine)
		r.Post("/{id}/purchase", purchase)
	})

	return r
}

package purchase

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the purchase history router. The purchase and access
// endpoints themselves live under the material routes.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.ListMine)
	return r
}

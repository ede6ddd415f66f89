package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/studyhub/studyhub-api/internal/pkg/cache"
	"github.com/studyhub/studyhub-api/internal/pkg/response"
)

const cacheKey = "stats:overview"

// Handler serves the cached dashboard snapshot. The aggregates scan
// whole tables, so every response within the TTL window comes from
// the cache.
type Handler struct {
	repo     *Repository
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewHandler(repo *Repository, c cache.Cache, cacheTTL time.Duration) *Handler {
	return &Handler{repo: repo, cache: c, cacheTTL: cacheTTL}
}

// Overview handles GET /stats (admin only)
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.overview(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to collect stats")
		response.InternalError(w, "Failed to collect stats")
		return
	}
	response.OK(w, o)
}

func (h *Handler) overview(ctx context.Context) (*Overview, error) {
	if h.cache != nil {
		if raw, ok, err := h.cache.Get(ctx, cacheKey); err == nil && ok {
			var o Overview
			if err := json.Unmarshal(raw, &o); err == nil {
				return &o, nil
			}
		}
	}

	o, err := h.repo.Overview(ctx)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if raw, err := json.Marshal(o); err == nil {
			if err := h.cache.Set(ctx, cacheKey, raw, h.cacheTTL); err != nil {
				log.Debug().Err(err).Msg("stats cache set failed")
			}
		}
	}
	return o, nil
}

// Routes returns the stats router. The dashboard is for staff eyes;
// both middlewares are required.
func (h *Handler) Routes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(adminMiddleware)

	r.Get("/", h.Overview)

	return r
}

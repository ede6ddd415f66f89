package purchase

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/studyhub/studyhub-api/internal/domain/material"
	"github.com/studyhub/studyhub-api/internal/domain/user"
	"github.com/studyhub/studyhub-api/internal/middleware"
	"github.com/studyhub/studyhub-api/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PurchaseResponse is the authoritative post-purchase state
type PurchaseResponse struct {
	MaterialID   uuid.UUID `json:"material_id"`
	CreditsSpent int       `json:"credits_spent"`
	Credits      int       `json:"credits"`
}

// Purchase handles POST /materials/{id}/purchase
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	materialID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid material ID")
		return
	}

	result, err := h.service.Purchase(r.Context(), middleware.GetUserID(r.Context()), materialID)
	if err != nil {
		switch {
		case errors.Is(err, material.ErrMaterialNotFound):
			response.NotFound(w, "Material not found")
		case errors.Is(err, user.ErrUserNotFound):
			response.NotFound(w, "User not found")
		case errors.Is(err, ErrAlreadyOwned):
			response.Conflict(w, "You cannot purchase your own material")
		case errors.Is(err, ErrAlreadyPurchased):
			response.Conflict(w, "Material already purchased")
		case errors.Is(err, ErrInsufficientCredits):
			response.PaymentRequired(w, "Not enough credits")
		default:
			log.Error().Err(err).Msg("purchase failed")
			response.InternalError(w, "Failed to purchase material")
		}
		return
	}

	response.OK(w, PurchaseResponse{
		MaterialID:   materialID,
		CreditsSpent: result.Entitlement.CreditsSpent,
		Credits:      result.Balance,
	})
}

// Access handles GET /materials/{id}/access
func (h *Handler) Access(w http.ResponseWriter, r *http.Request) {
	materialID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid material ID")
		return
	}

	ok, err := h.service.HasAccess(r.Context(), middleware.GetUserID(r.Context()), materialID)
	if err != nil {
		if errors.Is(err, material.ErrMaterialNotFound) {
			response.NotFound(w, "Material not found")
			return
		}
		log.Error().Err(err).Msg("access check failed")
		response.InternalError(w, "Failed to check access")
		return
	}

	response.OK(w, map[string]bool{"has_access": ok})
}

// ListMine handles GET /purchases
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		log.Error().Err(err).Msg("failed to list purchases")
		response.InternalError(w, "Failed to list purchases")
		return
	}

	response.OK(w, items)
}

// Balance handles GET /credits
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.Balance(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		log.Error().Err(err).Msg("failed to get balance")
		response.InternalError(w, "Failed to get balance")
		return
	}

	response.OK(w, map[string]int{"credits": balance})
}

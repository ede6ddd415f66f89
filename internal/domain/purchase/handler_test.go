package purchase

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/studyhub/studyhub-api/internal/domain/material"
	"github.com/studyhub/studyhub-api/internal/domain/user"
)

func newHandlerRouter(repo Repository, materials MaterialStore) *chi.Mux {
	h := NewHandler(NewService(repo, materials, &fakeUserRepo{}, nil, 0))
	r := chi.NewRouter()
	r.Post("/materials/{id}/purchase", h.Purchase)
	r.Get("/materials/{id}/access", h.Access)
	return r
}

func TestPurchaseHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"insufficient credits", ErrInsufficientCredits, http.StatusPaymentRequired},
		{"already purchased", ErrAlreadyPurchased, http.StatusConflict},
		{"own material", ErrAlreadyOwned, http.StatusConflict},
		{"material missing", material.ErrMaterialNotFound, http.StatusNotFound},
		{"user missing", user.ErrUserNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newHandlerRouter(&fakeRepo{purchaseErr: tt.err}, &fakeMaterials{})

			req := httptest.NewRequest(http.MethodPost, "/materials/"+uuid.NewString()+"/purchase", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestPurchaseHandlerReturnsBalance(t *testing.T) {
	buyer := uuid.New()
	m := newTestMaterial(uuid.New(), 4)
	repo := &fakeRepo{
		result: &Result{
			Entitlement: &Entitlement{ID: uuid.New(), UserID: buyer, MaterialID: m.ID, CreditsSpent: 4},
			Balance:     6,
		},
	}
	router := newHandlerRouter(repo, &fakeMaterials{})

	req := httptest.NewRequest(http.MethodPost, "/materials/"+m.ID.String()+"/purchase", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success bool             `json:"success"`
		Data    PurchaseResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Success {
		t.Fatal("expected success envelope")
	}
	if body.Data.Credits != 6 {
		t.Fatalf("expected post-commit balance 6, got %d", body.Data.Credits)
	}
	if body.Data.CreditsSpent != 4 {
		t.Fatalf("expected credits_spent 4, got %d", body.Data.CreditsSpent)
	}
}

func TestAccessHandlerInvalidID(t *testing.T) {
	router := newHandlerRouter(&fakeRepo{}, &fakeMaterials{})

	req := httptest.NewRequest(http.MethodGet, "/materials/not-a-uuid/access", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

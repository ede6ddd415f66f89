package purchase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/studyhub/studyhub-api/internal/domain/material"
	"github.com/studyhub/studyhub-api/internal/domain/user"
	"github.com/studyhub/studyhub-api/internal/pkg/cache"
)

type fakeRepo struct {
	result          *Result
	purchaseErr     error
	entitled        bool
	entitlementErr  error
	entitlementHits int
}

func (f *fakeRepo) Purchase(ctx context.Context, userID, materialID uuid.UUID) (*Result, error) {
	if f.purchaseErr != nil {
		return nil, f.purchaseErr
	}
	return f.result, nil
}

func (f *fakeRepo) HasEntitlement(ctx context.Context, userID, materialID uuid.UUID) (bool, error) {
	f.entitlementHits++
	return f.entitled, f.entitlementErr
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*PurchasedItem, error) {
	return nil, nil
}

type fakeMaterials struct {
	materials map[uuid.UUID]*material.Material
}

func (f *fakeMaterials) GetByID(ctx context.Context, id uuid.UUID) (*material.Material, error) {
	if m, ok := f.materials[id]; ok {
		return m, nil
	}
	return nil, material.ErrMaterialNotFound
}

type fakeUserRepo struct {
	credits int
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error { return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return nil, user.ErrUserNotFound
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}
func (f *fakeUserRepo) GetCredits(ctx context.Context, id uuid.UUID) (int, error) {
	return f.credits, nil
}
func (f *fakeUserRepo) AddCredits(ctx context.Context, id uuid.UUID, amount int) error {
	f.credits += amount
	return nil
}

func newTestMaterial(owner uuid.UUID, price int) *material.Material {
	return &material.Material{
		ID:        uuid.New(),
		UserID:    owner,
		Title:     "Calculus Notes",
		Type:      material.TypeNotes,
		Price:     price,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func newTestService(repo Repository, materials MaterialStore) *Service {
	return NewService(repo, materials, &fakeUserRepo{}, cache.NewMemory(100, time.Minute), time.Minute)
}

func TestHasAccessOwner(t *testing.T) {
	owner := uuid.New()
	m := newTestMaterial(owner, 5)
	svc := newTestService(&fakeRepo{}, &fakeMaterials{materials: map[uuid.UUID]*material.Material{m.ID: m}})

	ok, err := svc.HasAccess(context.Background(), owner, m.ID)
	if err != nil {
		t.Fatalf("has access failed: %v", err)
	}
	if !ok {
		t.Fatal("owner must have access")
	}
}

func TestHasAccessFreeMaterial(t *testing.T) {
	m := newTestMaterial(uuid.New(), 0)
	svc := newTestService(&fakeRepo{}, &fakeMaterials{materials: map[uuid.UUID]*material.Material{m.ID: m}})

	ok, err := svc.HasAccess(context.Background(), uuid.New(), m.ID)
	if err != nil {
		t.Fatalf("has access failed: %v", err)
	}
	if !ok {
		t.Fatal("free material must be open")
	}

	// Anonymous callers read free materials too
	ok, err = svc.HasAccess(context.Background(), uuid.Nil, m.ID)
	if err != nil || !ok {
		t.Fatalf("anonymous access to free material: ok=%v err=%v", ok, err)
	}
}

func TestHasAccessAnonymousPaid(t *testing.T) {
	m := newTestMaterial(uuid.New(), 5)
	repo := &fakeRepo{entitled: true}
	svc := newTestService(repo, &fakeMaterials{materials: map[uuid.UUID]*material.Material{m.ID: m}})

	ok, err := svc.HasAccess(context.Background(), uuid.Nil, m.ID)
	if err != nil {
		t.Fatalf("has access failed: %v", err)
	}
	if ok {
		t.Fatal("anonymous caller must not access paid material")
	}
	if repo.entitlementHits != 0 {
		t.Fatal("anonymous check must not hit the entitlement store")
	}
}

func TestHasAccessEntitlementCached(t *testing.T) {
	m := newTestMaterial(uuid.New(), 5)
	buyer := uuid.New()
	repo := &fakeRepo{entitled: true}
	svc := newTestService(repo, &fakeMaterials{materials: map[uuid.UUID]*material.Material{m.ID: m}})

	for i := 0; i < 3; i++ {
		ok, err := svc.HasAccess(context.Background(), buyer, m.ID)
		if err != nil {
			t.Fatalf("has access failed: %v", err)
		}
		if !ok {
			t.Fatal("expected access with entitlement")
		}
	}

	if repo.entitlementHits != 1 {
		t.Fatalf("positive result not cached: %d store hits, want 1", repo.entitlementHits)
	}
}

func TestHasAccessDeniedNotCached(t *testing.T) {
	m := newTestMaterial(uuid.New(), 5)
	buyer := uuid.New()
	repo := &fakeRepo{entitled: false}
	svc := newTestService(repo, &fakeMaterials{materials: map[uuid.UUID]*material.Material{m.ID: m}})

	for i := 0; i < 3; i++ {
		ok, err := svc.HasAccess(context.Background(), buyer, m.ID)
		if err != nil {
			t.Fatalf("has access failed: %v", err)
		}
		if ok {
			t.Fatal("expected no access without entitlement")
		}
	}

	if repo.entitlementHits != 3 {
		t.Fatalf("negative result must not be cached: %d store hits, want 3", repo.entitlementHits)
	}
}

func TestHasAccessMaterialNotFound(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeMaterials{materials: map[uuid.UUID]*material.Material{}})

	_, err := svc.HasAccess(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, material.ErrMaterialNotFound) {
		t.Fatalf("expected ErrMaterialNotFound, got %v", err)
	}
}

func TestPurchasePrimesAccessCache(t *testing.T) {
	m := newTestMaterial(uuid.New(), 5)
	buyer := uuid.New()
	repo := &fakeRepo{
		result: &Result{
			Entitlement: &Entitlement{ID: uuid.New(), UserID: buyer, MaterialID: m.ID, CreditsSpent: 5},
			Balance:     5,
		},
		entitled: false, // store would say no; the cache primed by Purchase must say yes
	}
	svc := newTestService(repo, &fakeMaterials{materials: map[uuid.UUID]*material.Material{m.ID: m}})

	result, err := svc.Purchase(context.Background(), buyer, m.ID)
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if result.Balance != 5 {
		t.Fatalf("expected balance 5, got %d", result.Balance)
	}

	ok, err := svc.HasAccess(context.Background(), buyer, m.ID)
	if err != nil {
		t.Fatalf("has access failed: %v", err)
	}
	if !ok {
		t.Fatal("expected access right after purchase")
	}
	if repo.entitlementHits != 0 {
		t.Fatalf("expected cache hit after purchase, got %d store hits", repo.entitlementHits)
	}
}

func TestPurchasePropagatesErrors(t *testing.T) {
	m := newTestMaterial(uuid.New(), 5)
	repo := &fakeRepo{purchaseErr: ErrInsufficientCredits}
	svc := newTestService(repo, &fakeMaterials{materials: map[uuid.UUID]*material.Material{m.ID: m}})

	_, err := svc.Purchase(context.Background(), uuid.New(), m.ID)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
}

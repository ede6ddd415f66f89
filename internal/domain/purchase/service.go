package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/studyhub/studyhub-api/internal/domain/material"
	"github.com/studyhub/studyhub-api/internal/domain/user"
	"github.com/studyhub/studyhub-api/internal/pkg/cache"
)

// MaterialStore is the slice of the material repository access
// evaluation needs
type MaterialStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*material.Material, error)
}

// Service handles purchase business logic
type Service struct {
	repo      Repository
	materials MaterialStore
	userRepo  user.Repository
	cache     cache.Cache
	cacheTTL  time.Duration
}

// NewService creates purchase service
func NewService(repo Repository, materials MaterialStore, userRepo user.Repository, c cache.Cache, cacheTTL time.Duration) *Service {
	return &Service{
		repo:      repo,
		materials: materials,
		userRepo:  userRepo,
		cache:     c,
		cacheTTL:  cacheTTL,
	}
}

// Purchase buys a material for the user. All-or-nothing: the debit and
// the entitlement record commit in one transaction.
func (s *Service) Purchase(ctx context.Context, userID, materialID uuid.UUID) (*Result, error) {
	result, err := s.repo.Purchase(ctx, userID, materialID)
	if err != nil {
		return nil, err
	}

	s.cacheAccess(ctx, userID, materialID)

	log.Info().
		Str("user_id", userID.String()).
		Str("material_id", materialID.String()).
		Int("credits_spent", result.Entitlement.CreditsSpent).
		Int("balance", result.Balance).
		Msg("material purchased")

	return result, nil
}

// HasAccess reports whether the user may read the material: the owner
// always may, free materials are open to everyone, otherwise an
// entitlement record must exist.
//
// Only positive results are cached. Ownership and entitlements never go
// away, so a cached positive cannot go stale; a negative can (the user
// buys the material), so negatives always hit the store.
func (s *Service) HasAccess(ctx context.Context, userID, materialID uuid.UUID) (bool, error) {
	m, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		return false, err
	}

	if m.IsFree() {
		return true, nil
	}
	if userID == uuid.Nil {
		return false, nil
	}
	if m.UserID == userID {
		return true, nil
	}

	key := accessKey(userID, materialID)
	if s.cache != nil {
		if _, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			return true, nil
		}
	}

	ok, err := s.repo.HasEntitlement(ctx, userID, materialID)
	if err != nil {
		return false, err
	}
	if ok {
		s.cacheAccess(ctx, userID, materialID)
	}
	return ok, nil
}

// Balance returns the user's current credit balance
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.userRepo.GetCredits(ctx, userID)
}

// ListMine returns the user's purchases
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*PurchasedItem, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) cacheAccess(ctx context.Context, userID, materialID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, accessKey(userID, materialID), []byte{1}, s.cacheTTL); err != nil {
		log.Debug().Err(err).Msg("access cache set failed")
	}
}

func accessKey(userID, materialID uuid.UUID) string {
	return fmt.Sprintf("access:%s:%s", userID, materialID)
}

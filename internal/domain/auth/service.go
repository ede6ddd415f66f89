package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/studyhub/studyhub-api/internal/domain/university"
	"github.com/studyhub/studyhub-api/internal/domain/user"
	"github.com/studyhub/studyhub-api/internal/pkg/jwt"
	"github.com/studyhub/studyhub-api/internal/pkg/password"
)

// UniversityFinder resolves a university from a user's email domain
type UniversityFinder interface {
	FindByEmailDomain(ctx context.Context, email string) (*university.University, error)
}

// Service handles authentication business logic
type Service struct {
	userRepo    user.Repository
	uniRepo     UniversityFinder
	jwtService  *jwt.Service
	redis       *redis.Client // nil if Redis disabled
	signupBonus int
}

// NewService creates auth service
func NewService(userRepo user.Repository, uniRepo UniversityFinder, jwtService *jwt.Service, redisClient *redis.Client, signupBonus int) *Service {
	return &Service{
		userRepo:    userRepo,
		uniRepo:     uniRepo,
		jwtService:  jwtService,
		redis:       redisClient,
		signupBonus: signupBonus,
	}
}

// Register creates new user account. New accounts start with the signup
// bonus credit balance and, when the email domain matches a known
// university, are associated with it.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	existing, _ := s.userRepo.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         user.RoleStudent,
		Credits:      s.signupBonus,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if uni, err := s.uniRepo.FindByEmailDomain(ctx, req.Email); err == nil && uni != nil {
		u.UniversityID = uuid.NullUUID{UUID: uni.ID, Valid: true}
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if err == user.ErrEmailAlreadyExists {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	return s.generateTokens(ctx, u)
}

// Login authenticates a user
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokens(ctx, u)
}

// Refresh rotates a refresh token and issues a new token pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if ok, err := s.consumeRefreshToken(ctx, claims.UserID, refreshToken); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidRefreshToken
	}

	u, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return s.generateTokens(ctx, u)
}

// Logout revokes a refresh token
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, refreshKey(claims.UserID, refreshToken)).Err()
}

// Me returns the current user
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	resp := toUserResponse(u)
	return &resp, nil
}

func (s *Service) generateTokens(ctx context.Context, u *user.User) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, _, expiresAt, err := s.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	// Track issued refresh tokens so they can be rotated and revoked.
	// Without Redis the tokens are stateless and expire naturally.
	if s.redis != nil {
		ttl := time.Until(expiresAt)
		if err := s.redis.Set(ctx, refreshKey(u.ID, refreshToken), "1", ttl).Err(); err != nil {
			log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("failed to track refresh token")
		}
	}

	return &AuthResponse{
		User: toUserResponse(u),
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}, nil
}

// consumeRefreshToken atomically invalidates a tracked refresh token.
// Returns false when the token was already used or revoked.
func (s *Service) consumeRefreshToken(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	if s.redis == nil {
		return true, nil
	}
	deleted, err := s.redis.Del(ctx, refreshKey(userID, token)).Result()
	if err != nil {
		return false, fmt.Errorf("consume refresh token: %w", err)
	}
	return deleted > 0, nil
}

func refreshKey(userID uuid.UUID, token string) string {
	return "auth:refresh:" + userID.String() + ":" + jwt.HashRefreshToken(token)
}

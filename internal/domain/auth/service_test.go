package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/studyhub/studyhub-api/internal/domain/university"
	"github.com/studyhub/studyhub-api/internal/domain/user"
	"github.com/studyhub/studyhub-api/internal/pkg/jwt"
	"github.com/studyhub/studyhub-api/internal/pkg/password"
)

type fakeUserRepo struct {
	byEmail map[string]*user.User
	byID    map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: map[string]*user.User{},
		byID:    map[uuid.UUID]*user.User{},
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return user.ErrEmailAlreadyExists
	}
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}


func (f *fakeUserRepo) GetCredits(ctx context.Context, id uuid.UUID) (int, error) {
	u, ok := f.byID[id]
	if !ok {
		return 0, user.ErrUserNotFound
	}
	return u.Credits, nil
}

func (f *fakeUserRepo) AddCredits(ctx context.Context, id uuid.UUID, amount int) error {
	u, ok := f.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Credits += amount
	return nil
}

type fakeUniFinder struct {
	uni *university.University
}

func (f *fakeUniFinder) FindByEmailDomain(ctx context.Context, email string) (*university.University, error) {
	return f.uni, nil
}

func newTestService(repo user.Repository, uni UniversityFinder) *Service {
	return NewService(repo, uni, jwt.NewService("test-secret", time.Minute, time.Hour), nil, 10)
}

func TestRegisterGrantsSignupBonus(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeUniFinder{})

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "Alice@Example.edu",
		Password: "s3cret-pass",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if resp.User.Credits != 10 {
		t.Fatalf("expected signup bonus of 10, got %d", resp.User.Credits)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if _, ok := repo.byEmail["alice@example.edu"]; !ok {
		t.Fatal("email must be normalized before storing")
	}
}

func TestRegisterAssociatesUniversityByDomain(t *testing.T) {
	uni := &university.University{ID: uuid.New(), Name: "Test University", EmailDomain: "test.edu"}
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeUniFinder{uni: uni})

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "bob@test.edu",
		Password: "s3cret-pass",
		Name:     "Bob",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if resp.User.UniversityID == nil || *resp.User.UniversityID != uni.ID {
		t.Fatalf("expected university association, got %v", resp.User.UniversityID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeUniFinder{})

	req := &RegisterRequest{Email: "carol@test.edu", Password: "s3cret-pass", Name: "Carol"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeUniFinder{})

	if _, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "dave@test.edu",
		Password: "correct-horse",
		Name:     "Dave",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	resp, err := svc.Login(context.Background(), &LoginRequest{Email: "dave@test.edu", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Tokens.AccessToken == "" {
		t.Fatal("expected access token")
	}

	_, err = svc.Login(context.Background(), &LoginRequest{Email: "dave@test.edu", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	_, err = svc.Login(context.Background(), &LoginRequest{Email: "nobody@test.edu", Password: "x"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeUniFinder{})

	registered, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "erin@test.edu",
		Password: "s3cret-pass",
		Name:     "Erin",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), registered.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.Tokens.AccessToken == "" || refreshed.Tokens.RefreshToken == "" {
		t.Fatal("expected a fresh token pair")
	}

	if _, err := svc.Refresh(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := password.Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !password.Verify("s3cret-pass", hash) {
		t.Fatal("verify must accept the original password")
	}
	if password.Verify("other", hash) {
		t.Fatal("verify must reject a wrong password")
	}
}

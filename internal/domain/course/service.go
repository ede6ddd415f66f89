package course

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/studyhub/studyhub-api/internal/domain/user"
)

// Service handles course business logic
type Service struct {
	repo     *Repository
	userRepo user.Repository
}

// NewService creates course service
func NewService(repo *Repository, userRepo user.Repository) *Service {
	return &Service{repo: repo, userRepo: userRepo}
}

// Create adds a course under the creator's university. The creator is
// enrolled automatically.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *CreateRequest) (*Course, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.UniversityID.Valid {
		return nil, ErrNoUniversity
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	existing, err := s.repo.GetByCode(ctx, u.UniversityID.UUID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateCode
	}

	c := &Course{
		ID:           uuid.New(),
		Code:         code,
		Name:         strings.TrimSpace(req.Name),
		Department:   strings.TrimSpace(req.Department),
		UniversityID: u.UniversityID.UUID,
		CreatedBy:    userID,
		CreatedAt:    time.Now(),
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		c.Description.String = desc
		c.Description.Valid = true
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	if err := s.repo.Enroll(ctx, userID, c.ID); err != nil {
		log.Warn().Err(err).Str("course_id", c.ID.String()).Msg("failed to auto-enroll course creator")
	}

	log.Info().
		Str("course_id", c.ID.String()).
		Str("code", c.Code).
		Str("user_id", userID.String()).
		Msg("course created")

	return c, nil
}

// Get returns one course with caller-specific enrollment state
func (s *Service) Get(ctx context.Context, callerID uuid.UUID, courseID uuid.UUID) (*Response, error) {
	c, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled := false
	if callerID != uuid.Nil {
		enrolled, err = s.repo.IsEnrolled(ctx, callerID, courseID)
		if err != nil {
			return nil, err
		}
	}

	count, err := s.repo.MaterialCount(ctx, courseID)
	if err != nil {
		return nil, err
	}

	resp := toResponse(c, enrolled, count)
	return &resp, nil
}

// ListByUniversity returns a university's courses
func (s *Service) ListByUniversity(ctx context.Context, universityID uuid.UUID) ([]*Course, error) {
	return s.repo.ListByUniversity(ctx, universityID)
}

// ListMine returns the caller's enrolled courses
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*Course, error) {
	return s.repo.ListEnrolled(ctx, userID)
}

// Enroll adds the caller to a course, idempotent
func (s *Service) Enroll(ctx context.Context, userID, courseID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, courseID); err != nil {
		return err
	}
	return s.repo.Enroll(ctx, userID, courseID)
}

// Unenroll removes the caller from a course
func (s *Service) Unenroll(ctx context.Context, userID, courseID uuid.UUID) error {
	return s.repo.Unenroll(ctx, userID, courseID)
}

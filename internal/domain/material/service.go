package material

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/studyhub/studyhub-api/internal/domain/course"
	"github.com/studyhub/studyhub-api/internal/domain/user"
	"github.com/studyhub/studyhub-api/internal/pkg/imaging"
	"github.com/studyhub/studyhub-api/internal/pkg/storage"
)

// CourseStore is the slice of the course repository the upload flow needs
type CourseStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*course.Course, error)
}

// AccessChecker decides whether a user may read a material. Wired to the
// purchase service; kept as an interface here to avoid a package cycle.
type AccessChecker interface {
	HasAccess(ctx context.Context, userID, materialID uuid.UUID) (bool, error)
}

// Service handles material business logic
type Service struct {
	repo          Repository
	userRepo      user.Repository
	courses       CourseStore
	storage       storage.Storage
	thumbnails    *imaging.Generator
	access        AccessChecker
	rewardCredits int
	maxUploadSize int64
}

// NewService creates material service
func NewService(
	repo Repository,
	userRepo user.Repository,
	courses CourseStore,
	store storage.Storage,
	thumbnails *imaging.Generator,
	rewardCredits int,
	maxUploadSize int64,
) *Service {
	return &Service{
		repo:          repo,
		userRepo:      userRepo,
		courses:       courses,
		storage:       store,
		thumbnails:    thumbnails,
		rewardCredits: rewardCredits,
		maxUploadSize: maxUploadSize,
	}
}

// SetAccessChecker wires the access evaluator after construction.
// The purchase service depends on this package, so the dependency
// runs through an interface set at startup.
func (s *Service) SetAccessChecker(access AccessChecker) {
	s.access = access
}

// Upload stores a material and rewards the uploader.
//
// The file is stored first; a storage failure aborts before any record
// exists. A record failure after storage leaves the object orphaned,
// which is logged and accepted. The reward is an independent update:
// its failure never rolls back the upload.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, req *UploadRequest, file io.Reader, filename string) (*UploadResponse, error) {
	if file == nil && strings.TrimSpace(req.Content) == "" {
		return nil, ErrNoContent
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	m := &Material{
		ID:                   uuid.New(),
		UserID:               userID,
		Title:                strings.TrimSpace(req.Title),
		Type:                 Type(req.Type),
		Price:                req.Price,
		IsUniversitySpecific: req.IsUniversitySpecific,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		m.Description = sql.NullString{String: desc, Valid: true}
	}

	if req.CourseID != "" {
		courseID, err := uuid.Parse(req.CourseID)
		if err != nil {
			return nil, course.ErrCourseNotFound
		}
		c, err := s.courses.GetByID(ctx, courseID)
		if err != nil {
			return nil, err
		}
		m.CourseID = uuid.NullUUID{UUID: c.ID, Valid: true}
		m.UniversityID = uuid.NullUUID{UUID: c.UniversityID, Valid: true}
	} else if u.UniversityID.Valid {
		m.UniversityID = u.UniversityID
	}

	var fileBuf *bytes.Buffer
	var contentType string

	if file != nil {
		buf, detected, ext, err := storage.ValidateAndBuffer(file, filename, s.maxUploadSize)
		if err != nil {
			return nil, err
		}

		key := fmt.Sprintf("materials/%s/%s%s", userID, m.ID, ext)
		if err := s.storage.Save(ctx, key, bytes.NewReader(buf.Bytes()), detected); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to store material file")
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}

		m.FileKey = sql.NullString{String: key, Valid: true}
		m.FileType = sql.NullString{String: detected, Valid: true}
		m.OriginalName = sql.NullString{String: path.Base(filename), Valid: true}
		m.SizeBytes = sql.NullInt64{Int64: int64(buf.Len()), Valid: true}
		fileBuf = buf
		contentType = detected
	} else {
		m.Content = sql.NullString{String: req.Content, Valid: true}
	}

	if err := s.repo.Create(ctx, m); err != nil {
		if m.FileKey.Valid {
			// The object has no record pointing at it. Accepted leak,
			// cleaned up out of band.
			log.Error().Err(err).
				Str("material_id", m.ID.String()).
				Str("file_key", m.FileKey.String).
				Msg("material record failed after file store, object orphaned")
		}
		return nil, fmt.Errorf("%w: %v", ErrRecord, err)
	}

	rewardGranted := true
	if err := s.userRepo.AddCredits(ctx, userID, s.rewardCredits); err != nil {
		rewardGranted = false
		log.Warn().Err(err).
			Str("user_id", userID.String()).
			Str("material_id", m.ID.String()).
			Msg("upload reward grant failed, material kept")
	}

	credits := u.Credits
	if balance, err := s.userRepo.GetCredits(ctx, userID); err == nil {
		credits = balance
	} else if rewardGranted {
		credits = u.Credits + s.rewardCredits
	}

	if fileBuf != nil && storage.IsImage(contentType) {
		s.generateThumbnail(ctx, m, fileBuf.Bytes())
	}

	log.Info().
		Str("material_id", m.ID.String()).
		Str("user_id", userID.String()).
		Str("type", string(m.Type)).
		Int("price", m.Price).
		Bool("reward_granted", rewardGranted).
		Msg("material uploaded")

	return &UploadResponse{
		Material:      toResponse(m),
		RewardGranted: rewardGranted,
		Credits:       credits,
	}, nil
}

// generateThumbnail stores a card preview next to the original.
// Failures are logged, never surfaced.
func (s *Service) generateThumbnail(ctx context.Context, m *Material, data []byte) {
	if s.thumbnails == nil {
		return
	}

	thumb, err := s.thumbnails.Generate(bytes.NewReader(data))
	if err != nil {
		log.Warn().Err(err).Str("material_id", m.ID.String()).Msg("thumbnail generation failed")
		return
	}

	ext := ".jpg"
	if thumb.ContentType == "image/png" {
		ext = ".png"
	}
	key := fmt.Sprintf("materials/%s/%s_thumb%s", m.UserID, m.ID, ext)
	if err := s.storage.Save(ctx, key, bytes.NewReader(thumb.Data), thumb.ContentType); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("thumbnail store failed")
		return
	}

	url := s.storage.GetURL(key)
	if err := s.repo.UpdateThumbnail(ctx, m.ID, url); err != nil {
		log.Warn().Err(err).Str("material_id", m.ID.String()).Msg("thumbnail record failed")
		// Nothing references the object anymore, drop it.
		_ = s.storage.Delete(ctx, key)
		return
	}
	m.ThumbnailURL = sql.NullString{String: url, Valid: true}
}

// Get returns one material with joined display names
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ListItem, error) {
	return s.repo.GetListItem(ctx, id)
}

// List returns catalog rows matching the filter plus the total match count
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*ListItem, int, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListMine returns the caller's uploads
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*Material, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Download checks access, bumps the downloads counter and returns the
// content location. Access evaluation errors deny access.
func (s *Service) Download(ctx context.Context, userID, materialID uuid.UUID) (*DownloadResponse, error) {
	m, err := s.repo.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}

	ok, err := s.access.HasAccess(ctx, userID, materialID)
	if err != nil {
		log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("material_id", materialID.String()).
			Msg("access evaluation failed, denying")
		return nil, ErrForbidden
	}
	if !ok {
		return nil, ErrForbidden
	}

	resp := &DownloadResponse{}
	switch {
	case m.FileKey.Valid:
		stored, err := s.storage.Exists(ctx, m.FileKey.String)
		if err != nil {
			log.Error().Err(err).Str("file_key", m.FileKey.String).Msg("object store check failed")
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		if !stored {
			log.Error().
				Str("material_id", materialID.String()).
				Str("file_key", m.FileKey.String).
				Msg("material record points at a missing object")
			return nil, ErrNoContent
		}
		resp.URL = s.storage.GetURL(m.FileKey.String)
	case m.Content.Valid:
		resp.Content = m.Content.String
	default:
		return nil, ErrNoContent
	}

	if err := s.repo.IncrementDownloads(ctx, materialID); err != nil {
		log.Warn().Err(err).Str("material_id", materialID.String()).Msg("download counter update failed")
	}
	return resp, nil
}

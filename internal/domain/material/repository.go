package material

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines material data access interface
type Repository interface {
	Create(ctx context.Context, m *Material) error
	GetByID(ctx context.Context, id uuid.UUID) (*Material, error)
	GetListItem(ctx context.Context, id uuid.UUID) (*ListItem, error)
	List(ctx context.Context, filter ListFilter) ([]*ListItem, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Material, error)
	IncrementDownloads(ctx context.Context, id uuid.UUID) error
	UpdateThumbnail(ctx context.Context, id uuid.UUID, thumbnailURL string) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new material repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const materialColumns = `id, user_id, title, description, type, price, downloads, rating,
	file_key, file_type, original_name, size_bytes, thumbnail_url, content,
	course_id, university_id, is_university_specific, created_at, updated_at`

// Create inserts a material record
func (r *repository) Create(ctx context.Context, m *Material) error {
	query := `
		INSERT INTO materials (id, user_id, title, description, type, price,
			file_key, file_type, original_name, size_bytes, content,
			course_id, university_id, is_university_specific, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.Title, m.Description, m.Type, m.Price,
		m.FileKey, m.FileType, m.OriginalName, m.SizeBytes, m.Content,
		m.CourseID, m.UniversityID, m.IsUniversitySpecific, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("material repository create: %w", err)
	}
	return nil
}

// GetByID returns material by ID
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Material, error) {
	var m Material
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("material repository get by id: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetListItem returns a material with joined display names
func (r *repository) GetListItem(ctx context.Context, id uuid.UUID) (*ListItem, error) {
	query := `
		SELECT m.id, m.user_id, m.title, m.description, m.type, m.price, m.downloads, m.rating,
			m.file_key, m.file_type, m.original_name, m.size_bytes, m.thumbnail_url, m.content,
			m.course_id, m.university_id, m.is_university_specific, m.created_at, m.updated_at,
			u.name AS uploader_name, un.name AS university_name, c.code AS course_code
		FROM materials m
		JOIN users u ON u.id = m.user_id
		LEFT JOIN universities un ON un.id = m.university_id
		LEFT JOIN courses c ON c.id = m.course_id
		WHERE m.id = $1
	`

	var item ListItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("material repository get list item: %w", err)
	}
	return &item, nil
}

// listConds builds the WHERE conditions for a catalog filter
func listConds(filter ListFilter) (conds []string, args []interface{}) {
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if filter.Type != "" {
		add("m.type = ?", filter.Type)
	}
	if filter.CourseID != uuid.Nil {
		add("m.course_id = ?", filter.CourseID)
	}
	if filter.UniversityID != uuid.Nil {
		add("m.university_id = ?", filter.UniversityID)
	}
	if filter.Query != "" {
		add("m.title ILIKE ?", "%"+filter.Query+"%")
	}
	if filter.FreeOnly {
		conds = append(conds, "m.price = 0")
	}
	return conds, args
}

// List returns catalog rows matching the filter, newest first
func (r *repository) List(ctx context.Context, filter ListFilter) ([]*ListItem, error) {
	conds, args := listConds(filter)

	query := `
		SELECT m.id, m.user_id, m.title, m.description, m.type, m.price, m.downloads, m.rating,
			m.file_key, m.file_type, m.original_name, m.size_bytes, m.thumbnail_url, m.content,
			m.course_id, m.university_id, m.is_university_specific, m.created_at, m.updated_at,
			u.name AS uploader_name, un.name AS university_name, c.code AS course_code
		FROM materials m
		JOIN users u ON u.id = m.user_id
		LEFT JOIN universities un ON un.id = m.university_id
		LEFT JOIN courses c ON c.id = m.course_id
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY m.created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	args = append(args, limit)
	query += " LIMIT $" + strconv.Itoa(len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	items := []*ListItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("material repository list: %w", err)
	}
	return items, nil
}

// Count returns the number of catalog rows matching the filter
func (r *repository) Count(ctx context.Context, filter ListFilter) (int, error) {
	conds, args := listConds(filter)

	query := `SELECT COUNT(*) FROM materials m`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("material repository count: %w", err)
	}
	return total, nil
}

// ListByUser returns the user's uploads, newest first
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE user_id = $1 ORDER BY created_at DESC`

	materials := []*Material{}
	if err := r.db.SelectContext(ctx, &materials, query, userID); err != nil {
		return nil, fmt.Errorf("material repository list by user: %w", err)
	}
	return materials, nil
}

// IncrementDownloads bumps the downloads counter
func (r *repository) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE materials SET downloads = downloads + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("material repository increment downloads: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrMaterialNotFound
	}
	return nil
}

// UpdateThumbnail records a generated thumbnail URL
func (r *repository) UpdateThumbnail(ctx context.Context, id uuid.UUID, thumbnailURL string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE materials SET thumbnail_url = $2, updated_at = now() WHERE id = $1`, id, thumbnailURL)
	if err != nil {
		return fmt.Errorf("material repository update thumbnail: %w", err)
	}
	return nil
}

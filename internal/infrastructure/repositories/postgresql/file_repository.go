package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/researchmem/researchmem/internal/domain/repositories"
	"github.com/researchmem/researchmem/internal/infrastructure/database"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound aliases the domain sentinel so callers in this package's tests
// can match it without importing the interfaces package.
var ErrNotFound = repositories.ErrNotFound

type FileRepository struct {
	db *database.DB
}

func NewFileRepository(db *database.DB) repositories.FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.File, error) {
	var file models.File
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&file).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return &file, nil
}

func (r *FileRepository) GetByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]models.File, error) {
	var files []models.File
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", ownerID, ids).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get files: %w", err)
	}
	return files, nil
}

func (r *FileRepository) Update(ctx context.Context, file *models.File) error {
	result := r.db.WithContext(ctx).Save(file)
	if result.Error != nil {
		return fmt.Errorf("failed to update file: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FileRepository) List(ctx context.Context, ownerID uuid.UUID, filters repositories.FileFilters) ([]models.File, int64, error) {
	var files []models.File
	var total int64

	query := r.db.WithContext(ctx).Model(&models.File{}).Where("user_id = ?", ownerID)

	if len(filters.Status) > 0 {
		query = query.Where("file_status IN ?", filters.Status)
	}

	if filters.Extension != "" {
		query = query.Where("file_extension = ?", filters.Extension)
	}

	if filters.Tag != "" {
		// file_tags is a serialized json array of quoted strings, so an exact
		// tag match is a substring match on its quoted form.
		query = query.Where("CAST(file_tags AS TEXT) LIKE ?", `%"`+filters.Tag+`"%`)
	}

	if filters.Search != "" {
		query = query.Where("file_name LIKE ?", "%"+filters.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count files: %w", err)
	}

	offset := (filters.Page - 1) * filters.PageSize
	orderBy := "created_at DESC"
	if filters.SortBy != "" {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s", filters.SortBy, direction)
	}

	err := query.Order(orderBy).Offset(offset).Limit(filters.PageSize).Find(&files).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list files: %w", err)
	}

	return files, total, nil
}

// BulkUpdateStatus is a single batched write; callers are responsible for
// whatever legality checks they want before it runs.
func (r *FileRepository) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status models.FileStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.File{}).
		Where("id IN ?", ids).
		Update("file_status", status)

	if result.Error != nil {
		return 0, fmt.Errorf("failed to bulk update file status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

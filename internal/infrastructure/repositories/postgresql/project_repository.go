package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/researchmem/researchmem/internal/domain/repositories"
	"github.com/researchmem/researchmem/internal/infrastructure/database"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// flagColumns are the only columns BulkSetFlag may touch.
var flagColumns = map[string]bool{
	"is_deleted":  true,
	"is_archived": true,
	"is_pinned":   true,
	"is_favorite": true,
	"is_shared":   true,
}

type ProjectRepository struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) repositories.ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// BulkInsert creates all rows in a single batched insert statement.
func (r *ProjectRepository) BulkInsert(ctx context.Context, projects []models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&projects, len(projects)).Error; err != nil {
		return fmt.Errorf("failed to bulk insert projects: %w", err)
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, ownerID, false).
		First(&project).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

func (r *ProjectRepository) GetOwnedIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	var owned []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("user_id = ? AND id IN ? AND is_deleted = ?", ownerID, ids, false).
		Pluck("id", &owned).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owned projects: %w", err)
	}
	return owned, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	result := r.db.WithContext(ctx).Save(project)
	if result.Error != nil {
		return fmt.Errorf("failed to update project: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the owner's visible projects. Soft-deleted rows are always
// excluded; there is no way to list them back.
func (r *ProjectRepository) List(ctx context.Context, ownerID uuid.UUID, filters repositories.ProjectFilters) ([]models.Project, int64, error) {
	var projects []models.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("user_id = ? AND is_deleted = ?", ownerID, false)

	if filters.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filters.Name)+"%")
	}

	if len(filters.Status) > 0 {
		query = query.Where("status IN ?", filters.Status)
	}

	if filters.IsArchived != nil {
		query = query.Where("is_archived = ?", *filters.IsArchived)
	}
	if filters.IsPinned != nil {
		query = query.Where("is_pinned = ?", *filters.IsPinned)
	}
	if filters.IsFavorite != nil {
		query = query.Where("is_favorite = ?", *filters.IsFavorite)
	}
	if filters.IsShared != nil {
		query = query.Where("is_shared = ?", *filters.IsShared)
	}

	if filters.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filters.CreatedAfter)
	}
	if filters.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filters.CreatedBefore)
	}
	if filters.UpdatedAfter != nil {
		query = query.Where("updated_at >= ?", *filters.UpdatedAfter)
	}
	if filters.UpdatedBefore != nil {
		query = query.Where("updated_at <= ?", *filters.UpdatedBefore)
	}

	if filters.Search != "" {
		searchTerm := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	orderBy := "created_at DESC"
	if filters.SortBy != "" {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s", filters.SortBy, direction)
	}

	query = query.Order(orderBy)
	if filters.PageSize > 0 {
		offset := (filters.Page - 1) * filters.PageSize
		query = query.Offset(offset).Limit(filters.PageSize)
	}

	if err := query.Find(&projects).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

// BulkSetFlag applies one flag column to all listed rows as a single
// set-based update statement.
func (r *ProjectRepository) BulkSetFlag(ctx context.Context, ids []uuid.UUID, column string, value bool) (int64, error) {
	if !flagColumns[column] {
		return 0, fmt.Errorf("column %q is not an updatable project flag", column)
	}

	result := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id IN ?", ids).
		Update(column, value)

	if result.Error != nil {
		return 0, fmt.Errorf("failed to bulk set %s: %w", column, result.Error)
	}
	return result.RowsAffected, nil
}

func (r *ProjectRepository) BulkSetStatus(ctx context.Context, ids []uuid.UUID, status models.ProjectStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id IN ?", ids).
		Update("status", status)

	if result.Error != nil {
		return 0, fmt.Errorf("failed to bulk set status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *ProjectRepository) AttachFiles(ctx context.Context, projectID uuid.UUID, files []models.File) error {
	if len(files) == 0 {
		return nil
	}
	project := models.Project{ID: projectID}
	if err := r.db.WithContext(ctx).Model(&project).Association("Files").Append(toFilePointers(files)...); err != nil {
		return fmt.Errorf("failed to attach files: %w", err)
	}
	return nil
}

func (r *ProjectRepository) DetachFiles(ctx context.Context, projectID uuid.UUID, files []models.File) error {
	if len(files) == 0 {
		return nil
	}
	project := models.Project{ID: projectID}
	if err := r.db.WithContext(ctx).Model(&project).Association("Files").Delete(toFilePointers(files)...); err != nil {
		return fmt.Errorf("failed to detach files: %w", err)
	}
	return nil
}

func (r *ProjectRepository) ListFiles(ctx context.Context, projectID uuid.UUID) ([]models.File, error) {
	var files []models.File
	project := models.Project{ID: projectID}
	if err := r.db.WithContext(ctx).Model(&project).Association("Files").Find(&files); err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}
	return files, nil
}

func toFilePointers(files []models.File) []interface{} {
	ptrs := make([]interface{}, len(files))
	for i := range files {
		ptrs[i] = &files[i]
	}
	return ptrs
}

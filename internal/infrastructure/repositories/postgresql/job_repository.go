package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/researchmem/researchmem/internal/domain/repositories"
	"github.com/researchmem/researchmem/internal/infrastructure/database"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *database.DB
}

func NewJobRepository(db *database.DB) repositories.JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	result := r.db.WithContext(ctx).Save(job)
	if result.Error != nil {
		return fmt.Errorf("failed to update job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *JobRepository) ListByFile(ctx context.Context, fileID uuid.UUID) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (r *JobRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return r.updateFields(ctx, id, map[string]interface{}{
		"status":     models.JobStatusRunning,
		"started_at": &now,
	})
}

func (r *JobRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return r.updateFields(ctx, id, map[string]interface{}{
		"status":      models.JobStatusDone,
		"progress":    100.0,
		"finished_at": &now,
	})
}

func (r *JobRepository) MarkError(ctx context.Context, id uuid.UUID, msg string) error {
	now := time.Now().UTC()
	return r.updateFields(ctx, id, map[string]interface{}{
		"status":      models.JobStatusError,
		"error_msg":   msg,
		"finished_at": &now,
	})
}

func (r *JobRepository) updateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(fields)

	if result.Error != nil {
		return fmt.Errorf("failed to update job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

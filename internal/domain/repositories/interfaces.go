package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a row does not exist or is not visible to the
// requesting owner. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("record not found")

// Core repository interfaces. Every read is scoped to an owner; an ownership
// miss and an existence miss are indistinguishable to callers.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByOAuth(ctx context.Context, provider, subject string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.File, error)
	GetByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]models.File, error)
	Update(ctx context.Context, file *models.File) error
	List(ctx context.Context, ownerID uuid.UUID, filters FileFilters) ([]models.File, int64, error)
	// BulkUpdateStatus sets the status on all listed rows in one batched write.
	BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status models.FileStatus) (int64, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	BulkInsert(ctx context.Context, projects []models.Project) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Project, error)
	// GetOwnedIDs returns the subset of ids that exist, belong to ownerID and
	// are not soft-deleted.
	GetOwnedIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	Update(ctx context.Context, project *models.Project) error
	List(ctx context.Context, ownerID uuid.UUID, filters ProjectFilters) ([]models.Project, int64, error)
	// BulkSetFlag applies one boolean column to all listed rows in a single
	// set-based update. Column must be one of the is_* flag columns.
	BulkSetFlag(ctx context.Context, ids []uuid.UUID, column string, value bool) (int64, error)
	BulkSetStatus(ctx context.Context, ids []uuid.UUID, status models.ProjectStatus) (int64, error)

	// Attachment relation management (project_files join table).
	AttachFiles(ctx context.Context, projectID uuid.UUID, files []models.File) error
	DetachFiles(ctx context.Context, projectID uuid.UUID, files []models.File) error
	ListFiles(ctx context.Context, projectID uuid.UUID) ([]models.File, error)
}

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	ListByFile(ctx context.Context, fileID uuid.UUID) ([]models.Job, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkError(ctx context.Context, id uuid.UUID, msg string) error
}

// ListParams contains common listing parameters
type ListParams struct {
	Page     int
	PageSize int
	SortBy   string
	SortDesc bool
	Search   string
}

// FileFilters for file listing
type FileFilters struct {
	ListParams
	Status    []models.FileStatus
	Extension string
	Tag       string
}

// ProjectFilters for project listing. Flag pointers distinguish "not
// filtered" from "filtered to false".
type ProjectFilters struct {
	ListParams
	Name          string // case-insensitive substring
	Status        []models.ProjectStatus
	IsArchived    *bool
	IsPinned      *bool
	IsFavorite    *bool
	IsShared      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
}

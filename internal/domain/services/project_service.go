package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/researchmem/researchmem/internal/domain/repositories"
	"github.com/researchmem/researchmem/internal/domain/statemachine"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/researchmem/researchmem/pkg/slug"
	"github.com/google/uuid"
)

const (
	// MaxProjectNameLength bounds project names on create and rename.
	MaxProjectNameLength = 255

	// MaxBulkCreateCount bounds one bulk create call.
	MaxBulkCreateCount = 100
)

// ProjectService handles the project lifecycle: create, flags, status and
// soft deletion. Listing goes through an optional cache.
type ProjectService struct {
	projectRepo repositories.ProjectRepository
	cache       CacheService
	logger      *slog.Logger
}

// NewProjectService creates a new project service instance. cache may be nil,
// in which case every listing hits the database.
func NewProjectService(projectRepo repositories.ProjectRepository, cache CacheService, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		cache:       cache,
		logger:      logger,
	}
}

// CreateProjectParams contains parameters for project creation
type CreateProjectParams struct {
	Name        string
	Description string
	Status      models.ProjectStatus
}

func (s *ProjectService) Create(ctx context.Context, ownerID uuid.UUID, params CreateProjectParams) (*models.Project, error) {
	if err := validateProjectName(params.Name); err != nil {
		return nil, err
	}
	status := params.Status
	if status == "" {
		status = models.ProjectStatusDraft
	}
	if !models.ValidProjectStatus(status) {
		return nil, NewValidationError("status", fmt.Sprintf("unknown project status %q", status))
	}

	id := uuid.New()
	project := &models.Project{
		ID:          id,
		UserID:      ownerID,
		Slug:        slug.ForEntity(params.Name, id),
		Name:        params.Name,
		Description: params.Description,
		Status:      status,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	s.invalidateListing(ctx, ownerID)
	return project, nil
}

// BulkCreateParams contains parameters for bulk project creation
type BulkCreateParams struct {
	BaseName    string
	Description string
	Status      models.ProjectStatus
	Count       int
}

// BulkCreate inserts Count projects in one batched statement and reports only
// the created count. For Count > 1 the names are numbered base_1..base_N and
// each slug carries an extra random token so identical bases cannot collide
// within the batch.
func (s *ProjectService) BulkCreate(ctx context.Context, ownerID uuid.UUID, params BulkCreateParams) (int, error) {
	if err := validateProjectName(params.BaseName); err != nil {
		return 0, err
	}
	if params.Count < 1 || params.Count > MaxBulkCreateCount {
		return 0, NewValidationError("count", fmt.Sprintf("must be between 1 and %d", MaxBulkCreateCount))
	}
	status := params.Status
	if status == "" {
		status = models.ProjectStatusDraft
	}
	if !models.ValidProjectStatus(status) {
		return 0, NewValidationError("status", fmt.Sprintf("unknown project status %q", status))
	}

	if params.Count == 1 {
		_, err := s.Create(ctx, ownerID, CreateProjectParams{
			Name:        params.BaseName,
			Description: params.Description,
			Status:      status,
		})
		if err != nil {
			return 0, err
		}
		return 1, nil
	}

	projects := make([]models.Project, params.Count)
	for i := range projects {
		id := uuid.New()
		name := fmt.Sprintf("%s_%d", params.BaseName, i+1)
		projects[i] = models.Project{
			ID:          id,
			UserID:      ownerID,
			Slug:        slug.WithToken(name, id),
			Name:        name,
			Description: params.Description,
			Status:      status,
		}
	}

	if err := s.projectRepo.BulkInsert(ctx, projects); err != nil {
		return 0, err
	}
	s.invalidateListing(ctx, ownerID)
	return params.Count, nil
}

func (s *ProjectService) Get(ctx context.Context, ownerID, projectID uuid.UUID) (*models.Project, error) {
	return s.getOwned(ctx, ownerID, projectID)
}

// TogglePin flips is_pinned. Read-then-write; concurrent toggles are
// last-write-wins.
func (s *ProjectService) TogglePin(ctx context.Context, ownerID, projectID uuid.UUID) (*models.Project, error) {
	return s.toggle(ctx, ownerID, projectID, func(p *models.Project) { p.IsPinned = !p.IsPinned })
}

// ToggleFavorite flips is_favorite.
func (s *ProjectService) ToggleFavorite(ctx context.Context, ownerID, projectID uuid.UUID) (*models.Project, error) {
	return s.toggle(ctx, ownerID, projectID, func(p *models.Project) { p.IsFavorite = !p.IsFavorite })
}

// ToggleShare flips is_shared.
func (s *ProjectService) ToggleShare(ctx context.Context, ownerID, projectID uuid.UUID) (*models.Project, error) {
	return s.toggle(ctx, ownerID, projectID, func(p *models.Project) { p.IsShared = !p.IsShared })
}

func (s *ProjectService) toggle(ctx context.Context, ownerID, projectID uuid.UUID, flip func(*models.Project)) (*models.Project, error) {
	project, err := s.getOwned(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	flip(project)
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	s.invalidateListing(ctx, ownerID)
	return project, nil
}

// Archive moves the project to archived and raises the is_archived flag.
func (s *ProjectService) Archive(ctx context.Context, ownerID, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.transition(ctx, ownerID, projectID, models.ProjectStatusArchived)
	if err != nil {
		return nil, err
	}
	if !project.IsArchived {
		project.IsArchived = true
		if err := s.projectRepo.Update(ctx, project); err != nil {
			return nil, err
		}
	}
	return project, nil
}

// Unarchive returns an archived project to draft and clears the flag.
func (s *ProjectService) Unarchive(ctx context.Context, ownerID, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.transition(ctx, ownerID, projectID, models.ProjectStatusDraft)
	if err != nil {
		return nil, err
	}
	if project.IsArchived {
		project.IsArchived = false
		if err := s.projectRepo.Update(ctx, project); err != nil {
			return nil, err
		}
	}
	return project, nil
}

// Publish moves a draft project to published.
func (s *ProjectService) Publish(ctx context.Context, ownerID, projectID uuid.UUID) (*models.Project, error) {
	return s.transition(ctx, ownerID, projectID, models.ProjectStatusPublished)
}

// Unpublish returns a published project to draft.
func (s *ProjectService) Unpublish(ctx context.Context, ownerID, projectID uuid.UUID) (*models.Project, error) {
	return s.transition(ctx, ownerID, projectID, models.ProjectStatusDraft)
}

// UpdateStatus moves the project through the transition table. The error
// names both the current and the requested status.
func (s *ProjectService) UpdateStatus(ctx context.Context, ownerID, projectID uuid.UUID, target models.ProjectStatus) (*models.Project, error) {
	return s.transition(ctx, ownerID, projectID, target)
}

func (s *ProjectService) transition(ctx context.Context, ownerID, projectID uuid.UUID, target models.ProjectStatus) (*models.Project, error) {
	project, err := s.getOwned(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}

	next, err := statemachine.ProjectTransition(project.Status, target)
	if err != nil {
		return nil, err
	}

	project.Status = next
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	s.invalidateListing(ctx, ownerID)
	return project, nil
}

// SoftDelete marks the project deleted. The row stays; nothing lists it back.
func (s *ProjectService) SoftDelete(ctx context.Context, ownerID, projectID uuid.UUID) error {
	project, err := s.getOwned(ctx, ownerID, projectID)
	if err != nil {
		return err
	}
	project.IsDeleted = true
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return err
	}
	s.invalidateListing(ctx, ownerID)
	return nil
}

// ListResult is the cached shape of a project listing.
type ListResult struct {
	Projects []models.Project `json:"projects"`
	Total    int64            `json:"total"`
}

// List returns the owner's projects under the given facets. The unfiltered
// first page is served from cache when one is configured.
func (s *ProjectService) List(ctx context.Context, ownerID uuid.UUID, filters repositories.ProjectFilters) (*ListResult, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	cacheable := s.cache != nil && isDefaultListing(filters)
	cacheKey := fmt.Sprintf(ProjectListKeyPattern, ownerID)

	if cacheable {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil && raw != "" {
			var cached ListResult
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	projects, total, err := s.projectRepo.List(ctx, ownerID, filters)
	if err != nil {
		return nil, err
	}
	result := &ListResult{Projects: projects, Total: total}

	if cacheable {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, ProjectListTTL); err != nil {
				s.logger.Warn("failed to cache project listing", "owner_id", ownerID, "error", err)
			}
		}
	}

	return result, nil
}

// Pinned lists the owner's pinned projects.
func (s *ProjectService) Pinned(ctx context.Context, ownerID uuid.UUID) (*ListResult, error) {
	return s.flagListing(ctx, ownerID, func(f *repositories.ProjectFilters, yes *bool) { f.IsPinned = yes })
}

// Favorites lists the owner's favorite projects.
func (s *ProjectService) Favorites(ctx context.Context, ownerID uuid.UUID) (*ListResult, error) {
	return s.flagListing(ctx, ownerID, func(f *repositories.ProjectFilters, yes *bool) { f.IsFavorite = yes })
}

// Shared lists the owner's shared projects.
func (s *ProjectService) Shared(ctx context.Context, ownerID uuid.UUID) (*ListResult, error) {
	return s.flagListing(ctx, ownerID, func(f *repositories.ProjectFilters, yes *bool) { f.IsShared = yes })
}

// Archived lists the owner's archived projects.
func (s *ProjectService) Archived(ctx context.Context, ownerID uuid.UUID) (*ListResult, error) {
	return s.flagListing(ctx, ownerID, func(f *repositories.ProjectFilters, yes *bool) { f.IsArchived = yes })
}

func (s *ProjectService) flagListing(ctx context.Context, ownerID uuid.UUID, set func(*repositories.ProjectFilters, *bool)) (*ListResult, error) {
	yes := true
	filters := repositories.ProjectFilters{
		ListParams: repositories.ListParams{Page: 1, PageSize: 100},
	}
	set(&filters, &yes)

	projects, total, err := s.projectRepo.List(ctx, ownerID, filters)
	if err != nil {
		return nil, err
	}
	return &ListResult{Projects: projects, Total: total}, nil
}

func (s *ProjectService) getOwned(ctx context.Context, ownerID, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, ownerID, projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) invalidateListing(ctx context.Context, ownerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	key := fmt.Sprintf(ProjectListKeyPattern, ownerID)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to invalidate project listing cache", "owner_id", ownerID, "error", err)
	}
}

func isDefaultListing(f repositories.ProjectFilters) bool {
	return f.Page == 1 && f.Name == "" && f.Search == "" && f.SortBy == "" &&
		len(f.Status) == 0 &&
		f.IsArchived == nil && f.IsPinned == nil && f.IsFavorite == nil && f.IsShared == nil &&
		f.CreatedAfter == nil && f.CreatedBefore == nil &&
		f.UpdatedAfter == nil && f.UpdatedBefore == nil
}

func validateProjectName(name string) error {
	if name == "" {
		return NewValidationError("name", "name is required")
	}
	if len(name) > MaxProjectNameLength {
		return NewValidationError("name", fmt.Sprintf("must be at most %d characters", MaxProjectNameLength))
	}
	return nil
}

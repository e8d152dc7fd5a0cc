package services

import (
	"context"
	"fmt"

	"github.com/researchmem/researchmem/internal/domain/repositories"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// bulkActionColumns maps a bulk action name to the flag column it sets.
var bulkActionColumns = map[string]string{
	"delete":   "is_deleted",
	"pinned":   "is_pinned",
	"favorite": "is_favorite",
	"shared":   "is_shared",
}

// BulkActionUpdateStatus selects the status path instead of a flag column.
const BulkActionUpdateStatus = "update-status"

// BulkService executes batched mutations across many projects. Every call is
// restricted to the caller's own non-deleted rows first; ids outside that set
// are simply not part of the batch.
type BulkService struct {
	projectRepo repositories.ProjectRepository
}

// NewBulkService creates a new bulk service instance
func NewBulkService(projectRepo repositories.ProjectRepository) *BulkService {
	return &BulkService{projectRepo: projectRepo}
}

// BulkDelete soft-deletes the owned subset of projectIDs in one statement.
// An empty owned subset is a not-found, matching the single-row behavior.
func (s *BulkService) BulkDelete(ctx context.Context, ownerID uuid.UUID, projectIDs []uuid.UUID) (int64, error) {
	if len(projectIDs) == 0 {
		return 0, NewValidationError("project_ids", "at least one project id is required")
	}

	owned, err := s.projectRepo.GetOwnedIDs(ctx, ownerID, projectIDs)
	if err != nil {
		return 0, err
	}
	if len(owned) == 0 {
		return 0, ErrProjectNotFound
	}

	return s.projectRepo.BulkSetFlag(ctx, owned, "is_deleted", true)
}

// BulkUpdateParams contains parameters for a bulk project update
type BulkUpdateParams struct {
	ProjectIDs  []uuid.UUID
	Action      string
	ActionValue bool
	NewStatus   models.ProjectStatus
}

// BulkUpdate sets exactly one field across the owned subset of the listed
// projects, as a single set-based statement. Action picks a flag column;
// anything else applies NewStatus instead, validated against the enum but
// not against the transition table. The call fails only when the action is
// unmapped and no valid NewStatus resolves.
func (s *BulkService) BulkUpdate(ctx context.Context, ownerID uuid.UUID, params BulkUpdateParams) (int64, error) {
	if len(params.ProjectIDs) == 0 {
		return 0, NewValidationError("project_ids", "at least one project id is required")
	}

	column, isFlag := bulkActionColumns[params.Action]
	if !isFlag && !models.ValidProjectStatus(params.NewStatus) {
		if params.Action == BulkActionUpdateStatus {
			return 0, NewValidationError("status", fmt.Sprintf("unknown project status %q", params.NewStatus))
		}
		return 0, NewValidationError("action", fmt.Sprintf("unrecognized action %q and no status to apply", params.Action))
	}

	owned, err := s.projectRepo.GetOwnedIDs(ctx, ownerID, params.ProjectIDs)
	if err != nil {
		return 0, err
	}
	if len(owned) == 0 {
		return 0, ErrProjectNotFound
	}

	if isFlag {
		return s.projectRepo.BulkSetFlag(ctx, owned, column, params.ActionValue)
	}
	return s.projectRepo.BulkSetStatus(ctx, owned, params.NewStatus)
}

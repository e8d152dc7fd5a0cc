package services

import (
	"context"
	"errors"

	"github.com/researchmem/researchmem/internal/domain/repositories"
	"github.com/researchmem/researchmem/internal/domain/statemachine"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// AttachmentService maintains the project/file relation.
//
// Attaching resets processing status: any attachable file is forced back to
// draft as part of the attach. This is a deliberate cross-entity rule, not an
// accident of persistence. The status write and the relation write are two
// statements, not one transaction; a crash between them leaves the file reset
// but unattached.
type AttachmentService struct {
	projectRepo repositories.ProjectRepository
	fileRepo    repositories.FileRepository
}

// NewAttachmentService creates a new attachment service instance
func NewAttachmentService(projectRepo repositories.ProjectRepository, fileRepo repositories.FileRepository) *AttachmentService {
	return &AttachmentService{
		projectRepo: projectRepo,
		fileRepo:    fileRepo,
	}
}

func (s *AttachmentService) Attach(ctx context.Context, ownerID, projectID, fileID uuid.UUID) error {
	project, err := s.getProject(ctx, ownerID, projectID)
	if err != nil {
		return err
	}

	file, err := s.getFile(ctx, ownerID, fileID)
	if err != nil {
		return err
	}

	if !statemachine.CanAttach(file.FileStatus) {
		return &InvalidStateError{Operation: "attach", Status: file.FileStatus}
	}

	if file.FileStatus != models.FileStatusDraft {
		file.FileStatus = models.FileStatusDraft
		if err := s.fileRepo.Update(ctx, file); err != nil {
			return err
		}
	}

	return s.projectRepo.AttachFiles(ctx, project.ID, []models.File{*file})
}

func (s *AttachmentService) Detach(ctx context.Context, ownerID, projectID, fileID uuid.UUID) error {
	project, err := s.getProject(ctx, ownerID, projectID)
	if err != nil {
		return err
	}

	file, err := s.getFile(ctx, ownerID, fileID)
	if err != nil {
		return err
	}

	return s.projectRepo.DetachFiles(ctx, project.ID, []models.File{*file})
}

// BulkAttach checks every file before mutating anything: one pending file
// fails the whole batch with no relation added and no status touched.
func (s *AttachmentService) BulkAttach(ctx context.Context, ownerID, projectID uuid.UUID, fileIDs []uuid.UUID) error {
	if len(fileIDs) == 0 {
		return NewValidationError("file_ids", "at least one file id is required")
	}

	project, err := s.getProject(ctx, ownerID, projectID)
	if err != nil {
		return err
	}

	files, err := s.fileRepo.GetByIDs(ctx, ownerID, fileIDs)
	if err != nil {
		return err
	}
	if len(files) != len(uniqueIDs(fileIDs)) {
		return ErrFileNotFound
	}

	var resetIDs []uuid.UUID
	for i := range files {
		if !statemachine.CanAttach(files[i].FileStatus) {
			return &InvalidStateError{Operation: "attach", Status: files[i].FileStatus}
		}
		if files[i].FileStatus != models.FileStatusDraft {
			resetIDs = append(resetIDs, files[i].ID)
			files[i].FileStatus = models.FileStatusDraft
		}
	}

	if len(resetIDs) > 0 {
		if _, err := s.fileRepo.BulkUpdateStatus(ctx, resetIDs, models.FileStatusDraft); err != nil {
			return err
		}
	}

	return s.projectRepo.AttachFiles(ctx, project.ID, files)
}

// BulkDetach removes the listed relations. Ids that do not resolve are
// silently skipped, unlike BulkAttach.
func (s *AttachmentService) BulkDetach(ctx context.Context, ownerID, projectID uuid.UUID, fileIDs []uuid.UUID) error {
	if len(fileIDs) == 0 {
		return NewValidationError("file_ids", "at least one file id is required")
	}

	project, err := s.getProject(ctx, ownerID, projectID)
	if err != nil {
		return err
	}

	files, err := s.fileRepo.GetByIDs(ctx, ownerID, fileIDs)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	return s.projectRepo.DetachFiles(ctx, project.ID, files)
}

func (s *AttachmentService) ListFiles(ctx context.Context, ownerID, projectID uuid.UUID) ([]models.File, error) {
	project, err := s.getProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	return s.projectRepo.ListFiles(ctx, project.ID)
}

func (s *AttachmentService) getProject(ctx context.Context, ownerID, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, ownerID, projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *AttachmentService) getFile(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	file, err := s.fileRepo.GetByID(ctx, ownerID, fileID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return file, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/researchmem/researchmem/internal/domain/repositories"
	"github.com/researchmem/researchmem/internal/domain/statemachine"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/researchmem/researchmem/pkg/slug"
	"github.com/google/uuid"
)

const (
	// MaxFileNameLength bounds file_name on upload and rename.
	MaxFileNameLength = 255

	// MaxBulkFileIDs bounds a single bulk status update batch.
	MaxBulkFileIDs = 1000
)

// FileService handles upload, metadata and status lifecycle for files.
type FileService struct {
	fileRepo   repositories.FileRepository
	jobRepo    repositories.JobRepository
	storage    BlobStorage
	dispatcher TaskDispatcher
	logger     *slog.Logger
}

// NewFileService creates a new file service instance
func NewFileService(
	fileRepo repositories.FileRepository,
	jobRepo repositories.JobRepository,
	storage BlobStorage,
	dispatcher TaskDispatcher,
	logger *slog.Logger,
) *FileService {
	return &FileService{
		fileRepo:   fileRepo,
		jobRepo:    jobRepo,
		storage:    storage,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// UploadParams contains parameters for file upload
type UploadParams struct {
	OwnerID     uuid.UUID
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
}

// Upload stores the payload bytes first and creates the row only after the
// backend reports success, so a storage failure leaves no File behind.
// A parse job is enqueued fire-and-forget once the row exists.
func (s *FileService) Upload(ctx context.Context, params UploadParams) (*models.File, error) {
	if params.Reader == nil {
		return nil, NewValidationError("file", "no file payload present")
	}
	if params.FileName == "" {
		return nil, NewValidationError("file_name", "file name is required")
	}
	if len(params.FileName) > MaxFileNameLength {
		return nil, NewValidationError("file_name", fmt.Sprintf("must be at most %d characters", MaxFileNameLength))
	}

	stored, err := s.storage.Store(ctx, StoreParams{
		OwnerID:     params.OwnerID,
		Reader:      params.Reader,
		FileName:    params.FileName,
		ContentType: params.ContentType,
		Size:        params.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store file bytes: %w", err)
	}

	id := uuid.New()
	file := &models.File{
		ID:            id,
		UserID:        params.OwnerID,
		Slug:          slug.ForEntity(params.FileName, id),
		FileName:      params.FileName,
		FileType:      params.ContentType,
		FileSize:      params.Size,
		FilePath:      stored.Path,
		FileExtension: extensionOf(params.FileName),
		FileHash:      stored.Hash,
		FileURL:       stored.URL,
		FileStatus:    models.FileStatusDraft,
		FileMetadata:  models.JSONB{},
		FileTags:      models.StringList{},
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, err
	}

	s.scheduleParse(ctx, file.ID)

	return file, nil
}

// scheduleParse records a pending job row and enqueues the work. Failures are
// logged only; the upload has already succeeded from the caller's view.
func (s *FileService) scheduleParse(ctx context.Context, fileID uuid.UUID) {
	job := &models.Job{
		FileID:  &fileID,
		JobType: models.JobTypeParse,
		Status:  models.JobStatusPending,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		s.logger.Error("failed to record parse job", "file_id", fileID, "error", err)
		return
	}
	if err := s.dispatcher.EnqueueParse(ctx, fileID); err != nil {
		s.logger.Error("failed to enqueue parse task", "file_id", fileID, "error", err)
	}
}

// UpdateMetadataParams is a partial update; nil fields are left untouched.
type UpdateMetadataParams struct {
	Name     *string
	Metadata models.JSONB
	Tags     []string
}

func (s *FileService) UpdateMetadata(ctx context.Context, ownerID, fileID uuid.UUID, params UpdateMetadataParams) (*models.File, error) {
	file, err := s.getOwned(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := *params.Name
		if name == "" {
			return nil, NewValidationError("name", "name cannot be empty")
		}
		if len(name) > MaxFileNameLength {
			return nil, NewValidationError("name", fmt.Sprintf("must be at most %d characters", MaxFileNameLength))
		}
		file.FileName = name
	}
	if params.Metadata != nil {
		file.FileMetadata = params.Metadata
	}
	if params.Tags != nil {
		file.FileTags = models.StringList(params.Tags)
	}

	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

// UpdateStatus moves a single file through the transition table. Illegal
// transitions surface a typed error and leave the row untouched.
func (s *FileService) UpdateStatus(ctx context.Context, ownerID, fileID uuid.UUID, target models.FileStatus) (*models.File, error) {
	file, err := s.getOwned(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	next, err := statemachine.FileTransition(file.FileStatus, target)
	if err != nil {
		return nil, err
	}

	file.FileStatus = next
	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

// DownloadResult carries either a byte stream (local backend) or a retrieval
// URL (remote backends). Exactly one of Reader and URL is set.
type DownloadResult struct {
	File   *models.File
	Reader io.ReadCloser
	URL    string
}

func (s *FileService) Download(ctx context.Context, ownerID, fileID uuid.UUID) (*DownloadResult, error) {
	file, err := s.getOwned(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	reader, err := s.storage.Open(ctx, file.FilePath)
	if err == nil {
		return &DownloadResult{File: file, Reader: reader}, nil
	}
	if !errors.Is(err, ErrStreamingUnsupported) {
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}

	url, err := s.storage.URL(ctx, file.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file url: %w", err)
	}
	return &DownloadResult{File: file, URL: url}, nil
}

// BulkUpdateStatus applies one target status to up to MaxBulkFileIDs files in
// a single batched write. Any id that does not resolve to an owned file fails
// the whole batch before anything is written.
//
// Unlike UpdateStatus this path does not consult the transition table; bulk
// callers are trusted to move files anywhere, including out of failed.
func (s *FileService) BulkUpdateStatus(ctx context.Context, ownerID uuid.UUID, fileIDs []uuid.UUID, target models.FileStatus) (int64, error) {
	if len(fileIDs) == 0 {
		return 0, NewValidationError("file_ids", "at least one file id is required")
	}
	if len(fileIDs) > MaxBulkFileIDs {
		return 0, NewValidationError("file_ids", fmt.Sprintf("at most %d ids per batch", MaxBulkFileIDs))
	}
	if !models.ValidFileStatus(target) {
		return 0, NewValidationError("status", fmt.Sprintf("unknown file status %q", target))
	}

	files, err := s.fileRepo.GetByIDs(ctx, ownerID, fileIDs)
	if err != nil {
		return 0, err
	}
	if len(files) != len(uniqueIDs(fileIDs)) {
		return 0, NewValidationError("file_ids", "one or more file ids do not resolve")
	}

	return s.fileRepo.BulkUpdateStatus(ctx, fileIDs, target)
}

func (s *FileService) List(ctx context.Context, ownerID uuid.UUID, filters repositories.FileFilters) ([]models.File, int64, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	return s.fileRepo.List(ctx, ownerID, filters)
}

func (s *FileService) Get(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	return s.getOwned(ctx, ownerID, fileID)
}

// ListJobs returns the processing history for an owned file, newest first.
func (s *FileService) ListJobs(ctx context.Context, ownerID, fileID uuid.UUID) ([]models.Job, error) {
	if _, err := s.getOwned(ctx, ownerID, fileID); err != nil {
		return nil, err
	}
	return s.jobRepo.ListByFile(ctx, fileID)
}

// GetJob returns a single job. Ownership is checked through the job's file.
func (s *FileService) GetJob(ctx context.Context, ownerID, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	if job.FileID == nil {
		return nil, ErrJobNotFound
	}
	if _, err := s.getOwned(ctx, ownerID, *job.FileID); err != nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (s *FileService) getOwned(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	file, err := s.fileRepo.GetByID(ctx, ownerID, fileID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return file, nil
}

func extensionOf(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

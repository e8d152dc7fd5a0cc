package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/researchmem/researchmem/internal/domain/repositories"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/researchmem/researchmem/internal/infrastructure/queue"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Processor is plugged into the asynq worker loop. It owns the Job lifecycle:
// pending -> running -> done|error. The parse and embed bodies are stubs; the
// bookkeeping around them is real.
type Processor struct {
	jobRepo repositories.JobRepository
	logger  *slog.Logger
}

// NewProcessor constructs a worker processor.
func NewProcessor(jobRepo repositories.JobRepository, logger *slog.Logger) *Processor {
	return &Processor{
		jobRepo: jobRepo,
		logger:  logger,
	}
}

// Handler registers the task handlers.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.ParseFileTask, p.handleParse)
	mux.HandleFunc(queue.EmbedFileTask, p.handleEmbed)
	mux.HandleFunc(queue.ChatTask, p.handleChat)
	return mux
}

func (p *Processor) handleParse(ctx context.Context, task *asynq.Task) error {
	return p.runFileJob(ctx, task, models.JobTypeParse)
}

func (p *Processor) handleEmbed(ctx context.Context, task *asynq.Task) error {
	return p.runFileJob(ctx, task, models.JobTypeEmbed)
}

func (p *Processor) handleChat(ctx context.Context, task *asynq.Task) error {
	// Chat turns have no Job row yet; accept and log.
	p.logger.Info("chat task received", "bytes", len(task.Payload()))
	return nil
}

func (p *Processor) runFileJob(ctx context.Context, task *asynq.Task, jobType models.JobType) error {
	var payload queue.FilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	fileID, err := uuid.Parse(payload.FileID)
	if err != nil {
		return fmt.Errorf("invalid file id %q: %w", payload.FileID, err)
	}

	job, err := p.pendingJob(ctx, fileID, jobType)
	if err != nil {
		return err
	}
	if job == nil {
		// Already claimed by a retry or the row never made it; nothing to do.
		p.logger.Warn("no pending job for task", "file_id", fileID, "job_type", jobType)
		return nil
	}

	if err := p.jobRepo.MarkRunning(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}

	if err := p.execute(ctx, fileID, jobType); err != nil {
		if markErr := p.jobRepo.MarkError(ctx, job.ID, err.Error()); markErr != nil {
			p.logger.Error("failed to mark job errored", "job_id", job.ID, "error", markErr)
		}
		return err
	}

	if err := p.jobRepo.MarkDone(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to mark job done: %w", err)
	}

	p.logger.Info("job finished", "job_id", job.ID, "file_id", fileID, "job_type", jobType)
	return nil
}

// execute is the stub work body. Parsing and embedding are not implemented;
// the job accounting around them is what this worker exists for today.
func (p *Processor) execute(ctx context.Context, fileID uuid.UUID, jobType models.JobType) error {
	return nil
}

func (p *Processor) pendingJob(ctx context.Context, fileID uuid.UUID, jobType models.JobType) (*models.Job, error) {
	jobs, err := p.jobRepo.ListByFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	for i := range jobs {
		if jobs[i].JobType == jobType && jobs[i].Status == models.JobStatusPending {
			return &jobs[i], nil
		}
	}
	return nil, nil
}

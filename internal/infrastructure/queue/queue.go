package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/researchmem/researchmem/internal/domain/services"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// ParseFileTask is scheduled each time a file is uploaded.
	ParseFileTask = "file:parse"

	// EmbedFileTask computes embeddings for a parsed file.
	EmbedFileTask = "file:embed"

	// ChatTask runs a chat turn against the stored corpus.
	ChatTask = "chat:run"
)

// FilePayload is serialized into parse and embed tasks.
type FilePayload struct {
	FileID string `json:"file_id"`
}

// Dispatcher enqueues background work through asynq. It satisfies
// services.TaskDispatcher.
type Dispatcher struct {
	client *asynq.Client
}

// NewDispatcher creates a dispatcher on the given Redis connection.
func NewDispatcher(redisAddr, redisPassword string, redisDB int) *Dispatcher {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	return &Dispatcher{client: client}
}

func (d *Dispatcher) EnqueueParse(ctx context.Context, fileID uuid.UUID) error {
	return d.enqueueFileTask(ctx, ParseFileTask, fileID)
}

func (d *Dispatcher) EnqueueEmbed(ctx context.Context, fileID uuid.UUID) error {
	return d.enqueueFileTask(ctx, EmbedFileTask, fileID)
}

func (d *Dispatcher) EnqueueChat(ctx context.Context, payload []byte) error {
	task := asynq.NewTask(ChatTask, payload)
	if _, err := d.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue chat task: %w", err)
	}
	return nil
}

func (d *Dispatcher) enqueueFileTask(ctx context.Context, taskName string, fileID uuid.UUID) error {
	data, err := json.Marshal(FilePayload{FileID: fileID.String()})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(taskName, data)
	if _, err := d.client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", taskName, err)
	}
	return nil
}

func (d *Dispatcher) Close() error {
	return d.client.Close()
}

var _ services.TaskDispatcher = (*Dispatcher)(nil)

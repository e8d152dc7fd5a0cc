package services

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
)

// ErrStreamingUnsupported is returned by Open on backends that only hand out
// retrieval URLs. Callers fall back to URL.
var ErrStreamingUnsupported = errors.New("backend does not support streaming reads")

// External service interfaces that our domain services depend on

// BlobStorage stores raw file bytes and hands back a path/URL/hash triple.
// Backends: local disk, S3-compatible (MinIO), Supabase Storage.
type BlobStorage interface {
	Store(ctx context.Context, params StoreParams) (*StoredObject, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	URL(ctx context.Context, path string) (string, error)
	Delete(ctx context.Context, path string) error
}

// StoreParams contains parameters for storing file bytes
type StoreParams struct {
	OwnerID     uuid.UUID
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
}

// StoredObject is what the backend reports after a successful store.
type StoredObject struct {
	Path string
	URL  string
	Hash string
}

// TaskDispatcher enqueues asynchronous work. Fire-and-forget: an enqueue
// failure is logged by the caller, never surfaced to the API client.
type TaskDispatcher interface {
	EnqueueParse(ctx context.Context, fileID uuid.UUID) error
	EnqueueEmbed(ctx context.Context, fileID uuid.UUID) error
	EnqueueChat(ctx context.Context, payload []byte) error
}

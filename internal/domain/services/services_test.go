package services

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/researchmem/researchmem/internal/infrastructure/repositories/postgresql"
	"github.com/researchmem/researchmem/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/google/uuid"
)

// testEnv wires the services against a real SQLite database and in-memory
// collaborators.
type testEnv struct {
	db         *testutil.TestDB
	storage    *memoryStorage
	dispatcher *stubDispatcher
	cache      *memoryCache

	files       *FileService
	projects    *ProjectService
	attachments *AttachmentService
	bulk        *BulkService
	users       *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	t.Cleanup(func() { db.Cleanup(t) })

	repos := postgresql.NewRepositories(db.DB)
	storage := newMemoryStorage()
	dispatcher := &stubDispatcher{}
	cache := newMemoryCache()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		db:          db,
		storage:     storage,
		dispatcher:  dispatcher,
		cache:       cache,
		files:       NewFileService(repos.FileRepo, repos.JobRepo, storage, dispatcher, logger),
		projects:    NewProjectService(repos.ProjectRepo, cache, logger),
		attachments: NewAttachmentService(repos.ProjectRepo, repos.FileRepo),
		bulk:        NewBulkService(repos.ProjectRepo),
		users: NewUserService(repos.UserRepo, AuthConfig{
			JWTSecret:   "test-secret",
			TokenExpiry: time.Hour,
			Issuer:      "researchmem-test",
		}),
	}
}

// memoryStorage keeps stored payloads in a map and hands out md5 hashes the
// way the real backends do.
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) Store(ctx context.Context, params StoreParams) (*StoredObject, error) {
	data, err := io.ReadAll(params.Reader)
	if err != nil {
		return nil, err
	}

	sum := md5.Sum(data)
	path := fmt.Sprintf("uploads/%s/%s", params.OwnerID, params.FileName)

	m.mu.Lock()
	m.objects[path] = data
	m.mu.Unlock()

	return &StoredObject{
		Path: path,
		URL:  "/files/" + path,
		Hash: hex.EncodeToString(sum[:]),
	}, nil
}

func (m *memoryStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	data, ok := m.objects[path]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("object %s not found", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStorage) URL(ctx context.Context, path string) (string, error) {
	return "/files/" + path, nil
}

func (m *memoryStorage) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	delete(m.objects, path)
	m.mu.Unlock()
	return nil
}

// stubDispatcher records enqueued work instead of talking to a broker.
type stubDispatcher struct {
	mu     sync.Mutex
	parsed []uuid.UUID
}

func (d *stubDispatcher) EnqueueParse(ctx context.Context, fileID uuid.UUID) error {
	d.mu.Lock()
	d.parsed = append(d.parsed, fileID)
	d.mu.Unlock()
	return nil
}

func (d *stubDispatcher) EnqueueEmbed(ctx context.Context, fileID uuid.UUID) error {
	return nil
}

func (d *stubDispatcher) EnqueueChat(ctx context.Context, payload []byte) error {
	return nil
}

func (d *stubDispatcher) parseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.parsed)
}

// memoryCache is a map-backed CacheService without expiry.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case string:
		c.entries[key] = v
	case []byte:
		c.entries[key] = string(v)
	default:
		c.entries[key] = fmt.Sprint(v)
	}
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok, nil
}

func (c *memoryCache) Ping(ctx context.Context) error { return nil }
func (c *memoryCache) Close() error                   { return nil }

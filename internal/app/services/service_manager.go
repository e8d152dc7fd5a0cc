package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/researchmem/researchmem/internal/app/config"
	"github.com/researchmem/researchmem/internal/domain/services"
	"github.com/researchmem/researchmem/internal/infrastructure/cache"
	"github.com/researchmem/researchmem/internal/infrastructure/database"
	"github.com/researchmem/researchmem/internal/infrastructure/queue"
	"github.com/researchmem/researchmem/internal/infrastructure/repositories/postgresql"
	"github.com/researchmem/researchmem/internal/infrastructure/storage/local"
	"github.com/researchmem/researchmem/internal/infrastructure/storage/s3"
	"github.com/researchmem/researchmem/internal/infrastructure/storage/supabase"
)

// ServiceManager owns the infrastructure clients and the domain services
// built on top of them.
type ServiceManager struct {
	Config *config.Config

	// Infrastructure
	DB           *database.DB
	Repositories *postgresql.Repositories
	CacheService services.CacheService
	Storage      services.BlobStorage
	Dispatcher   *queue.Dispatcher

	// Domain services
	FileService       *services.FileService
	ProjectService    *services.ProjectService
	AttachmentService *services.AttachmentService
	BulkService       *services.BulkService
	UserService       *services.UserService
}

// NewServiceManager creates a new service manager
func NewServiceManager(cfg *config.Config, db *database.DB, logger *slog.Logger) (*ServiceManager, error) {
	repos := postgresql.NewRepositories(db)

	cacheService, err := cache.CreateCacheService(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache service: %w", err)
	}

	storage, err := newBlobStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage backend: %w", err)
	}

	dispatcher := queue.NewDispatcher(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)

	sm := &ServiceManager{
		Config:       cfg,
		DB:           db,
		Repositories: repos,
		CacheService: cacheService,
		Storage:      storage,
		Dispatcher:   dispatcher,
	}

	sm.FileService = services.NewFileService(repos.FileRepo, repos.JobRepo, storage, dispatcher, logger)
	sm.ProjectService = services.NewProjectService(repos.ProjectRepo, cacheService, logger)
	sm.AttachmentService = services.NewAttachmentService(repos.ProjectRepo, repos.FileRepo)
	sm.BulkService = services.NewBulkService(repos.ProjectRepo)
	sm.UserService = services.NewUserService(repos.UserRepo, services.AuthConfig{
		JWTSecret:   cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiry,
		Issuer:      cfg.JWT.Issuer,
	})

	return sm, nil
}

func newBlobStorage(cfg *config.Config) (services.BlobStorage, error) {
	switch cfg.Storage.Type {
	case "local", "":
		return local.NewStorageService(cfg.Storage.Path), nil
	case "s3":
		storage, err := s3.NewStorageService(s3.Config{
			Endpoint:  cfg.Storage.S3Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.S3Bucket,
			Region:    cfg.Storage.S3Region,
			UseSSL:    cfg.Storage.S3UseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := storage.EnsureBucket(context.Background()); err != nil {
			return nil, err
		}
		return storage, nil
	case "supabase":
		return supabase.NewStorageService(supabase.Config{
			URL:    cfg.Supabase.URL,
			APIKey: cfg.Supabase.APIKey,
			Bucket: cfg.Supabase.Bucket,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// Health check for all services
func (sm *ServiceManager) HealthCheck() error {
	// Check database
	if err := sm.Repositories.HealthCheck(context.Background()); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Check Redis cache
	if err := sm.CacheService.Ping(context.Background()); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	return nil
}

// Close gracefully shuts down all services
func (sm *ServiceManager) Close() error {
	if err := sm.Dispatcher.Close(); err != nil {
		return fmt.Errorf("failed to close task dispatcher: %w", err)
	}

	if err := sm.CacheService.Close(); err != nil {
		return fmt.Errorf("failed to close cache service: %w", err)
	}

	if err := sm.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

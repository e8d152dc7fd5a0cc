package services

import (
	"context"
	"time"
)

// CacheService interface for caching operations
type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// ProjectListKeyPattern keys the default project listing per owner.
const ProjectListKeyPattern = "project_list:%s"

// ProjectListTTL bounds staleness when an invalidation is missed.
const ProjectListTTL = 5 * time.Minute

package s3

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/researchmem/researchmem/internal/domain/services"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService stores file bytes in an S3-compatible bucket through the
// MinIO client. Retrieval goes through presigned URLs; Open is not supported.
type StorageService struct {
	client *minio.Client
	bucket string
	region string
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// presignedURLExpiry bounds how long a download link stays valid.
const presignedURLExpiry = time.Hour

func NewStorageService(config Config) (*StorageService, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &StorageService{
		client: client,
		bucket: config.Bucket,
		region: config.Region,
	}, nil
}

// EnsureBucket makes sure the bucket exists before use.
func (s *StorageService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("failed to make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

func (s *StorageService) Store(ctx context.Context, params services.StoreParams) (*services.StoredObject, error) {
	fileExt := filepath.Ext(params.FileName)
	objectKey := fmt.Sprintf("%s/%s%s", params.OwnerID.String(), uuid.New().String(), fileExt)

	hasher := md5.New()
	opts := minio.PutObjectOptions{ContentType: params.ContentType}
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, io.TeeReader(params.Reader, hasher), params.Size, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}

	downloadURL, err := s.URL(ctx, objectKey)
	if err != nil {
		return nil, err
	}

	return &services.StoredObject{
		Path: objectKey,
		URL:  downloadURL,
		Hash: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (s *StorageService) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return nil, services.ErrStreamingUnsupported
}

func (s *StorageService) URL(ctx context.Context, path string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, presignedURLExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}
	return u.String(), nil
}

func (s *StorageService) Delete(ctx context.Context, path string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

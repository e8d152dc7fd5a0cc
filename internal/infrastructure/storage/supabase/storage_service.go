package supabase

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"

	"github.com/researchmem/researchmem/internal/domain/services"
	"github.com/google/uuid"
	supabase "github.com/nedpals/supabase-go"
)

// StorageService stores file bytes in a Supabase Storage bucket. Retrieval
// goes through signed URLs; Open is not supported.
type StorageService struct {
	client     *supabase.Client
	bucketName string
}

type Config struct {
	URL    string
	APIKey string
	Bucket string
}

// signedURLExpirySeconds is one hour, matching the default session length.
const signedURLExpirySeconds = 3600

func NewStorageService(config Config) (*StorageService, error) {
	client := supabase.CreateClient(config.URL, config.APIKey)
	if client == nil {
		return nil, fmt.Errorf("failed to create Supabase client")
	}

	return &StorageService{
		client:     client,
		bucketName: config.Bucket,
	}, nil
}

func (s *StorageService) Store(ctx context.Context, params services.StoreParams) (*services.StoredObject, error) {
	// Generate unique file path
	fileExt := filepath.Ext(params.FileName)
	fileName := fmt.Sprintf("%s/%s%s", params.OwnerID.String(), uuid.New().String(), fileExt)

	// The client needs the full content in memory anyway, so hash it here
	content, err := io.ReadAll(params.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	sum := md5.Sum(content)

	fileOptions := &supabase.FileUploadOptions{
		ContentType: params.ContentType,
		Upsert:      false,
	}

	response := s.client.Storage.From(s.bucketName).Upload(fileName, bytes.NewReader(content), fileOptions)
	if response.Key == "" {
		return nil, fmt.Errorf("failed to upload file to Supabase: %s", response.Message)
	}

	url, err := s.URL(ctx, fileName)
	if err != nil {
		return nil, err
	}

	return &services.StoredObject{
		Path: fileName,
		URL:  url,
		Hash: hex.EncodeToString(sum[:]),
	}, nil
}

func (s *StorageService) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return nil, services.ErrStreamingUnsupported
}

func (s *StorageService) URL(ctx context.Context, path string) (string, error) {
	signedURL := s.client.Storage.From(s.bucketName).CreateSignedUrl(path, signedURLExpirySeconds)
	if signedURL.SignedUrl == "" {
		return "", fmt.Errorf("failed to generate signed URL")
	}

	return signedURL.SignedUrl, nil
}

func (s *StorageService) Delete(ctx context.Context, path string) error {
	response := s.client.Storage.From(s.bucketName).Remove([]string{path})
	if response.Key == "" {
		return fmt.Errorf("failed to delete file from Supabase: %s", response.Message)
	}

	return nil
}

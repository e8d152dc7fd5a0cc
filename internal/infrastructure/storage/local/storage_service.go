package local

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/researchmem/researchmem/internal/domain/services"
	"github.com/google/uuid"
)

// StorageService stores file bytes on local disk, one directory per owner.
// Development backend; Open streams straight from disk.
type StorageService struct {
	basePath string
}

func NewStorageService(basePath string) *StorageService {
	return &StorageService{
		basePath: basePath,
	}
}

func (s *StorageService) Store(ctx context.Context, params services.StoreParams) (*services.StoredObject, error) {
	// Create owner directory if it doesn't exist
	ownerDir := filepath.Join(s.basePath, params.OwnerID.String())
	if err := os.MkdirAll(ownerDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create owner directory: %w", err)
	}

	// Generate unique filename
	fileExt := filepath.Ext(params.FileName)
	fileName := fmt.Sprintf("%s%s", uuid.New().String(), fileExt)
	filePath := filepath.Join(ownerDir, fileName)

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	// Hash the content while writing it
	hasher := md5.New()
	if _, err := io.Copy(file, io.TeeReader(params.Reader, hasher)); err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to write file content: %w", err)
	}

	relativePath := filepath.Join(params.OwnerID.String(), fileName)
	return &services.StoredObject{
		Path: relativePath,
		URL:  fmt.Sprintf("/api/v1/files/serve/%s", relativePath),
		Hash: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (s *StorageService) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, path)

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

func (s *StorageService) URL(ctx context.Context, path string) (string, error) {
	// Local files are served by the application itself
	return fmt.Sprintf("/api/v1/files/serve/%s", path), nil
}

func (s *StorageService) Delete(ctx context.Context, path string) error {
	fullPath := filepath.Join(s.basePath, path)

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

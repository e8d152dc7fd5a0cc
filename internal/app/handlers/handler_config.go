package handlers

import (
	"os"
	"strconv"
	"strings"
)

// HandlerConfig provides environment-aware configuration for handlers
type HandlerConfig struct {
	// Pagination settings
	MaxPageSize     int `json:"max_page_size"`
	DefaultPageSize int `json:"default_page_size"`

	// File upload settings
	MaxFileSize      int64    `json:"max_file_size"`
	AllowedFileTypes []string `json:"allowed_file_types"`

	// Error handling settings
	EnableDebugErrors bool `json:"enable_debug_errors"`

	// Environment
	Environment string `json:"environment"`
}

// NewHandlerConfig creates a new handler configuration with environment-specific defaults
func NewHandlerConfig() *HandlerConfig {
	config := &HandlerConfig{
		MaxPageSize:       100,
		DefaultPageSize:   20,
		MaxFileSize:       100 * 1024 * 1024, // 100MB
		AllowedFileTypes:  []string{"pdf", "doc", "docx", "txt", "md", "jpg", "jpeg", "png"},
		EnableDebugErrors: false,
		Environment:       "production",
	}

	config.loadFromEnv()
	config.applyEnvironmentDefaults()

	return config
}

func (c *HandlerConfig) loadFromEnv() {
	if val := os.Getenv("MAX_PAGE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.MaxPageSize = parsed
		}
	}

	if val := os.Getenv("DEFAULT_PAGE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.DefaultPageSize = parsed
		}
	}

	if val := os.Getenv("MAX_FILE_SIZE"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.MaxFileSize = parsed
		}
	}

	if val := os.Getenv("ALLOWED_FILE_TYPES"); val != "" {
		c.AllowedFileTypes = strings.Split(val, ",")
	}

	if val := os.Getenv("ENABLE_DEBUG_ERRORS"); val != "" {
		c.EnableDebugErrors = val == "true"
	}

	if val := os.Getenv("ENVIRONMENT"); val != "" {
		c.Environment = val
	}
}

func (c *HandlerConfig) applyEnvironmentDefaults() {
	switch c.Environment {
	case "development", "dev":
		c.EnableDebugErrors = true

	case "test", "testing":
		c.EnableDebugErrors = true

	case "production", "prod":
		c.EnableDebugErrors = false
		if c.MaxPageSize > 100 {
			c.MaxPageSize = 100
		}
	}
}

// ValidatePageSize ensures page size is within acceptable limits
func (c *HandlerConfig) ValidatePageSize(pageSize int) int {
	if pageSize < 1 {
		return c.DefaultPageSize
	}
	if pageSize > c.MaxPageSize {
		return c.MaxPageSize
	}
	return pageSize
}

// ValidateFileSize checks if file size is acceptable
func (c *HandlerConfig) ValidateFileSize(size int64) bool {
	return size <= c.MaxFileSize
}

// ValidateFileExtension checks if the file extension is allowed
func (c *HandlerConfig) ValidateFileExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, allowed := range c.AllowedFileTypes {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

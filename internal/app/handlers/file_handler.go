package handlers

import (
	"path/filepath"

	"github.com/researchmem/researchmem/internal/domain/repositories"
	"github.com/researchmem/researchmem/internal/domain/services"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// fileSortColumns is the allowlist for file listing order.
var fileSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"file_name":  true,
	"file_size":  true,
}

// FileHandler handles upload, metadata, status and download endpoints
type FileHandler struct {
	*BaseHandler
	fileService *services.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{
		BaseHandler: NewBaseHandler(),
		fileService: fileService,
	}
}

// Upload accepts a multipart file and registers it
func (h *FileHandler) Upload(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondBadRequest(c, "No file payload present")
		return
	}

	if !h.config.ValidateFileSize(fileHeader.Size) {
		h.RespondBadRequest(c, "File exceeds the maximum allowed size")
		return
	}
	if !h.config.ValidateFileExtension(filepath.Ext(fileHeader.Filename)) {
		h.RespondBadRequest(c, "File type is not allowed")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.RespondInternalError(c, "Failed to read upload", err.Error())
		return
	}
	defer src.Close()

	file, err := h.fileService.Upload(c.Request.Context(), services.UploadParams{
		OwnerID:     userID,
		Reader:      src,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, gin.H{"file": file})
}

// List returns the owner's files with status/extension/search facets
func (h *FileHandler) List(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	page, pageSize := h.ParsePagination(c)
	sortBy, sortDesc := h.ParseSorting(c, "created_at")
	if !fileSortColumns[sortBy] {
		sortBy = "created_at"
	}

	filters := repositories.FileFilters{
		ListParams: repositories.ListParams{
			Page:     page,
			PageSize: pageSize,
			SortBy:   sortBy,
			SortDesc: sortDesc,
			Search:   c.Query("search"),
		},
		Extension: c.Query("extension"),
		Tag:       c.Query("tag"),
	}
	if status := c.Query("status"); status != "" {
		filters.Status = []models.FileStatus{models.FileStatus(status)}
	}

	files, total, err := h.fileService.List(c.Request.Context(), userID, filters)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{
		"files":    files,
		"total":    total,
		"page":     page,
		"per_page": pageSize,
	})
}

// Get returns a single file
func (h *FileHandler) Get(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	fileID, ok := h.ValidateUUID(c, "file_id", c.Param("id"))
	if !ok {
		return
	}

	file, err := h.fileService.Get(c.Request.Context(), userID, fileID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"file": file})
}

type updateMetadataRequest struct {
	Name     *string                `json:"name"`
	Metadata map[string]interface{} `json:"metadata"`
	Tags     []string               `json:"tags"`
}

// UpdateMetadata partially updates name, metadata and tags
func (h *FileHandler) UpdateMetadata(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	fileID, ok := h.ValidateUUID(c, "file_id", c.Param("id"))
	if !ok {
		return
	}

	var req updateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	file, err := h.fileService.UpdateMetadata(c.Request.Context(), userID, fileID, services.UpdateMetadataParams{
		Name:     req.Name,
		Metadata: models.JSONB(req.Metadata),
		Tags:     req.Tags,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"file": file})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves one file through the transition table
func (h *FileHandler) UpdateStatus(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	fileID, ok := h.ValidateUUID(c, "file_id", c.Param("id"))
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	file, err := h.fileService.UpdateStatus(c.Request.Context(), userID, fileID, models.FileStatus(req.Status))
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"file": file})
}

type bulkUpdateStatusRequest struct {
	FileIDs []uuid.UUID `json:"file_ids" binding:"required"`
	Status  string      `json:"status" binding:"required"`
}

// BulkUpdateStatus applies one status to a batch of files
func (h *FileHandler) BulkUpdateStatus(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req bulkUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	affected, err := h.fileService.BulkUpdateStatus(c.Request.Context(), userID, req.FileIDs, models.FileStatus(req.Status))
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"updated": affected})
}

// Download streams the bytes when the backend supports it, otherwise
// redirects to a retrieval URL.
func (h *FileHandler) Download(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	fileID, ok := h.ValidateUUID(c, "file_id", c.Param("id"))
	if !ok {
		return
	}

	result, err := h.fileService.Download(c.Request.Context(), userID, fileID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	if result.Reader != nil {
		defer result.Reader.Close()
		c.Header("Content-Disposition", `attachment; filename="`+result.File.FileName+`"`)
		c.DataFromReader(200, result.File.FileSize, result.File.FileType, result.Reader, nil)
		return
	}

	c.Redirect(302, result.URL)
}

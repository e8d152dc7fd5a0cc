package handlers

import (
	"context"

	"github.com/researchmem/researchmem/internal/domain/repositories"
	"github.com/researchmem/researchmem/internal/domain/services"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// projectSortColumns is the allowlist for project listing order.
var projectSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// ProjectHandler handles project CRUD, flags, attachments and bulk operations
type ProjectHandler struct {
	*BaseHandler
	projectService    *services.ProjectService
	attachmentService *services.AttachmentService
	bulkService       *services.BulkService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(
	projectService *services.ProjectService,
	attachmentService *services.AttachmentService,
	bulkService *services.BulkService,
) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler:       NewBaseHandler(),
		projectService:    projectService,
		attachmentService: attachmentService,
		bulkService:       bulkService,
	}
}

type createProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// Create registers a single project
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), userID, services.CreateProjectParams{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectStatus(req.Status),
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, gin.H{"project": project})
}

type bulkCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Count       int    `json:"count" binding:"required"`
}

// BulkCreate registers up to 100 numbered projects in one batch
func (h *ProjectHandler) BulkCreate(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req bulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	created, err := h.projectService.BulkCreate(c.Request.Context(), userID, services.BulkCreateParams{
		BaseName:    req.Name,
		Description: req.Description,
		Status:      models.ProjectStatus(req.Status),
		Count:       req.Count,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, gin.H{"created": created})
}

// List returns the owner's projects under the query facets
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	page, pageSize := h.ParsePagination(c)
	sortBy, sortDesc := h.ParseSorting(c, "created_at")
	if !projectSortColumns[sortBy] {
		sortBy = "created_at"
	}

	filters := repositories.ProjectFilters{
		ListParams: repositories.ListParams{
			Page:     page,
			PageSize: pageSize,
			SortBy:   sortBy,
			SortDesc: sortDesc,
			Search:   c.Query("search"),
		},
		Name:          c.Query("name"),
		IsArchived:    getBoolPtrParam(c, "is_archived"),
		IsPinned:      getBoolPtrParam(c, "is_pinned"),
		IsFavorite:    getBoolPtrParam(c, "is_favorite"),
		IsShared:      getBoolPtrParam(c, "is_shared"),
		CreatedAfter:  getTimeParam(c, "created_after"),
		CreatedBefore: getTimeParam(c, "created_before"),
		UpdatedAfter:  getTimeParam(c, "updated_after"),
		UpdatedBefore: getTimeParam(c, "updated_before"),
	}
	if status := c.Query("status"); status != "" {
		filters.Status = []models.ProjectStatus{models.ProjectStatus(status)}
	}

	result, err := h.projectService.List(c.Request.Context(), userID, filters)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{
		"projects": result.Projects,
		"total":    result.Total,
		"page":     page,
		"per_page": pageSize,
	})
}

// Pinned, Favorites, Shared and Archived are convenience listings.

func (h *ProjectHandler) Pinned(c *gin.Context) {
	h.flagListing(c, h.projectService.Pinned)
}

func (h *ProjectHandler) Favorites(c *gin.Context) {
	h.flagListing(c, h.projectService.Favorites)
}

func (h *ProjectHandler) Shared(c *gin.Context) {
	h.flagListing(c, h.projectService.Shared)
}

func (h *ProjectHandler) Archived(c *gin.Context) {
	h.flagListing(c, h.projectService.Archived)
}

func (h *ProjectHandler) flagListing(c *gin.Context, list func(ctx context.Context, ownerID uuid.UUID) (*services.ListResult, error)) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	result, err := list(c.Request.Context(), userID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{
		"projects": result.Projects,
		"total":    result.Total,
	})
}

// Get returns a single project
func (h *ProjectHandler) Get(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	projectID, ok := h.ValidateUUID(c, "project_id", c.Param("id"))
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), userID, projectID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"project": project})
}

// Toggle endpoints flip one flag each.

func (h *ProjectHandler) TogglePin(c *gin.Context) {
	h.toggle(c, h.projectService.TogglePin)
}

func (h *ProjectHandler) ToggleFavorite(c *gin.Context) {
	h.toggle(c, h.projectService.ToggleFavorite)
}

func (h *ProjectHandler) ToggleShare(c *gin.Context) {
	h.toggle(c, h.projectService.ToggleShare)
}

// Lifecycle endpoints move the project through the status table.

func (h *ProjectHandler) Archive(c *gin.Context) {
	h.toggle(c, h.projectService.Archive)
}

func (h *ProjectHandler) Unarchive(c *gin.Context) {
	h.toggle(c, h.projectService.Unarchive)
}

func (h *ProjectHandler) Publish(c *gin.Context) {
	h.toggle(c, h.projectService.Publish)
}

func (h *ProjectHandler) Unpublish(c *gin.Context) {
	h.toggle(c, h.projectService.Unpublish)
}

func (h *ProjectHandler) toggle(c *gin.Context, op func(ctx context.Context, ownerID, projectID uuid.UUID) (*models.Project, error)) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	projectID, ok := h.ValidateUUID(c, "project_id", c.Param("id"))
	if !ok {
		return
	}

	project, err := op(c.Request.Context(), userID, projectID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"project": project})
}

// UpdateStatus moves the project to an explicit target status
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	projectID, ok := h.ValidateUUID(c, "project_id", c.Param("id"))
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	project, err := h.projectService.UpdateStatus(c.Request.Context(), userID, projectID, models.ProjectStatus(req.Status))
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"project": project})
}

// Delete soft-deletes the project
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	projectID, ok := h.ValidateUUID(c, "project_id", c.Param("id"))
	if !ok {
		return
	}

	if err := h.projectService.SoftDelete(c.Request.Context(), userID, projectID); err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"deleted": true})
}

type attachRequest struct {
	FileID uuid.UUID `json:"file_id" binding:"required"`
}

// Attach adds one file to the project
func (h *ProjectHandler) Attach(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	projectID, ok := h.ValidateUUID(c, "project_id", c.Param("id"))
	if !ok {
		return
	}

	var req attachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	if err := h.attachmentService.Attach(c.Request.Context(), userID, projectID, req.FileID); err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"attached": true})
}

// Detach removes one file from the project
func (h *ProjectHandler) Detach(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	projectID, ok := h.ValidateUUID(c, "project_id", c.Param("id"))
	if !ok {
		return
	}

	fileID, ok := h.ValidateUUID(c, "file_id", c.Param("file_id"))
	if !ok {
		return
	}

	if err := h.attachmentService.Detach(c.Request.Context(), userID, projectID, fileID); err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"detached": true})
}

type bulkFilesRequest struct {
	FileIDs []uuid.UUID `json:"file_ids" binding:"required"`
}

// BulkAttach adds a batch of files, all or nothing
func (h *ProjectHandler) BulkAttach(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	projectID, ok := h.ValidateUUID(c, "project_id", c.Param("id"))
	if !ok {
		return
	}

	var req bulkFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	if err := h.attachmentService.BulkAttach(c.Request.Context(), userID, projectID, req.FileIDs); err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"attached": len(req.FileIDs)})
}

// BulkDetach removes a batch of files, skipping unknown ids
func (h *ProjectHandler) BulkDetach(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	projectID, ok := h.ValidateUUID(c, "project_id", c.Param("id"))
	if !ok {
		return
	}

	var req bulkFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	if err := h.attachmentService.BulkDetach(c.Request.Context(), userID, projectID, req.FileIDs); err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"detached": true})
}

// ListFiles returns the project's attached files
func (h *ProjectHandler) ListFiles(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	projectID, ok := h.ValidateUUID(c, "project_id", c.Param("id"))
	if !ok {
		return
	}

	files, err := h.attachmentService.ListFiles(c.Request.Context(), userID, projectID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"files": files})
}

type bulkDeleteRequest struct {
	ProjectIDs []uuid.UUID `json:"project_ids" binding:"required"`
}

// BulkDelete soft-deletes the owned subset of the listed projects
func (h *ProjectHandler) BulkDelete(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	affected, err := h.bulkService.BulkDelete(c.Request.Context(), userID, req.ProjectIDs)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"deleted": affected})
}

type bulkUpdateRequest struct {
	ProjectIDs  []uuid.UUID `json:"project_ids" binding:"required"`
	Action      string      `json:"action" binding:"required"`
	ActionValue bool        `json:"action_value"`
	NewStatus   string      `json:"new_status"`
}

// BulkUpdate sets one flag or the status across a batch of projects
func (h *ProjectHandler) BulkUpdate(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	affected, err := h.bulkService.BulkUpdate(c.Request.Context(), userID, services.BulkUpdateParams{
		ProjectIDs:  req.ProjectIDs,
		Action:      req.Action,
		ActionValue: req.ActionValue,
		NewStatus:   models.ProjectStatus(req.NewStatus),
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"updated": affected})
}

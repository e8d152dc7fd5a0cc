package handlers

import (
	"github.com/researchmem/researchmem/internal/domain/services"
	"github.com/gin-gonic/gin"
)

// JobHandler exposes read-only access to background processing jobs
type JobHandler struct {
	*BaseHandler
	fileService *services.FileService
}

// NewJobHandler creates a new job handler
func NewJobHandler(fileService *services.FileService) *JobHandler {
	return &JobHandler{
		BaseHandler: NewBaseHandler(),
		fileService: fileService,
	}
}

// Get returns a single job
func (h *JobHandler) Get(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	jobID, ok := h.ValidateUUID(c, "job_id", c.Param("id"))
	if !ok {
		return
	}

	job, err := h.fileService.GetJob(c.Request.Context(), userID, jobID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"job": job})
}

// ListByFile returns a file's processing history, newest first
func (h *JobHandler) ListByFile(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	fileID, ok := h.ValidateUUID(c, "file_id", c.Param("id"))
	if !ok {
		return
	}

	jobs, err := h.fileService.ListJobs(c.Request.Context(), userID, fileID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"jobs": jobs})
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/reelcraft/portal/backend/internal/middleware"
	"github.com/reelcraft/portal/backend/internal/services"
	"github.com/reelcraft/portal/backend/pkg/response"
)

type ProjectFileHandler struct {
	fileService *services.ProjectFileService
	store       *services.FileStore
}

func NewProjectFileHandler(fileService *services.ProjectFileService, store *services.FileStore) *ProjectFileHandler {
	return &ProjectFileHandler{fileService: fileService, store: store}
}

// List returns the reference files of a project
// GET /api/projects/:id/files
func (h *ProjectFileHandler) List(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	files, err := h.fileService.List(middleware.GetUserID(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"items": files})
}

// Upload attaches a reference file to a project
// POST /api/projects/:id/files
func (h *ProjectFileHandler) Upload(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	file, err := h.fileService.Upload(middleware.GetUserID(c), projectID, header)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, file)
}

// Delete removes a project file
// DELETE /api/files/:id
func (h *ProjectFileHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.fileService.Delete(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "file deleted successfully"})
}

// Download streams a project file
// GET /api/files/:id/download
func (h *ProjectFileHandler) Download(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	file, err := h.fileService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Project files follow project visibility.
	if _, err := h.fileService.List(middleware.GetUserID(c), file.ProjectID); err != nil {
		response.Error(c, err)
		return
	}

	path, err := h.store.Path(file.StorageKey)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(path, file.FileName)
}

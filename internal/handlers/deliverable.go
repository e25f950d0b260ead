package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reelcraft/portal/backend/internal/authz"
	"github.com/reelcraft/portal/backend/internal/middleware"
	"github.com/reelcraft/portal/backend/internal/models"
	"github.com/reelcraft/portal/backend/internal/services"
	"github.com/reelcraft/portal/backend/pkg/response"
	"gorm.io/gorm"
)

type DeliverableHandler struct {
	deliverableService *services.DeliverableService
	store              *services.FileStore
	db                 *gorm.DB
}

func NewDeliverableHandler(db *gorm.DB, engine *authz.Engine, deliverableService *services.DeliverableService, store *services.FileStore) *DeliverableHandler {
	return &DeliverableHandler{
		deliverableService: deliverableService,
		store:              store,
		db:                 db,
	}
}

// ListByProject returns the deliverables of a project the caller may see
// GET /api/projects/:id/deliverables
func (h *DeliverableHandler) ListByProject(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	items, err := h.deliverableService.ListByProject(middleware.GetUserID(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

// GetByID returns a single deliverable
// GET /api/deliverables/:id
func (h *DeliverableHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	deliverable, err := h.deliverableService.GetByID(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, deliverable)
}

// Create adds a deliverable to a project
// POST /api/projects/:id/deliverables
func (h *DeliverableHandler) Create(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.CreateDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	deliverable, err := h.deliverableService.Create(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, deliverable)
}

// Update edits deliverable metadata
// PUT /api/deliverables/:id
func (h *DeliverableHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	deliverable, err := h.deliverableService.Update(middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, deliverable)
}

// Delete removes a deliverable
// DELETE /api/deliverables/:id
func (h *DeliverableHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.deliverableService.Delete(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "deliverable deleted successfully"})
}

// StartWork moves a pending deliverable into production
// POST /api/deliverables/:id/start
func (h *DeliverableHandler) StartWork(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	deliverable, err := h.deliverableService.StartWork(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, deliverable)
}

// ResumeWork restarts production after a revision request or rejection
// POST /api/deliverables/:id/resume
func (h *DeliverableHandler) ResumeWork(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	deliverable, err := h.deliverableService.ResumeWork(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, deliverable)
}

// UploadBeta uploads a watermarked preview file
// POST /api/deliverables/:id/beta
func (h *DeliverableHandler) UploadBeta(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	var taskID uint
	if raw := c.PostForm("task_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.BadRequest(c, "invalid task_id")
			return
		}
		taskID = uint(parsed)
	}

	meta, err := h.store.Save(header)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.deliverableService.UploadBeta(middleware.GetUserID(c), id, taskID, meta)
	if err != nil {
		h.store.Remove(meta.StorageKey)
		response.Error(c, err)
		return
	}
	response.Created(c, file)
}

// SubmitForApproval puts a beta-ready deliverable in front of the client
// POST /api/deliverables/:id/submit
func (h *DeliverableHandler) SubmitForApproval(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	deliverable, err := h.deliverableService.SubmitForApproval(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, deliverable)
}

type decisionRequest struct {
	Note string `json:"note"`
}

// Approve records the client's approval
// POST /api/deliverables/:id/approve
func (h *DeliverableHandler) Approve(c *gin.Context) {
	h.decide(c, h.deliverableService.Approve)
}

// RequestRevision records a revision request
// POST /api/deliverables/:id/request-revision
func (h *DeliverableHandler) RequestRevision(c *gin.Context) {
	h.decide(c, h.deliverableService.RequestRevision)
}

// Reject records a rejection
// POST /api/deliverables/:id/reject
func (h *DeliverableHandler) Reject(c *gin.Context) {
	h.decide(c, h.deliverableService.Reject)
}

func (h *DeliverableHandler) decide(c *gin.Context, fn func(uint, uint, string) (*models.Deliverable, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req decisionRequest
	c.ShouldBindJSON(&req)

	deliverable, err := fn(middleware.GetUserID(c), id, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, deliverable)
}

// DeliverFinal uploads the final master and completes the deliverable
// POST /api/deliverables/:id/final
func (h *DeliverableHandler) DeliverFinal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	meta, err := h.store.Save(header)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.deliverableService.DeliverFinal(middleware.GetUserID(c), id, meta)
	if err != nil {
		h.store.Remove(meta.StorageKey)
		response.Error(c, err)
		return
	}
	response.Created(c, file)
}

// ListFiles returns the files of a deliverable the caller may reach
// GET /api/deliverables/:id/files
func (h *DeliverableHandler) ListFiles(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	files, err := h.deliverableService.ListFiles(middleware.GetUserID(c), id, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"items": files})
}

// DownloadFile streams one deliverable file if the caller may access it
// GET /api/deliverables/:id/files/:fileId/download
func (h *DeliverableHandler) DownloadFile(c *gin.Context) {
	deliverableID, ok := parseID(c, "id")
	if !ok {
		return
	}
	fileID, ok := parseID(c, "fileId")
	if !ok {
		return
	}

	var file models.DeliverableFile
	if err := h.db.Where("id = ? AND deliverable_id = ?", fileID, deliverableID).First(&file).Error; err != nil {
		response.NotFound(c, "file not found")
		return
	}

	if err := h.deliverableService.AuthorizeFileDownload(middleware.GetUserID(c), &file, time.Now()); err != nil {
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

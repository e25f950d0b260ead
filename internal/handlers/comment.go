package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/reelcraft/portal/backend/internal/authz"
	"github.com/reelcraft/portal/backend/internal/middleware"
	"github.com/reelcraft/portal/backend/internal/services"
	"github.com/reelcraft/portal/backend/pkg/response"
	"gorm.io/gorm"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(db *gorm.DB, engine *authz.Engine) *CommentHandler {
	return &CommentHandler{
		commentService: services.NewCommentService(db, engine),
	}
}

// List returns the comment thread of a deliverable
// GET /api/deliverables/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	deliverableID, ok := parseID(c, "id")
	if !ok {
		return
	}

	comments, err := h.commentService.List(middleware.GetUserID(c), deliverableID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"items": comments})
}

// Create adds a comment to a deliverable
// POST /api/deliverables/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	deliverableID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Create(middleware.GetUserID(c), deliverableID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// Delete removes a comment
// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "comment deleted successfully"})
}

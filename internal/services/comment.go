package services

import (
	"github.com/reelcraft/portal/backend/internal/authz"
	"github.com/reelcraft/portal/backend/internal/models"
	"github.com/reelcraft/portal/backend/pkg/response"
	"gorm.io/gorm"
)

// CommentService handles feedback threads on deliverables. Commenting
// shares the visibility gate: anyone who can see a deliverable can
// comment on it.
type CommentService struct {
	db     *gorm.DB
	engine *authz.Engine
}

func NewCommentService(db *gorm.DB, engine *authz.Engine) *CommentService {
	return &CommentService{db: db, engine: engine}
}

type CreateCommentRequest struct {
	Body     string `json:"body" binding:"required"`
	Timecode string `json:"timecode"`
}

func (s *CommentService) Create(actorID, deliverableID uint, req *CreateCommentRequest) (*models.Comment, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	_, deliverableSnap, _, projectSnap, err := loadDeliverableSnapshot(s.db, deliverableID)
	if err != nil {
		return nil, response.NewNotFound("deliverable not found")
	}

	areq := authz.Request{User: actor, Project: projectSnap, Deliverable: deliverableSnap}
	if reason := s.engine.ExplainDenial(authz.ActionComment, areq); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	comment := models.Comment{
		DeliverableID: deliverableID,
		AuthorID:      actorID,
		Body:          req.Body,
		Timecode:      req.Timecode,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	s.db.Preload("Author").First(&comment, comment.ID)
	return &comment, nil
}

// List returns the comments of a deliverable, oldest first, provided the
// actor can view the deliverable itself.
func (s *CommentService) List(actorID, deliverableID uint) ([]models.Comment, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	_, deliverableSnap, _, projectSnap, err := loadDeliverableSnapshot(s.db, deliverableID)
	if err != nil {
		return nil, response.NewNotFound("deliverable not found")
	}

	areq := authz.Request{User: actor, Project: projectSnap, Deliverable: deliverableSnap}
	if reason := s.engine.ExplainDenial(authz.ActionViewDeliverable, areq); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	var comments []models.Comment
	err = s.db.Preload("Author").
		Where("deliverable_id = ?", deliverableID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete removes a comment. Authors may delete their own; managers may
// delete any comment on a project they run.
func (s *CommentService) Delete(actorID, commentID uint) error {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return err
	}

	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		return response.NewNotFound("comment not found")
	}

	if comment.AuthorID != actorID {
		switch actor.Role {
		case authz.RoleSuperAdmin, authz.RoleProjectManager:
		default:
			return response.NewForbidden(authz.ReasonDenied)
		}
	}

	return s.db.Delete(&models.Comment{}, commentID).Error
}

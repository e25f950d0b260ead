package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/reelcraft/portal/backend/internal/authz"
	"github.com/reelcraft/portal/backend/internal/models"
	"github.com/reelcraft/portal/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db       *gorm.DB
	engine   *authz.Engine
	notifier *NotificationService
}

func NewProjectService(db *gorm.DB, engine *authz.Engine) *ProjectService {
	return &ProjectService{
		db:       db,
		engine:   engine,
		notifier: NewNotificationService(db),
	}
}

type ProjectListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Status   string `form:"status"`
	Search   string `form:"search"`
}

type ProjectListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Project `json:"items"`
}

// List returns the projects visible to the actor. Internal staff see
// everything except that archived projects stay admin-only; clients see
// only projects they are a member of, and never drafts.
func (s *ProjectService) List(actorID uint, req *ProjectListRequest) (*ProjectListResponse, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Project{})

	if authz.IsClient(actor) {
		query = query.
			Joins("JOIN project_members ON project_members.project_id = projects.id").
			Where("project_members.user_id = ?", actorID).
			Where("projects.status NOT IN ?", []string{
				string(authz.ProjectDraft), string(authz.ProjectArchived),
			})
	} else if actor.Role != authz.RoleSuperAdmin {
		query = query.Where("projects.status <> ?", string(authz.ProjectArchived))
	}

	if req.Status != "" {
		query = query.Where("projects.status = ?", req.Status)
	}
	if req.Search != "" {
		query = query.Where("projects.name LIKE ?", "%"+req.Search+"%")
	}

	var total int64
	query.Count(&total)

	var items []models.Project
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("projects.created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &ProjectListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// GetByID returns a project if the actor may see it.
func (s *ProjectService) GetByID(actorID, projectID uint) (*models.Project, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.Preload("Members").Preload("Members.User").First(&project, projectID).Error; err != nil {
		return nil, response.NewNotFound("project not found")
	}

	if err := s.checkProjectVisible(actor, &project); err != nil {
		return nil, err
	}

	return &project, nil
}

func (s *ProjectService) checkProjectVisible(actor *authz.User, project *models.Project) error {
	status := authz.ProjectStatus(project.Status)

	if status == authz.ProjectArchived && actor.Role != authz.RoleSuperAdmin {
		return response.NewForbidden("Archived projects are only accessible to administrators")
	}
	if authz.IsClient(actor) {
		if status == authz.ProjectDraft {
			return response.NewForbidden("This project is still being set up")
		}
		if !s.isMember(actor.ID, project.ID) {
			return response.NewNotFound("project not found")
		}
	}
	return nil
}

func (s *ProjectService) isMember(userID, projectID uint) bool {
	var count int64
	s.db.Model(&models.ProjectMember{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count)
	return count > 0
}

type CreateProjectRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	ClientCompany string `json:"client_company"`
}

func (s *ProjectService) Create(req *CreateProjectRequest, createdBy uint) (*models.Project, error) {
	project := models.Project{
		Name:          req.Name,
		Description:   req.Description,
		ClientCompany: req.ClientCompany,
		Status:        string(authz.ProjectDraft),
		CreatedBy:     createdBy,
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}

	// The creator joins the project team.
	member := models.ProjectMember{ProjectID: project.ID, UserID: createdBy}
	s.db.Create(&member)

	return &project, nil
}

type UpdateProjectRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	ClientCompany *string `json:"client_company"`
}

func (s *ProjectService) Update(projectID uint, req *UpdateProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, response.NewNotFound("project not found")
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.ClientCompany != nil {
		project.ClientCompany = *req.ClientCompany
	}

	if err := s.db.Save(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ChangeStatus moves a project through its lifecycle. The actor must be
// allowed to change status at all, and the transition itself must be
// valid; the validator's message is returned verbatim so the client can
// display it.
func (s *ProjectService) ChangeStatus(actorID, projectID uint, newStatus string) (*models.Project, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	project, projectSnap, err := loadProjectSnapshot(s.db, projectID)
	if err != nil {
		return nil, response.NewNotFound("project not found")
	}

	req := authz.Request{User: actor, Project: projectSnap}
	if reason := s.engine.ExplainDenial(authz.ActionChangeProjectStatus, req); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	result := authz.ValidateTransition(authz.ProjectStatus(project.Status), authz.ProjectStatus(newStatus))
	if !result.IsValid {
		return nil, response.NewBadRequest(result.Error)
	}

	updates := map[string]interface{}{"status": newStatus}
	if newStatus == string(authz.ProjectArchived) {
		updates["archived_at"] = time.Now()
	}

	// Guard against a concurrent status change: only apply if the row
	// still holds the status the transition was validated from.
	res := s.db.Model(&models.Project{}).
		Where("id = ? AND status = ?", project.ID, project.Status).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, response.NewConflict("project status changed concurrently, please retry")
	}

	LogInfo("Projects", "ChangeStatus",
		fmt.Sprintf("project %q moved from %s to %s", project.Name, project.Status, newStatus),
		&actorID, "", "", nil)

	s.notifier.Publish(models.NotifyStatusChanged,
		"Project status updated",
		fmt.Sprintf("%s is now %s", project.Name, newStatus),
		projectRecipients(s.db, project.ID), &project.ID, nil)

	project.Status = newStatus
	return project, nil
}

// Archive moves a project to archived. Archiving is deliberately harder
// than a plain status change: the caller must retype the project name.
func (s *ProjectService) Archive(actorID, projectID uint, confirmName string) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, response.NewNotFound("project not found")
	}

	if confirmName != project.Name {
		return nil, response.NewBadRequest("project name confirmation does not match")
	}

	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}
	_, projectSnap, err := loadProjectSnapshot(s.db, projectID)
	if err != nil {
		return nil, err
	}

	req := authz.Request{User: actor, Project: projectSnap}
	if reason := s.engine.ExplainDenial(authz.ActionArchiveProject, req); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	return s.ChangeStatus(actorID, projectID, string(authz.ProjectArchived))
}

// Delete removes a project permanently. Only a super admin may delete,
// and only once the project is archived.
func (s *ProjectService) Delete(actorID, projectID uint) error {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return err
	}

	project, projectSnap, err := loadProjectSnapshot(s.db, projectID)
	if err != nil {
		return response.NewNotFound("project not found")
	}

	req := authz.Request{User: actor, Project: projectSnap}
	if reason := s.engine.ExplainDenial(authz.ActionDeleteProject, req); reason != "" {
		return response.NewForbidden(reason)
	}

	if err := s.db.Delete(&models.Project{}, projectID).Error; err != nil {
		return err
	}

	LogWarning("Projects", "Delete",
		fmt.Sprintf("project %q deleted", project.Name),
		&actorID, "", "", nil)
	return nil
}

type AddMemberRequest struct {
	UserID           uint `json:"user_id" binding:"required"`
	IsPrimaryContact bool `json:"is_primary_contact"`
}

// AddMember adds a user to the project. Setting a new primary contact
// demotes the previous one; a project has at most one.
func (s *ProjectService) AddMember(projectID uint, req *AddMemberRequest) (*models.ProjectMember, error) {
	var user models.User
	if err := s.db.First(&user, req.UserID).Error; err != nil {
		return nil, response.NewNotFound("user not found")
	}

	if req.IsPrimaryContact && user.Role != string(authz.RoleClient) {
		return nil, response.NewBadRequest("only clients can be primary contacts")
	}

	member := models.ProjectMember{
		ProjectID:        projectID,
		UserID:           req.UserID,
		IsPrimaryContact: req.IsPrimaryContact,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsPrimaryContact {
			if err := tx.Model(&models.ProjectMember{}).
				Where("project_id = ? AND is_primary_contact = ?", projectID, true).
				Update("is_primary_contact", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	return &member, nil
}

func (s *ProjectService) RemoveMember(projectID, userID uint) error {
	res := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return response.NewNotFound("member not found")
	}
	return nil
}

// AcceptTerms stamps the engagement terms acceptance. Only the primary
// contact can accept, and only once.
func (s *ProjectService) AcceptTerms(actorID, projectID uint) (*models.Project, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, response.NewNotFound("project not found")
	}

	if !s.engine.IsPrimaryContact(actor, projectID) {
		return nil, response.NewForbidden("Only the primary contact can accept the engagement terms")
	}
	if project.TermsAcceptedAt != nil {
		return nil, response.NewConflict("engagement terms already accepted")
	}

	now := time.Now()
	res := s.db.Model(&models.Project{}).
		Where("id = ? AND terms_accepted_at IS NULL", projectID).
		Updates(map[string]interface{}{
			"terms_accepted_at": now,
			"terms_accepted_by": actorID,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, response.NewConflict("engagement terms already accepted")
	}

	project.TermsAcceptedAt = &now
	project.TermsAcceptedBy = &actorID

	LogInfo("Projects", "AcceptTerms",
		fmt.Sprintf("engagement terms accepted for project %q", project.Name),
		&actorID, "", "", nil)

	return &project, nil
}

// ApprovalHistory returns the ordered approval events for a project.
// Internal staff and the primary contact may read it.
func (s *ProjectService) ApprovalHistory(actorID, projectID uint) ([]models.ApprovalEvent, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	_, projectSnap, err := loadProjectSnapshot(s.db, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	req := authz.Request{User: actor, Project: projectSnap}
	if reason := s.engine.ExplainDenial(authz.ActionViewApprovalHistory, req); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	var events []models.ApprovalEvent
	if err := s.db.Preload("Actor").
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// AllowedStatusTransitions lists where the project can go next, for
// driving the status dropdown in the UI.
func (s *ProjectService) AllowedStatusTransitions(projectID uint) ([]authz.ProjectStatus, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, response.NewNotFound("project not found")
	}
	return authz.AllowedTransitions(authz.ProjectStatus(project.Status)), nil
}

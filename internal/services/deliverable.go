package services

import (
	"fmt"
	"time"

	"github.com/reelcraft/portal/backend/internal/authz"
	"github.com/reelcraft/portal/backend/internal/config"
	"github.com/reelcraft/portal/backend/internal/models"
	"github.com/reelcraft/portal/backend/pkg/response"
	"gorm.io/gorm"
)

// DeliverableService drives the deliverable review workflow. Every write
// is a conditional update keyed on the status the authorization check
// saw, so two racing decisions cannot both land.
type DeliverableService struct {
	db        *gorm.DB
	engine    *authz.Engine
	retention *config.RetentionConfig
	notifier  *NotificationService
}

func NewDeliverableService(db *gorm.DB, engine *authz.Engine, retention *config.RetentionConfig) *DeliverableService {
	return &DeliverableService{
		db:        db,
		engine:    engine,
		retention: retention,
		notifier:  NewNotificationService(db),
	}
}

// ListByProject returns the deliverables of a project the actor may see.
// Clients only get deliverables whose status has reached the
// client-visible window; internal staff see everything.
func (s *DeliverableService) ListByProject(actorID, projectID uint) ([]models.Deliverable, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	_, projectSnap, err := loadProjectSnapshot(s.db, projectID)
	if err != nil {
		return nil, response.NewNotFound("project not found")
	}

	var all []models.Deliverable
	if err := s.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&all).Error; err != nil {
		return nil, err
	}

	visible := make([]models.Deliverable, 0, len(all))
	for _, d := range all {
		req := authz.Request{User: actor, Project: projectSnap, Deliverable: d.Snapshot()}
		if s.engine.Decide(authz.ActionViewDeliverable, req).Allowed {
			visible = append(visible, d)
		}
	}
	return visible, nil
}

// GetByID returns a deliverable if the actor may view it.
func (s *DeliverableService) GetByID(actorID, deliverableID uint) (*models.Deliverable, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	deliverable, deliverableSnap, _, projectSnap, err := loadDeliverableSnapshot(s.db, deliverableID)
	if err != nil {
		return nil, response.NewNotFound("deliverable not found")
	}

	req := authz.Request{User: actor, Project: projectSnap, Deliverable: deliverableSnap}
	if reason := s.engine.ExplainDenial(authz.ActionViewDeliverable, req); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	return deliverable, nil
}

type CreateDeliverableRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"due_at"`
}

func (s *DeliverableService) Create(actorID, projectID uint, req *CreateDeliverableRequest) (*models.Deliverable, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	_, projectSnap, err := loadProjectSnapshot(s.db, projectID)
	if err != nil {
		return nil, response.NewNotFound("project not found")
	}

	areq := authz.Request{User: actor, Project: projectSnap}
	if reason := s.engine.ExplainDenial(authz.ActionCreateDeliverable, areq); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	deliverable := models.Deliverable{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      string(authz.DeliverablePending),
		DueAt:       req.DueAt,
		CreatedBy:   actorID,
	}
	if err := s.db.Create(&deliverable).Error; err != nil {
		return nil, err
	}
	return &deliverable, nil
}

type UpdateDeliverableRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueAt       *time.Time `json:"due_at"`
}

// Update edits deliverable metadata. Blocked entirely while the
// deliverable awaits client approval, for every role.
func (s *DeliverableService) Update(actorID, deliverableID uint, req *UpdateDeliverableRequest) (*models.Deliverable, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	deliverable, deliverableSnap, _, projectSnap, err := loadDeliverableSnapshot(s.db, deliverableID)
	if err != nil {
		return nil, response.NewNotFound("deliverable not found")
	}

	areq := authz.Request{User: actor, Project: projectSnap, Deliverable: deliverableSnap}
	if reason := s.engine.ExplainDenial(authz.ActionEditDeliverable, areq); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	if req.Title != nil {
		deliverable.Title = *req.Title
	}
	if req.Description != nil {
		deliverable.Description = *req.Description
	}
	if req.DueAt != nil {
		deliverable.DueAt = req.DueAt
	}

	if err := s.db.Save(deliverable).Error; err != nil {
		return nil, err
	}
	return deliverable, nil
}

func (s *DeliverableService) Delete(actorID, deliverableID uint) error {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return err
	}

	deliverable, _, _, projectSnap, err := loadDeliverableSnapshot(s.db, deliverableID)
	if err != nil {
		return response.NewNotFound("deliverable not found")
	}

	areq := authz.Request{User: actor, Project: projectSnap}
	if reason := s.engine.ExplainDenial(authz.ActionDeleteDeliverable, areq); reason != "" {
		return response.NewForbidden(reason)
	}

	if err := s.db.Delete(&models.Deliverable{}, deliverableID).Error; err != nil {
		return err
	}

	LogWarning("Deliverables", "Delete",
		fmt.Sprintf("deliverable %q deleted", deliverable.Title),
		&actorID, "", "", nil)
	return nil
}

// transition applies from → to as a conditional update. A zero
// RowsAffected means someone else moved the deliverable first.
func (s *DeliverableService) transition(deliverableID uint, from, to authz.DeliverableStatus, extra map[string]interface{}) error {
	if !authz.CanDeliverableTransition(from, to) {
		return response.NewBadRequest(fmt.Sprintf("deliverable cannot move from %s to %s", from, to))
	}

	updates := map[string]interface{}{"status": string(to)}
	for k, v := range extra {
		updates[k] = v
	}

	res := s.db.Model(&models.Deliverable{}).
		Where("id = ? AND status = ?", deliverableID, string(from)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return response.NewConflict("deliverable status changed concurrently, please retry")
	}
	return nil
}

// StartWork moves a pending deliverable into production.
func (s *DeliverableService) StartWork(actorID, deliverableID uint) (*models.Deliverable, error) {
	return s.internalTransition(actorID, deliverableID, authz.DeliverablePending, authz.DeliverableInProgress, nil)
}

// ResumeWork restarts production after a revision request or rejection.
func (s *DeliverableService) ResumeWork(actorID, deliverableID uint) (*models.Deliverable, error) {
	deliverable, _, _, _, err := loadDeliverableSnapshot(s.db, deliverableID)
	if err != nil {
		return nil, response.NewNotFound("deliverable not found")
	}
	return s.internalTransition(actorID, deliverableID, authz.DeliverableStatus(deliverable.Status), authz.DeliverableInProgress, nil)
}

// internalTransition is the shared path for workflow moves that internal
// staff make outside the upload and approval endpoints.
func (s *DeliverableService) internalTransition(actorID, deliverableID uint, from, to authz.DeliverableStatus, extra map[string]interface{}) (*models.Deliverable, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	deliverable, deliverableSnap, _, projectSnap, err := loadDeliverableSnapshot(s.db, deliverableID)
	if err != nil {
		return nil, response.NewNotFound("deliverable not found")
	}

	areq := authz.Request{User: actor, Project: projectSnap, Deliverable: deliverableSnap}
	if reason := s.engine.ExplainDenial(authz.ActionEditDeliverable, areq); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	if err := s.transition(deliverableID, from, to, extra); err != nil {
		return nil, err
	}

	deliverable.Status = string(to)
	return deliverable, nil
}

// FileMeta describes an already-stored upload.
type FileMeta struct {
	FileName    string
	StorageKey  string
	ContentType string
	Size        int64
}

// UploadBeta attaches a watermarked preview and moves the deliverable to
// beta_ready. Team members may only upload against a task assigned to
// them; taskID may be zero for managers.
func (s *DeliverableService) UploadBeta(actorID, deliverableID, taskID uint, meta *FileMeta) (*models.DeliverableFile, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	deliverable, _, project, projectSnap, err := loadDeliverableSnapshot(s.db, deliverableID)
	if err != nil {
		return nil, response.NewNotFound("deliverable not found")
	}

	var taskSnap *authz.Task
	if taskID != 0 {
		_, taskSnap, err = loadTaskSnapshot(s.db, taskID)
		if err != nil {
			return nil, response.NewNotFound("task not found")
		}
	}

	areq := authz.Request{User: actor, Project: projectSnap, Task: taskSnap}
	if reason := s.engine.ExplainDenial(authz.ActionUploadBeta, areq); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	status := authz.DeliverableStatus(deliverable.Status)
	switch status {
	case authz.DeliverableInProgress:
		if err := s.transition(deliverableID, status, authz.DeliverableBetaReady, nil); err != nil {
			return nil, err
		}
	case authz.DeliverableBetaReady:
		// Replacing the preview keeps the status.
	default:
		return nil, response.NewBadRequest("beta files can only be uploaded while the deliverable is in progress")
	}

	file := models.DeliverableFile{
		DeliverableID: deliverableID,
		Kind:          models.FileKindBeta,
		FileName:      meta.FileName,
		StorageKey:    meta.StorageKey,
		ContentType:   meta.ContentType,
		Size:          meta.Size,
		UploadedBy:    actorID,
	}
	if err := s.db.Create(&file).Error; err != nil {
		return nil, err
	}

	s.notifier.Publish(models.NotifyBetaReady,
		"Beta preview available",
		fmt.Sprintf("A preview of %q is ready for review on %s", deliverable.Title, project.Name),
		clientRecipients(s.db, project.ID), &project.ID, &deliverableID)

	return &file, nil
}

// SubmitForApproval moves a beta_ready deliverable in front of the
// client.
func (s *DeliverableService) SubmitForApproval(actorID, deliverableID uint) (*models.Deliverable, error) {
	deliverable, err := s.internalTransition(actorID, deliverableID,
		authz.DeliverableBetaReady, authz.DeliverableAwaitingApproval, nil)
	if err != nil {
		return nil, err
	}

	var project models.Project
	s.db.First(&project, deliverable.ProjectID)

	s.notifier.Publish(models.NotifyAwaitingApproval,
		"Deliverable awaiting your approval",
		fmt.Sprintf("%q on %s is waiting for your decision", deliverable.Title, project.Name),
		clientRecipients(s.db, deliverable.ProjectID), &deliverable.ProjectID, &deliverable.ID)

	return deliverable, nil
}

// Approve records the client's approval and moves the deliverable to
// approved, then straight into the payment stage.
func (s *DeliverableService) Approve(actorID, deliverableID uint, note string) (*models.Deliverable, error) {
	return s.decide(actorID, deliverableID, note,
		authz.ActionApprove, models.ApprovalActionApproved, authz.DeliverableApproved,
		models.NotifyApproved, "Deliverable approved")
}

// RequestRevision records a revision request and sends the deliverable
// back toward production. Allowed even while the project awaits payment.
func (s *DeliverableService) RequestRevision(actorID, deliverableID uint, note string) (*models.Deliverable, error) {
	return s.decide(actorID, deliverableID, note,
		authz.ActionRequestRevision, models.ApprovalActionRevisionRequested, authz.DeliverableRevisionRequested,
		models.NotifyRevisionRequested, "Revision requested")
}

// Reject records a rejection. Rejection shares the revision gate: it is
// a quality dispute, not a payment event.
func (s *DeliverableService) Reject(actorID, deliverableID uint, note string) (*models.Deliverable, error) {
	return s.decide(actorID, deliverableID, note,
		authz.ActionRequestRevision, models.ApprovalActionRejected, authz.DeliverableRejected,
		models.NotifyRejected, "Deliverable rejected")
}

// decide is the shared client-decision path: authorize, conditionally
// flip the status, append the approval event, notify the team.
func (s *DeliverableService) decide(actorID, deliverableID uint, note string,
	action authz.Action, eventAction string, to authz.DeliverableStatus,
	notifyType, notifyTitle string) (*models.Deliverable, error) {

	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	deliverable, deliverableSnap, project, projectSnap, err := loadDeliverableSnapshot(s.db, deliverableID)
	if err != nil {
		return nil, response.NewNotFound("deliverable not found")
	}

	areq := authz.Request{User: actor, Project: projectSnap, Deliverable: deliverableSnap}
	if reason := s.engine.ExplainDenial(action, areq); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	extra := map[string]interface{}{}
	if to == authz.DeliverableRevisionRequested {
		extra["revisions_used"] = gorm.Expr("revisions_used + 1")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": string(to)}
		for k, v := range extra {
			updates[k] = v
		}
		res := tx.Model(&models.Deliverable{}).
			Where("id = ? AND status = ?", deliverableID, string(authz.DeliverableAwaitingApproval)).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return response.NewConflict("deliverable status changed concurrently, please retry")
		}

		event := models.ApprovalEvent{
			ProjectID:     project.ID,
			DeliverableID: deliverableID,
			ActorID:       actorID,
			Action:        eventAction,
			Note:          note,
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}

	LogInfo("Deliverables", "Decision",
		fmt.Sprintf("deliverable %q: %s", deliverable.Title, eventAction),
		&actorID, "", "", nil)

	s.notifier.Publish(notifyType, notifyTitle,
		fmt.Sprintf("%q on %s: %s", deliverable.Title, project.Name, eventAction),
		projectRecipients(s.db, project.ID), &project.ID, &deliverableID)

	// Approval flows straight into the payment stage.
	if to == authz.DeliverableApproved {
		if err := s.transition(deliverableID, authz.DeliverableApproved, authz.DeliverablePaymentPending, nil); err == nil {
			deliverable.Status = string(authz.DeliverablePaymentPending)
			return deliverable, nil
		}
	}

	deliverable.Status = string(to)
	return deliverable, nil
}

// DeliverFinal attaches the final master and completes the deliverable.
// The access expiry clock starts now.
func (s *DeliverableService) DeliverFinal(actorID, deliverableID uint, meta *FileMeta) (*models.DeliverableFile, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	deliverable, _, project, projectSnap, err := loadDeliverableSnapshot(s.db, deliverableID)
	if err != nil {
		return nil, response.NewNotFound("deliverable not found")
	}

	areq := authz.Request{User: actor, Project: projectSnap}
	if reason := s.engine.ExplainDenial(authz.ActionUploadFinal, areq); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	now := time.Now()
	expiresAt := now.AddDate(0, 0, s.retention.FinalAccessDays)
	err = s.transition(deliverableID, authz.DeliverableStatus(deliverable.Status), authz.DeliverableFinalDelivered,
		map[string]interface{}{
			"delivered_at": now,
			"expires_at":   expiresAt,
		})
	if err != nil {
		return nil, err
	}

	file := models.DeliverableFile{
		DeliverableID: deliverableID,
		Kind:          models.FileKindFinal,
		FileName:      meta.FileName,
		StorageKey:    meta.StorageKey,
		ContentType:   meta.ContentType,
		Size:          meta.Size,
		UploadedBy:    actorID,
	}
	if err := s.db.Create(&file).Error; err != nil {
		return nil, err
	}

	LogInfo("Deliverables", "DeliverFinal",
		fmt.Sprintf("final files delivered for %q", deliverable.Title),
		&actorID, "", "", nil)

	s.notifier.Publish(models.NotifyFinalDelivered,
		"Final files delivered",
		fmt.Sprintf("The final files for %q on %s are ready to download", deliverable.Title, project.Name),
		clientRecipients(s.db, project.ID), &project.ID, &deliverableID)

	return &file, nil
}

// ListFiles returns the files of a deliverable the actor may reach:
// beta files within the beta window, final files until expiry.
func (s *DeliverableService) ListFiles(actorID, deliverableID uint, now time.Time) ([]models.DeliverableFile, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	_, deliverableSnap, _, projectSnap, err := loadDeliverableSnapshot(s.db, deliverableID)
	if err != nil {
		return nil, response.NewNotFound("deliverable not found")
	}

	var files []models.DeliverableFile
	if err := s.db.Where("deliverable_id = ?", deliverableID).Find(&files).Error; err != nil {
		return nil, err
	}

	betaReq := authz.Request{User: actor, Project: projectSnap, Deliverable: deliverableSnap}
	finalReq := authz.Request{User: actor, Project: projectSnap, Deliverable: deliverableSnap, Now: now}
	betaOK := s.engine.Decide(authz.ActionViewBetaFiles, betaReq).Allowed
	finalOK := s.engine.Decide(authz.ActionAccessFinalFiles, finalReq).Allowed

	visible := make([]models.DeliverableFile, 0, len(files))
	for _, f := range files {
		switch f.Kind {
		case models.FileKindBeta:
			if betaOK {
				visible = append(visible, f)
			}
		case models.FileKindFinal:
			if finalOK {
				visible = append(visible, f)
			}
		}
	}
	return visible, nil
}

// AuthorizeFileDownload checks whether the actor may download one file,
// returning the denial reason otherwise.
func (s *DeliverableService) AuthorizeFileDownload(actorID uint, file *models.DeliverableFile, now time.Time) error {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return err
	}

	_, deliverableSnap, _, projectSnap, err := loadDeliverableSnapshot(s.db, file.DeliverableID)
	if err != nil {
		return response.NewNotFound("deliverable not found")
	}

	action := authz.ActionViewBetaFiles
	if file.Kind == models.FileKindFinal {
		action = authz.ActionAccessFinalFiles
	}

	req := authz.Request{User: actor, Project: projectSnap, Deliverable: deliverableSnap, Now: now}
	if reason := s.engine.ExplainDenial(action, req); reason != "" {
		return response.NewForbidden(reason)
	}
	return nil
}

package services

import (
	"github.com/reelcraft/portal/backend/internal/authz"
	"github.com/reelcraft/portal/backend/internal/models"
	"gorm.io/gorm"
)

// Snapshot loaders. Authorization decisions are only valid for the
// records they were computed from, so every guarded operation re-fetches
// immediately before checking, and mutations are made conditional on the
// state the check saw.

// loadActor fetches a user and their project memberships and maps them to
// the engine's snapshot type.
func loadActor(db *gorm.DB, userID uint) (*authz.User, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	var memberships []models.ProjectMember
	if err := db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	return user.Snapshot(memberships), nil
}

// loadProjectSnapshot fetches a project with its internal team roster.
func loadProjectSnapshot(db *gorm.DB, projectID uint) (*models.Project, *authz.Project, error) {
	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		return nil, nil, err
	}

	var teamIDs []uint
	if err := db.Model(&models.ProjectMember{}).
		Joins("JOIN users ON users.id = project_members.user_id").
		Where("project_members.project_id = ? AND users.role <> ?", projectID, string(authz.RoleClient)).
		Order("project_members.id").
		Pluck("project_members.user_id", &teamIDs).Error; err != nil {
		return nil, nil, err
	}

	return &project, project.Snapshot(teamIDs), nil
}

// loadDeliverableSnapshot fetches a deliverable together with its project
// snapshot.
func loadDeliverableSnapshot(db *gorm.DB, deliverableID uint) (*models.Deliverable, *authz.Deliverable, *models.Project, *authz.Project, error) {
	var deliverable models.Deliverable
	if err := db.First(&deliverable, deliverableID).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	project, projectSnap, err := loadProjectSnapshot(db, deliverable.ProjectID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return &deliverable, deliverable.Snapshot(), project, projectSnap, nil
}

// loadTaskSnapshot fetches a task with its assignees preloaded.
func loadTaskSnapshot(db *gorm.DB, taskID uint) (*models.Task, *authz.Task, error) {
	var task models.Task
	if err := db.Preload("Assignees").First(&task, taskID).Error; err != nil {
		return nil, nil, err
	}
	return &task, task.Snapshot(), nil
}

// projectRecipients returns the user IDs that should hear about an event
// on a project: every member, internal and client alike.
func projectRecipients(db *gorm.DB, projectID uint) []uint {
	var ids []uint
	db.Model(&models.ProjectMember{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &ids)
	return ids
}

// clientRecipients returns only the client-side member IDs of a project.
func clientRecipients(db *gorm.DB, projectID uint) []uint {
	var ids []uint
	db.Model(&models.ProjectMember{}).
		Joins("JOIN users ON users.id = project_members.user_id").
		Where("project_members.project_id = ? AND users.role = ?", projectID, string(authz.RoleClient)).
		Pluck("project_members.user_id", &ids)
	return ids
}

package services

import (
	"fmt"
	"time"

	"github.com/reelcraft/portal/backend/internal/authz"
	"github.com/reelcraft/portal/backend/internal/models"
	"github.com/reelcraft/portal/backend/pkg/response"
	"gorm.io/gorm"
)

// TaskService manages internal production tasks. Tasks are never shown
// to clients; the list and detail paths are behind the internal-team
// route group and the engine enforces the same on every mutation.
type TaskService struct {
	db     *gorm.DB
	engine *authz.Engine
}

func NewTaskService(db *gorm.DB, engine *authz.Engine) *TaskService {
	return &TaskService{db: db, engine: engine}
}

type TaskListRequest struct {
	ProjectID  uint   `form:"project_id"`
	AssigneeID uint   `form:"assignee_id"`
	Status     string `form:"status"`
	Page       int    `form:"page" binding:"min=1"`
	PageSize   int    `form:"page_size" binding:"min=1,max=100"`
}

type TaskListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.Task `json:"items"`
}

func (s *TaskService) List(req *TaskListRequest) (*TaskListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Task{})
	if req.ProjectID != 0 {
		query = query.Where("project_id = ?", req.ProjectID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.AssigneeID != 0 {
		query = query.Where(
			"assignee_id = ? OR id IN (SELECT task_id FROM task_assignees WHERE user_id = ?)",
			req.AssigneeID, req.AssigneeID)
	}

	var total int64
	query.Count(&total)

	var items []models.Task
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Assignees").
		Offset(offset).Limit(req.PageSize).
		Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &TaskListResponse{Total: total, Page: req.Page, PageSize: req.PageSize, Items: items}, nil
}

func (s *TaskService) GetByID(taskID uint) (*models.Task, error) {
	task, _, err := loadTaskSnapshot(s.db, taskID)
	if err != nil {
		return nil, response.NewNotFound("task not found")
	}
	return task, nil
}

type CreateTaskRequest struct {
	ProjectID     uint       `json:"project_id" binding:"required"`
	DeliverableID *uint      `json:"deliverable_id"`
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	AssigneeID    *uint      `json:"assignee_id"`
	AssigneeIDs   []uint     `json:"assignee_ids"`
	DueAt         *time.Time `json:"due_at"`
}

func (s *TaskService) Create(actorID uint, req *CreateTaskRequest) (*models.Task, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	_, projectSnap, err := loadProjectSnapshot(s.db, req.ProjectID)
	if err != nil {
		return nil, response.NewNotFound("project not found")
	}

	areq := authz.Request{User: actor, Project: projectSnap}
	if reason := s.engine.ExplainDenial(authz.ActionCreateTask, areq); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	task := models.Task{
		ProjectID:     req.ProjectID,
		DeliverableID: req.DeliverableID,
		Title:         req.Title,
		Description:   req.Description,
		Status:        models.TaskStatusOpen,
		AssigneeID:    req.AssigneeID,
		DueAt:         req.DueAt,
		CreatedBy:     actorID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		if len(req.AssigneeIDs) > 0 {
			var assignees []models.User
			if err := tx.Find(&assignees, req.AssigneeIDs).Error; err != nil {
				return err
			}
			return tx.Model(&task).Association("Assignees").Replace(assignees)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	AssigneeID  *uint      `json:"assignee_id"`
	AssigneeIDs []uint     `json:"assignee_ids"`
	DueAt       *time.Time `json:"due_at"`
}

// Update edits a task. Team members may only edit tasks assigned to
// them; managers may edit any task on the project.
func (s *TaskService) Update(actorID, taskID uint, req *UpdateTaskRequest) (*models.Task, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	task, taskSnap, err := loadTaskSnapshot(s.db, taskID)
	if err != nil {
		return nil, response.NewNotFound("task not found")
	}

	_, projectSnap, err := loadProjectSnapshot(s.db, task.ProjectID)
	if err != nil {
		return nil, err
	}

	areq := authz.Request{User: actor, Project: projectSnap, Task: taskSnap}
	if reason := s.engine.ExplainDenial(authz.ActionEditTask, areq); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		if !models.ValidTaskStatus(*req.Status) {
			return nil, response.NewBadRequest(fmt.Sprintf("invalid task status %q", *req.Status))
		}
		task.Status = *req.Status
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}
	if req.DueAt != nil {
		task.DueAt = req.DueAt
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		if req.AssigneeIDs != nil {
			var assignees []models.User
			if len(req.AssigneeIDs) > 0 {
				if err := tx.Find(&assignees, req.AssigneeIDs).Error; err != nil {
					return err
				}
			}
			return tx.Model(task).Association("Assignees").Replace(assignees)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(actorID, taskID uint) error {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return err
	}

	task, _, err := loadTaskSnapshot(s.db, taskID)
	if err != nil {
		return response.NewNotFound("task not found")
	}

	_, projectSnap, err := loadProjectSnapshot(s.db, task.ProjectID)
	if err != nil {
		return err
	}

	areq := authz.Request{User: actor, Project: projectSnap}
	if reason := s.engine.ExplainDenial(authz.ActionDeleteTask, areq); reason != "" {
		return response.NewForbidden(reason)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(task).Association("Assignees").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, taskID).Error
	})
	if err != nil {
		return err
	}

	LogInfo("Tasks", "Delete",
		fmt.Sprintf("task %q deleted", task.Title),
		&actorID, "", "", nil)
	return nil
}

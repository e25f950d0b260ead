package services

import (
	"context"
	"time"

	"github.com/reelcraft/portal/backend/internal/models"
	"github.com/reelcraft/portal/backend/pkg/logger"
	"gorm.io/gorm"
)

// NotificationService writes and reads in-portal notifications. Events
// flow through the notify queue so request handlers never wait on
// delivery.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// ProcessNotifyTask is the queue processor: it materializes one
// notification row per recipient.
func (s *NotificationService) ProcessNotifyTask(ctx context.Context, task *NotifyTask) error {
	for _, userID := range task.RecipientIDs {
		n := models.Notification{
			UserID:        userID,
			Type:          task.Type,
			Title:         task.Title,
			Body:          task.Body,
			ProjectID:     task.ProjectID,
			DeliverableID: task.DeliverableID,
		}
		if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
			logger.Errorf("[Notification] Failed to create notification for user %d: %v", userID, err)
			return err
		}
	}
	return nil
}

// Publish enqueues a notification event for a set of recipients.
// Duplicate recipient IDs are collapsed so nobody is notified twice for
// one event.
func (s *NotificationService) Publish(eventType, title, body string, recipients []uint, projectID, deliverableID *uint) {
	queue := GetNotifyQueue()
	if queue == nil || len(recipients) == 0 {
		return
	}

	seen := make(map[uint]bool, len(recipients))
	var unique []uint
	for _, id := range recipients {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return
	}

	task := &NotifyTask{
		Type:          eventType,
		Title:         title,
		Body:          body,
		RecipientIDs:  unique,
		ProjectID:     projectID,
		DeliverableID: deliverableID,
	}
	if err := queue.Enqueue(task); err != nil {
		logger.Errorf("[Notification] Failed to enqueue %s event: %v", eventType, err)
	}
}

type NotificationListRequest struct {
	Page       int  `form:"page" binding:"min=1"`
	PageSize   int  `form:"page_size" binding:"min=1,max=100"`
	UnreadOnly bool `form:"unread_only"`
}

type NotificationListResponse struct {
	Total    int64                 `json:"total"`
	Unread   int64                 `json:"unread"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Items    []models.Notification `json:"items"`
}

func (s *NotificationService) ListForUser(userID uint, req *NotificationListRequest) (*NotificationListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if req.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	query.Count(&total)

	var unread int64
	s.db.Model(&models.Notification{}).Where("user_id = ? AND read_at IS NULL", userID).Count(&unread)

	var items []models.Notification
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &NotificationListResponse{
		Total:    total,
		Unread:   unread,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// MarkRead marks a single notification as read. Only the owner can mark
// their own notifications.
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	now := time.Now()
	return s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", now).Error
}

// MarkAllRead marks every unread notification for the user as read.
func (s *NotificationService) MarkAllRead(userID uint) error {
	now := time.Now()
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", now).Error
}

package services

import (
	"fmt"
	"os"
	"time"

	"github.com/reelcraft/portal/backend/internal/authz"
	"github.com/reelcraft/portal/backend/internal/config"
	"github.com/reelcraft/portal/backend/internal/models"
	"github.com/reelcraft/portal/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// RetentionService runs the daily sweep over delivered deliverables:
// clients are warned before their final file access expires. The sweep
// takes a database lock keyed on the day, so only one instance runs it.
type RetentionService struct {
	db       *gorm.DB
	cfg      *config.RetentionConfig
	notifier *NotificationService
	cron     *cron.Cron
	instance string
}

func NewRetentionService(db *gorm.DB, cfg *config.RetentionConfig) *RetentionService {
	hostname, _ := os.Hostname()
	return &RetentionService{
		db:       db,
		cfg:      cfg,
		notifier: NewNotificationService(db),
		instance: fmt.Sprintf("%s-%d", hostname, os.Getpid()),
	}
}

// Start schedules the sweep at 03:00 every day and runs one pass
// immediately to catch up after downtime.
func (s *RetentionService) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc("0 3 * * *", s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	go s.runOnce()
	logger.Infof("[Retention] Sweep scheduled daily at 03:00")
	return nil
}

func (s *RetentionService) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}

func (s *RetentionService) runOnce() {
	day := time.Now().Format("2006-01-02")
	if !s.acquireLock("retention_sweep", day) {
		logger.Infof("[Retention] Sweep for %s already taken by another instance", day)
		return
	}

	warned, err := s.SweepExpiryWarnings(time.Now())
	if err != nil {
		logger.Errorf("[Retention] Sweep failed: %v", err)
		return
	}
	if warned > 0 {
		logger.Infof("[Retention] Sent %d expiry warnings", warned)
	}
}

// acquireLock inserts a lock row for the given name and key. The unique
// index makes the insert fail for every instance but the first.
func (s *RetentionService) acquireLock(name, key string) bool {
	lock := models.SchedulerLock{
		LockName:  name,
		LockKey:   key,
		LockedBy:  s.instance,
		LockedAt:  time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	return s.db.Create(&lock).Error == nil
}

// SweepExpiryWarnings notifies clients whose final files expire within
// the warning window, once per deliverable.
func (s *RetentionService) SweepExpiryWarnings(now time.Time) (int, error) {
	cutoff := now.AddDate(0, 0, s.cfg.ExpiryWarningDays)

	var due []models.Deliverable
	err := s.db.
		Where("status = ?", string(authz.DeliverableFinalDelivered)).
		Where("expiry_warned = ?", false).
		Where("expires_at IS NOT NULL AND expires_at > ? AND expires_at <= ?", now, cutoff).
		Find(&due).Error
	if err != nil {
		return 0, err
	}

	warned := 0
	for _, d := range due {
		// Flip the flag first so a crash mid-sweep cannot double-warn.
		res := s.db.Model(&models.Deliverable{}).
			Where("id = ? AND expiry_warned = ?", d.ID, false).
			Update("expiry_warned", true)
		if res.Error != nil || res.RowsAffected == 0 {
			continue
		}

		var project models.Project
		if err := s.db.First(&project, d.ProjectID).Error; err != nil {
			continue
		}

		days := int(d.ExpiresAt.Sub(now).Hours() / 24)
		deliverableID := d.ID
		s.notifier.Publish(models.NotifyExpiryWarning,
			"Final file access expiring soon",
			fmt.Sprintf("Download access to %q on %s ends in %d days", d.Title, project.Name, days),
			clientRecipients(s.db, d.ProjectID), &d.ProjectID, &deliverableID)
		warned++
	}
	return warned, nil
}

// CleanupExpiredLocks removes lock rows past their expiry so the table
// does not grow without bound.
func (s *RetentionService) CleanupExpiredLocks() error {
	return s.db.Where("expires_at < ?", time.Now()).Delete(&models.SchedulerLock{}).Error
}

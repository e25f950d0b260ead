package models

import (
	"fmt"

	"github.com/reelcraft/portal/backend/internal/config"
	"github.com/reelcraft/portal/backend/internal/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Project{},
		&ProjectMember{},
		&Deliverable{},
		&DeliverableFile{},
		&Task{},
		&ProjectFile{},
		&Comment{},
		&ApprovalEvent{},
		&ActivityLog{},
		&Notification{},
		&SchedulerLock{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates the initial super admin account if the portal
// has no administrator yet.
func SeedDefaultData() error {
	var count int64
	DB.Model(&User{}).Where("role = ?", "super_admin").Count(&count)
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword("admin")
	if err != nil {
		return err
	}

	admin := User{
		Username: "admin",
		Password: hashed,
		Nickname: "Administrator",
		Role:     "super_admin",
		IsActive: true,
	}
	return DB.Create(&admin).Error
}

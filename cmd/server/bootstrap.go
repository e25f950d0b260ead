package main

import (
	"github.com/reelcraft/portal/backend/internal/authz"
	"github.com/reelcraft/portal/backend/internal/config"
	"github.com/reelcraft/portal/backend/internal/handlers"
	"github.com/reelcraft/portal/backend/internal/models"
	"github.com/reelcraft/portal/backend/internal/services"
	"github.com/reelcraft/portal/backend/internal/utils"
	"github.com/reelcraft/portal/backend/pkg/logger"
)

// appServices holds the initialized services and handlers the router
// needs.
type appServices struct {
	engine             *authz.Engine
	store              *services.FileStore
	deliverableService *services.DeliverableService
	retentionService   *services.RetentionService
	notifyQueue        services.NotifyQueue
	worker             *services.Worker
	authHandler        *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database,
// authorization engine, queue, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	db := models.GetDB()

	// Activity log sink and its retention sweep
	services.InitActivityLogger(db)
	services.StartLogCleanupScheduler(db)

	engineCfg := authz.DefaultConfig()
	engineCfg.DefaultPrimaryContactWhenUnset = cfg.Authz.DefaultPrimaryContactWhenUnset
	engine := authz.NewEngine(engineCfg)

	store, err := services.NewFileStore(cfg.Storage.Dir)
	if err != nil {
		logger.Fatalf("Failed to initialize file storage: %v", err)
	}

	// Notification queue: Redis-backed asynq when enabled, in-process
	// otherwise. Either way the processor is the notification service.
	notificationService := services.NewNotificationService(db)
	notifyQueue := services.InitNotifyQueue(cfg)
	if syncQueue, ok := notifyQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(notificationService.ProcessNotifyTask)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(notificationService.ProcessNotifyTask)
			worker.Start()
		}
	}

	// Final file access expiry warnings
	retentionService := services.NewRetentionService(db, &cfg.Retention)
	if err := retentionService.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start retention sweep")
	}

	return &appServices{
		engine:             engine,
		store:              store,
		deliverableService: services.NewDeliverableService(db, engine, &cfg.Retention),
		retentionService:   retentionService,
		notifyQueue:        notifyQueue,
		worker:             worker,
		authHandler:        handlers.NewAuthHandler(db, cfg),
	}
}

// shutdown gracefully stops all background services.
func (s *appServices) shutdown() {
	s.retentionService.Stop()
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.notifyQueue != nil {
		s.notifyQueue.Close()
	}
	logger.Info().Msg("All background services stopped")
}

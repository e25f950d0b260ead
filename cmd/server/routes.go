package main

import (
	"github.com/gin-gonic/gin"
	"github.com/reelcraft/portal/backend/internal/config"
	"github.com/reelcraft/portal/backend/internal/handlers"
	"github.com/reelcraft/portal/backend/internal/middleware"
	"github.com/reelcraft/portal/backend/internal/models"
	"github.com/reelcraft/portal/backend/internal/services"
	"github.com/reelcraft/portal/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())
	r.Use(middleware.AuditLog())

	// Rate limiter for credential endpoints
	loginLimiter := middleware.NewRateLimiter(5, 10)

	db := models.GetDB()

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", loginLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Protected routes: any authenticated user
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Projects
			projectHandler := handlers.NewProjectHandler(db, svc.engine)
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.POST("/projects/:id/accept-terms", projectHandler.AcceptTerms)
			protected.GET("/projects/:id/approval-history", projectHandler.ApprovalHistory)

			// Deliverables and their review workflow
			deliverableHandler := handlers.NewDeliverableHandler(db, svc.engine, svc.deliverableService, svc.store)
			protected.GET("/projects/:id/deliverables", deliverableHandler.ListByProject)
			protected.GET("/deliverables/:id", deliverableHandler.GetByID)
			protected.POST("/deliverables/:id/approve", deliverableHandler.Approve)
			protected.POST("/deliverables/:id/request-revision", deliverableHandler.RequestRevision)
			protected.POST("/deliverables/:id/reject", deliverableHandler.Reject)
			protected.GET("/deliverables/:id/files", deliverableHandler.ListFiles)
			protected.GET("/deliverables/:id/files/:fileId/download", deliverableHandler.DownloadFile)

			// Comments
			commentHandler := handlers.NewCommentHandler(db, svc.engine)
			protected.GET("/deliverables/:id/comments", commentHandler.List)
			protected.POST("/deliverables/:id/comments", commentHandler.Create)
			protected.DELETE("/comments/:id", commentHandler.Delete)

			// Project reference files
			fileHandler := handlers.NewProjectFileHandler(services.NewProjectFileService(db, svc.engine, svc.store), svc.store)
			protected.GET("/projects/:id/files", fileHandler.List)
			protected.GET("/files/:id/download", fileHandler.Download)

			// Notifications
			notificationHandler := handlers.NewNotificationHandler(db)
			protected.GET("/notifications", notificationHandler.List)
			protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
			protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		}

		// Internal team routes: agency staff only
		internal := api.Group("")
		internal.Use(middleware.AuthRequired(), middleware.InternalRequired())
		{
			projectHandler := handlers.NewProjectHandler(db, svc.engine)
			internal.POST("/projects", projectHandler.Create)
			internal.PUT("/projects/:id", projectHandler.Update)
			internal.POST("/projects/:id/status", projectHandler.ChangeStatus)
			internal.GET("/projects/:id/status/transitions", projectHandler.AllowedTransitions)
			internal.POST("/projects/:id/archive", projectHandler.Archive)
			internal.POST("/projects/:id/members", projectHandler.AddMember)
			internal.DELETE("/projects/:id/members/:userId", projectHandler.RemoveMember)

			deliverableHandler := handlers.NewDeliverableHandler(db, svc.engine, svc.deliverableService, svc.store)
			internal.POST("/projects/:id/deliverables", deliverableHandler.Create)
			internal.PUT("/deliverables/:id", deliverableHandler.Update)
			internal.DELETE("/deliverables/:id", deliverableHandler.Delete)
			internal.POST("/deliverables/:id/start", deliverableHandler.StartWork)
			internal.POST("/deliverables/:id/resume", deliverableHandler.ResumeWork)
			internal.POST("/deliverables/:id/beta", deliverableHandler.UploadBeta)
			internal.POST("/deliverables/:id/submit", deliverableHandler.SubmitForApproval)
			internal.POST("/deliverables/:id/final", deliverableHandler.DeliverFinal)

			taskHandler := handlers.NewTaskHandler(db, svc.engine)
			internal.GET("/tasks", taskHandler.List)
			internal.GET("/tasks/:id", taskHandler.GetByID)
			internal.POST("/tasks", taskHandler.Create)
			internal.PUT("/tasks/:id", taskHandler.Update)
			internal.DELETE("/tasks/:id", taskHandler.Delete)

			fileHandler := handlers.NewProjectFileHandler(services.NewProjectFileService(db, svc.engine, svc.store), svc.store)
			internal.POST("/projects/:id/files", fileHandler.Upload)
			internal.DELETE("/files/:id", fileHandler.Delete)
		}

		// Admin only routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			projectHandler := handlers.NewProjectHandler(db, svc.engine)
			admin.DELETE("/projects/:id", projectHandler.Delete)

			userHandler := handlers.NewUserHandler(db)
			admin.GET("/users", userHandler.List)
			admin.POST("/users", userHandler.Create)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)

			activityHandler := handlers.NewActivityHandler(db)
			admin.GET("/activity", activityHandler.List)
		}
	}
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/reelcraft/portal/backend/internal/models"
	"github.com/reelcraft/portal/backend/internal/services"
)

// HealthHandler provides the health check endpoint.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	queue := services.GetNotifyQueue()
	queueMode := "sync"
	if queue != nil && queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	var awaitingApproval int64
	models.GetDB().Model(&models.Deliverable{}).
		Where("status = ?", "awaiting_approval").
		Count(&awaitingApproval)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "reelcraft-portal",
		"components": gin.H{
			"database":          dbStatus,
			"queue_mode":        queueMode,
			"pending_approvals": awaitingApproval,
		},
	})
}

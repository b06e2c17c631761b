package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Baragji/Blueprint-creator/internal/repository"
	"github.com/Baragji/Blueprint-creator/internal/session"
)

// HealthHandler reports liveness of the service and its backing stores.
type HealthHandler struct {
	Directory repository.Directory
	Sessions  *session.Manager
}

// NewHealthHandler creates the health endpoint.
func NewHealthHandler(directory repository.Directory, sessions *session.Manager) *HealthHandler {
	return &HealthHandler{Directory: directory, Sessions: sessions}
}

// Health returns 200 when all dependencies respond, 503 otherwise. The
// session store check succeeds on the in-memory fallback as well; a degraded
// store is reported per component, not as an outage.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	dbStatus := "ok"
	if err := h.Directory.Ping(ctx); err != nil {
		dbStatus = "unavailable"
	}
	sessionStatus := "ok"
	if err := h.Sessions.HealthCheck(ctx); err != nil {
		sessionStatus = "unavailable"
	}

	status := http.StatusOK
	overall := "healthy"
	if dbStatus != "ok" || sessionStatus != "ok" {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status": overall,
		"checks": gin.H{
			"database": dbStatus,
			"sessions": sessionStatus,
		},
	})
}

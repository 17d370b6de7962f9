package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-manager/internal/shared/server/respond"
	"resume-manager/internal/shared/telemetry"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
}

func (h *Handler) health(c *gin.Context) {
	status := h.Svc.Check(c.Request.Context())
	if !status.Healthy() {
		telemetry.Warn("health.unhealthy", map[string]any{"database": status.Database})
		respond.JSON(c, http.StatusServiceUnavailable, status)
		return
	}
	respond.OK(c, status)
}

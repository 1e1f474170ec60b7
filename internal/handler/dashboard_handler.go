package handler

import (
	"net/http"

	"crm-service/internal/middleware"
	"crm-service/internal/usecase"
	"crm-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// DashboardHandler serves the organizer's activity summary.
type DashboardHandler struct {
	dashboard *usecase.Dashboard
}

func NewDashboardHandler(dashboard *usecase.Dashboard) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats returns lead totals and 30-day activity for the actor's tenant.
func (h *DashboardHandler) Stats(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	stats, err := h.dashboard.Stats(c.Request().Context(), actor)
	if err != nil {
		return respondUsecaseError(c, log, err, "Failed to compute dashboard stats")
	}

	log.Info("Dashboard stats computed", zap.Uint("tenant_id", actor.TenantID))
	return c.JSON(http.StatusOK, stats)
}

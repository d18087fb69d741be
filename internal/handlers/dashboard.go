package handlers

import (
	"time"

	"github.com/ddproperty/ddproperty-api/internal/config"
	"github.com/ddproperty/ddproperty-api/internal/middleware"
	"github.com/ddproperty/ddproperty-api/internal/services"
	"github.com/ddproperty/ddproperty-api/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DashboardHandler handles backoffice counters
type DashboardHandler struct {
	Dashboard *services.DashboardService
}

// Stats handles GET /api/dashboard/stats
// @Summary Dashboard counters
// @Description Global for administrators, otherwise limited to the caller's properties
// @Tags Backoffice
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Dashboard.Stats(c.UserContext(), middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, stats, fiber.StatusOK)
}

// HealthHandler handles liveness and readiness probes
type HealthHandler struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  services.Pinger // nil when no cache server is configured
	Logger *zap.Logger
}

// Live handles GET /health
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /health/ready
// @Summary Readiness probe
// @Description Pings the database and the cache server
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health/ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.DB, h.Cache, h.Logger)
	status := fiber.StatusOK
	if !result.Healthy() {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}

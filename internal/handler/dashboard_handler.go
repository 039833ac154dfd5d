package handler

import (
	"strconv"

	"go-bom-graph/internal/service"
	"go-bom-graph/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const defaultActivityDays = 7

type DashboardHandler struct {
	service service.DashboardService
	maxDays int
	log     *logger.Logger
}

func NewDashboardHandler(s service.DashboardService, maxDays int, log *logger.Logger) *DashboardHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardHandler{service: s, maxDays: maxDays, log: log}
}

// GetActivity returns daily part and link change counts for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetActivity(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", strconv.Itoa(defaultActivityDays)))
	if err != nil || days <= 0 {
		days = defaultActivityDays
	}
	if h.maxDays > 0 && days > h.maxDays {
		days = h.maxDays
	}

	data, err := h.service.GetActivity(c.UserContext(), days)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetGraphStats(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(stats)
}

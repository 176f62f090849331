package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lribeiro/eventgate/internal/pkg/jobqueue"
)

// HandleQueueStats reports job queue health for the admin dashboard.
func HandleQueueStats(c *fiber.Ctx) error {
	manager := jobqueue.GetManager()
	queue := manager.GetQueue()

	stats, err := queue.GetJobStats(c.Context())
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load job stats")
	}
	pending, err := queue.GetQueueSize(c.Context())
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load queue size")
	}
	processing, err := queue.GetProcessingSize(c.Context())
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load processing size")
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"running":    manager.IsRunning(),
		"pending":    pending,
		"processing": processing,
		"stats":      stats,
	})
}

// HandleRunPlanExpirySweep triggers one plan expiry sweep outside the ticker.
func HandleRunPlanExpirySweep(c *fiber.Ctx) error {
	result, err := jobqueue.GetManager().RunPlanExpirySweepOnce()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Plan expiry sweep failed")
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"downgraded": result.Downgraded,
		"warned":     result.Warned,
	})
}

// HandleRunEventInactivationSweep triggers one event inactivation sweep.
func HandleRunEventInactivationSweep(c *fiber.Ctx) error {
	inactivated, err := jobqueue.GetManager().RunEventInactivationSweepOnce()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Event inactivation sweep failed")
	}
	return c.JSON(fiber.Map{"success": true, "inactivated": inactivated})
}

package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lribeiro/eventgate/app/repository"
	"github.com/lribeiro/eventgate/internal/pkg/entitlements"
	"github.com/lribeiro/eventgate/internal/pkg/usercontext"
)

// HandleGetCompany returns the authenticated company with its plan.
func HandleGetCompany(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	repos := repository.GetGlobalRepositories()
	company, err := repos.Company.GetByIDWithPlan(userCtx.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Company not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load company")
	}

	return c.JSON(fiber.Map{"success": true, "company": company})
}

// HandleGetUsage reports current consumption against the plan's ceilings.
func HandleGetUsage(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	tracker := entitlements.NewTracker(repository.GetGlobalRepositories())
	report, err := tracker.Report(userCtx.CompanyID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to build usage report")
	}

	return c.JSON(fiber.Map{"success": true, "usage": report})
}

// HandleListPlans returns the purchasable plan catalog. Public.
func HandleListPlans(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	plans, err := repos.Plan.List()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plans")
	}
	return c.JSON(fiber.Map{"success": true, "plans": plans})
}

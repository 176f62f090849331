package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lribeiro/eventgate/app/models"
	"github.com/lribeiro/eventgate/app/repository"
	"github.com/lribeiro/eventgate/internal/pkg/entitlements"
	"github.com/lribeiro/eventgate/internal/pkg/metrics/counter"
	"github.com/lribeiro/eventgate/internal/pkg/usercontext"
)

type createEventRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Capacity    int     `json:"capacity"`
	StartsAt    *string `json:"starts_at"`
	EndsAt      *string `json:"ends_at"`
}

// HandleCreateEvent creates an event for the caller's company, subject to the
// plan's event ceiling.
func HandleCreateEvent(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	var req createEventRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}

	repos := repository.GetGlobalRepositories()
	tracker := entitlements.NewTracker(repos)

	usage, err := tracker.GetUsage(userCtx.CompanyID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load usage")
	}
	limits, err := tracker.GetLimits(userCtx.CompanyID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plan limits")
	}
	if !limits.CanCreateEvent(usage) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "plan_limit_reached",
			"message": "Your plan's event limit has been reached. Upgrade to create more events.",
			"usage":   usage,
			"limits":  limits,
		})
	}

	event := &models.Event{
		CompanyID:   userCtx.CompanyID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    strings.TrimSpace(req.Location),
		Capacity:    req.Capacity,
		Status:      models.EventStatusActive,
	}
	startsAt, err := parseOptionalTime(req.StartsAt)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "starts_at must be RFC 3339")
	}
	endsAt, err := parseOptionalTime(req.EndsAt)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "ends_at must be RFC 3339")
	}
	event.StartsAt = startsAt
	event.EndsAt = endsAt

	if err := event.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false, "error": "validation_failed", "fields": validationMessages(err),
		})
	}

	if err := repos.Event.Create(event); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create event")
	}

	entitlements.InvalidateUsage(userCtx.CompanyID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "event": event})
}

// HandleGetEvent returns one of the caller's events with its occupancy.
func HandleGetEvent(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "invalid event id")
	}

	repos := repository.GetGlobalRepositories()
	event, err := repos.Event.GetByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Event not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load event")
	}
	if event.CompanyID != userCtx.CompanyID {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Event not found")
	}

	registrations, err := repos.Registration.CountActiveByEventID(event.ID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to count registrations")
	}

	checkIns, err := counter.GetEventCheckIns(event.ID)
	if err != nil {
		checkIns = 0
	}

	return c.JSON(fiber.Map{
		"success":              true,
		"event":                event,
		"active_registrations": registrations,
		"checked_in":           checkIns,
		"capacity":             event.Capacity,
	})
}

// HandleListEvents lists the caller company's events, paginated.
func HandleListEvents(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	repos := repository.GetGlobalRepositories()
	events, err := repos.Event.GetByCompanyID(userCtx.CompanyID, (page-1)*perPage, perPage)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list events")
	}
	total, err := repos.Event.CountByCompanyID(userCtx.CompanyID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to count events")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"events":   events,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

type updateEventStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateEventStatus transitions an event's status. Cancelled is final.
func HandleUpdateEventStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "invalid event id")
	}

	var req updateEventStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}

	repos := repository.GetGlobalRepositories()
	event, err := repos.Event.GetByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Event not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load event")
	}
	if event.CompanyID != userCtx.CompanyID {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Event not found")
	}

	if !event.CanTransitionTo(req.Status) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_transition",
			"message": "Cannot change status from " + event.Status + " to " + req.Status,
		})
	}

	if err := repos.Event.UpdateStatus(event.ID, req.Status); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update event")
	}
	event.Status = req.Status

	entitlements.InvalidateUsage(userCtx.CompanyID)

	return c.JSON(fiber.Map{"success": true, "event": event})
}

package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lribeiro/eventgate/app/models"
	"github.com/lribeiro/eventgate/app/repository"
	"github.com/lribeiro/eventgate/internal/pkg/admission"
	"github.com/lribeiro/eventgate/internal/pkg/entitlements"
	"github.com/lribeiro/eventgate/internal/pkg/jobqueue"
	"github.com/lribeiro/eventgate/internal/pkg/metrics/counter"
	"github.com/lribeiro/eventgate/internal/pkg/usercontext"
)

type validateRegistrationRequest struct {
	Document string `json:"document"`
}

type createRegistrationRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
}

// admissionStatus maps an admission failure to its HTTP status.
func admissionStatus(reason admission.Reason) int {
	switch reason {
	case admission.ReasonEventNotFound:
		return fiber.StatusNotFound
	case admission.ReasonDuplicateRegistration, admission.ReasonCapacityExceeded:
		return fiber.StatusConflict
	default:
		return fiber.StatusUnprocessableEntity
	}
}

// HandleValidateRegistration runs the admission checks without admitting.
func HandleValidateRegistration(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "invalid event id")
	}

	var req validateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}
	if models.CanonicalDocument(req.Document) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "document is required")
	}

	repos := repository.GetGlobalRepositories()
	if err := requireCompanyEvent(repos, eventID, userCtx.CompanyID); err != nil {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Event not found")
	}

	store := admission.NewRepositoryStore(repos.Event, repos.Registration)
	decision, err := admission.Validate(c.Context(), store, eventID, req.Document)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Validation failed")
	}

	if !decision.OK {
		return c.Status(admissionStatus(decision.Reason)).JSON(fiber.Map{
			"success":  false,
			"error":    string(decision.Reason),
			"message":  decision.Message,
			"decision": decision,
		})
	}
	return c.JSON(fiber.Map{"success": true, "decision": decision})
}

// HandleCreateRegistration validates and admits an attendee. The repository
// insert re-checks capacity and duplicates at the store level, so two
// concurrent admissions for the last seat cannot both succeed.
func HandleCreateRegistration(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "invalid event id")
	}

	var req createRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}

	repos := repository.GetGlobalRepositories()
	if err := requireCompanyEvent(repos, eventID, userCtx.CompanyID); err != nil {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Event not found")
	}

	store := admission.NewRepositoryStore(repos.Event, repos.Registration)
	decision, err := admission.Validate(c.Context(), store, eventID, req.Document)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Validation failed")
	}
	if !decision.OK {
		return c.Status(admissionStatus(decision.Reason)).JSON(fiber.Map{
			"success":  false,
			"error":    string(decision.Reason),
			"message":  decision.Message,
			"decision": decision,
		})
	}

	// Plan ceilings are checked after admission so the attendee-facing
	// admission errors keep priority over billing errors.
	tracker := entitlements.NewTracker(repos)
	usage, err := tracker.GetUsage(userCtx.CompanyID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load usage")
	}
	limits, err := tracker.GetLimits(userCtx.CompanyID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plan limits")
	}
	if !limits.CanAddRegistration(usage, decision.CurrentRegistrations) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "plan_limit_reached",
			"message": "Your plan's registration limit has been reached. Upgrade to admit more attendees.",
			"usage":   usage,
			"limits":  limits,
		})
	}

	reg := &models.Registration{
		EventID:    eventID,
		TicketCode: uuid.New().String(),
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Document:   models.CanonicalDocument(req.Document),
		Status:     models.RegistrationStatusConfirmed,
	}
	if err := reg.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false, "error": "validation_failed", "fields": validationMessages(err),
		})
	}

	if err := repos.Registration.CreateAdmitted(reg); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRegistration):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   string(admission.ReasonDuplicateRegistration),
				"message": "This document already has an active registration for the event",
			})
		case errors.Is(err, repository.ErrCapacityExceeded):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   string(admission.ReasonCapacityExceeded),
				"message": "The event is at full capacity",
			})
		default:
			return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to admit attendee")
		}
	}

	entitlements.InvalidateUsage(userCtx.CompanyID)

	payload := jobqueue.RegistrationEmailJobPayload{
		RegistrationID: reg.ID,
		Email:          reg.Email,
		AttendeeName:   reg.Name,
		TicketCode:     reg.TicketCode,
		EventTitle:     decision.Event.Title,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeRegistrationEmail, payload.ToMap()); err != nil {
		log.Errorf("[Registration] Failed to enqueue ticket email for registration %d: %v", reg.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "registration": reg})
}

// HandleListRegistrations lists an event's registrations, paginated.
func HandleListRegistrations(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "invalid event id")
	}

	repos := repository.GetGlobalRepositories()
	if err := requireCompanyEvent(repos, eventID, userCtx.CompanyID); err != nil {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Event not found")
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 50)
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	registrations, err := repos.Registration.ListByEventID(eventID, (page-1)*perPage, perPage)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list registrations")
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"registrations": registrations,
		"page":          page,
		"per_page":      perPage,
	})
}

// HandleCheckIn marks a ticket as used. A second check-in attempt conflicts.
func HandleCheckIn(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	ticketCode := strings.TrimSpace(c.Params("ticket"))
	if ticketCode == "" {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "ticket code is required")
	}

	repos := repository.GetGlobalRepositories()
	reg, err := repos.Registration.GetByTicketCode(ticketCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Ticket not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load ticket")
	}
	if err := requireCompanyEvent(repos, reg.EventID, userCtx.CompanyID); err != nil {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Ticket not found")
	}
	if reg.IsCancelled() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "registration_cancelled",
			"message": "This registration has been cancelled",
		})
	}

	if err := repos.Registration.CheckIn(reg.ID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrAlreadyCheckedIn) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "already_checked_in",
				"message": "This ticket has already been used",
			})
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Check-in failed")
	}

	if err := counter.AddEventCheckIn(reg.EventID); err != nil {
		log.Warnf("[CheckIn] Failed to bump check-in counter for event %d: %v", reg.EventID, err)
	}

	updated, err := repos.Registration.GetByID(reg.ID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load ticket")
	}
	return c.JSON(fiber.Map{"success": true, "registration": updated})
}

// HandleCancelRegistration cancels a registration, freeing its seat and its
// document for re-registration.
func HandleCancelRegistration(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	regID, err := parseIDParam(c, "registrationID")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "invalid registration id")
	}

	repos := repository.GetGlobalRepositories()
	reg, err := repos.Registration.GetByID(regID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Registration not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load registration")
	}
	if err := requireCompanyEvent(repos, reg.EventID, userCtx.CompanyID); err != nil {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Registration not found")
	}
	if reg.IsCancelled() {
		return c.JSON(fiber.Map{"success": true, "registration": reg})
	}

	if err := repos.Registration.Cancel(reg.ID); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to cancel registration")
	}

	entitlements.InvalidateUsage(userCtx.CompanyID)

	updated, err := repos.Registration.GetByID(reg.ID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load registration")
	}
	return c.JSON(fiber.Map{"success": true, "registration": updated})
}

// requireCompanyEvent confirms the event exists and belongs to the company.
func requireCompanyEvent(repos *repository.Repositories, eventID, companyID uint) error {
	event, err := repos.Event.GetByID(eventID)
	if err != nil {
		return err
	}
	if event.CompanyID != companyID {
		return gorm.ErrRecordNotFound
	}
	return nil
}

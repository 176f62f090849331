package controllers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lribeiro/eventgate/app/models"
	"github.com/lribeiro/eventgate/app/repository"
	"github.com/lribeiro/eventgate/internal/pkg/usercontext"
)

type signupRequest struct {
	CompanyName  string `json:"company_name" validate:"required,min=2,max=150"`
	CompanyEmail string `json:"company_email" validate:"required,email"`
	UserName     string `json:"user_name" validate:"required,min=2,max=100"`
	UserEmail    string `json:"user_email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleSignup creates a company on the free plan together with its first
// admin user and returns the user's freshly issued API key. The raw key is
// only ever returned here; the database keeps a hash.
func HandleSignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}
	if err := validator.New().Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false, "error": "validation_failed", "fields": validationMessages(err),
		})
	}

	repos := repository.GetGlobalRepositories()

	freePlan, err := repos.Plan.GetBySlug(models.PlanSlugFree)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Free plan missing")
	}

	company := &models.Company{
		Name:             strings.TrimSpace(req.CompanyName),
		Email:            strings.ToLower(strings.TrimSpace(req.CompanyEmail)),
		PlanID:           freePlan.ID,
		PlanStatus:       models.PlanStatusActive,
		PaymentStatus:    models.PaymentStatusActive,
		MaxMonthlyGuests: freePlan.MonthlyGuestAllowance,
	}
	if err := repos.Company.Create(company); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create company")
	}

	user, err := models.CreateUser(req.UserName, req.UserEmail, req.Password, company.ID)
	if err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	user.Role = models.ROLE_ADMIN

	rawKey, err := user.IssueAPIKey()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to issue API key")
	}
	if err := repos.User.Create(user); err != nil {
		return errorJSON(c, fiber.StatusConflict, "conflict", "A user with this email already exists")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"company": company,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
		"api_key": rawKey,
	})
}

// HandleLogin verifies staff credentials and rotates the user's API key.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}
	if err := validator.New().Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false, "error": "validation_failed", "fields": validationMessages(err),
		})
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Invalid credentials")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Login failed")
	}
	if !user.IsActive() || !user.CheckPassword(req.Password) {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Invalid credentials")
	}

	rawKey, err := user.IssueAPIKey()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to issue API key")
	}
	if err := repos.User.Update(user); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to store API key")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"role":       user.Role,
			"company_id": user.CompanyID,
		},
		"api_key": rawKey,
	})
}

// HandleRevokeAPIKey invalidates the caller's current API key.
func HandleRevokeAPIKey(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}

	user.RevokeAPIKey()
	if err := repos.User.Update(user); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to revoke API key")
	}

	return c.JSON(fiber.Map{"success": true, "revoked": true})
}

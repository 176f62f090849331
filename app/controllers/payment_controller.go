package controllers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lribeiro/eventgate/app/repository"
	"github.com/lribeiro/eventgate/internal/pkg/billing"
	"github.com/lribeiro/eventgate/internal/pkg/database"
	"github.com/lribeiro/eventgate/internal/pkg/usercontext"
)

type createPaymentRequest struct {
	PlanSlug      string `json:"plan_slug" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// HandleCreatePayment opens a charge at the payment provider for a plan
// upgrade and returns the pending transaction with the provider's payment
// data (PIX QR code or card checkout URL).
func HandleCreatePayment(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	var req createPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}
	if err := validator.New().Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false, "error": "validation_failed", "fields": validationMessages(err),
		})
	}

	repos := repository.GetGlobalRepositories()
	plan, err := repos.Plan.GetBySlug(strings.TrimSpace(req.PlanSlug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plan")
	}
	if plan.Price <= 0 {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "free_plan", "The selected plan has no charge")
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	txn, charge, err := svc.CreatePayment(c.Context(), userCtx.CompanyID, plan.ID, strings.ToLower(strings.TrimSpace(req.PaymentMethod)))
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrUnsupportedMethod):
			return errorJSON(c, fiber.StatusUnprocessableEntity, "unsupported_method", "Supported payment methods are pix and credit_card")
		case errors.Is(err, billing.ErrProviderFailure):
			return errorJSON(c, fiber.StatusBadGateway, "provider_failure", err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Company or plan not found")
		default:
			return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create payment")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"transaction": txn,
		"charge":      charge,
	})
}

// HandleGetPayment polls one transaction, reconciling against the provider
// when the local status is still pending.
func HandleGetPayment(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	txnID, err := parseIDParam(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "invalid transaction id")
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	txn, err := svc.PollTransaction(c.Context(), txnID)
	if err != nil && txn == nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Transaction not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to poll transaction")
	}
	if txn.CompanyID != userCtx.CompanyID {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Transaction not found")
	}
	if err != nil {
		// Provider lookup failed but the local record is intact. Return the
		// last known status so the client can keep polling.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success":      true,
			"transaction":  txn,
			"provider_err": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true, "transaction": txn})
}

// HandleSyncPaymentByExternalID rebuilds or reconciles a transaction from the
// provider's external reference. Admin only; used when a charge was created
// at the provider but the local write was lost.
func HandleSyncPaymentByExternalID(c *fiber.Ctx) error {
	externalID := strings.TrimSpace(c.Query("external_id"))
	if externalID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "external_id is required")
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	txn, err := svc.SyncByExternalID(c.Context(), externalID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return errorJSON(c, fiber.StatusNotFound, "not_found", "No charge found for this external reference")
		case errors.Is(err, billing.ErrProviderFailure):
			return errorJSON(c, fiber.StatusBadGateway, "provider_failure", err.Error())
		default:
			return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to sync transaction")
		}
	}

	return c.JSON(fiber.Map{"success": true, "transaction": txn})
}

package controllers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/lribeiro/eventgate/internal/pkg/billing"
	"github.com/lribeiro/eventgate/internal/pkg/database"
	"github.com/lribeiro/eventgate/internal/pkg/env"
)

// gatewayWebhookBody is the envelope the payment provider posts.
type gatewayWebhookBody struct {
	EventID   string                      `json:"event_id"`
	EventType string                      `json:"event_type"`
	Data      billing.WebhookNotification `json:"data"`
}

// HandlePaymentWebhook receives provider status pushes. The raw body is
// verified against the shared webhook secret before any state changes; the
// delivery is persisted either way so replays can be audited. Processing
// failures answer non-2xx so the provider retries the delivery.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := c.Body()
	signature := c.Get("X-Webhook-Signature")

	secret := billing.NewGatewayClientFromEnv().WebhookSecret
	signatureValid := billing.VerifyWebhookSignature(rawBody, signature, secret)
	// Unverifiable deliveries are only acceptable in local development.
	acceptDelivery := signatureValid || (secret == "" && env.IsDev())

	var body gatewayWebhookBody
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}
	if body.EventID == "" || body.Data.ID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "event_id and data.id are required")
	}

	svc := billing.NewServiceFromDB(database.GetDB())

	firstDelivery, event, err := svc.RecordWebhookEvent(c.Context(), billing.WebhookEventInput{
		ProviderEventID: body.EventID,
		EventType:       body.EventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		log.Errorf("[Webhook] Failed to record delivery %s: %v", body.EventID, err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to record webhook")
	}

	if !acceptDelivery {
		return errorJSON(c, fiber.StatusUnauthorized, "invalid_signature", "Webhook signature verification failed")
	}
	if !firstDelivery && event.ProcessedOK() {
		// Replayed delivery whose first processing already succeeded. A
		// replay after a failed processing falls through and retries.
		return c.JSON(fiber.Map{"success": true, "status": "already_received"})
	}

	txn, applyErr := svc.ApplyWebhook(c.Context(), body.Data, string(rawBody))
	if markErr := svc.MarkWebhookProcessed(c.Context(), event.ID, applyErr); markErr != nil {
		log.Errorf("[Webhook] Failed to mark delivery %s processed: %v", body.EventID, markErr)
	}

	if applyErr != nil {
		switch {
		case errors.Is(applyErr, gorm.ErrRecordNotFound):
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Unknown provider transaction")
		case errors.Is(applyErr, billing.ErrTerminalStatus):
			return errorJSON(c, fiber.StatusConflict, "terminal_status", "Transaction is already in a terminal status")
		case errors.Is(applyErr, billing.ErrUnknownProviderStatus):
			return errorJSON(c, fiber.StatusUnprocessableEntity, "unknown_status", "Unknown provider status")
		default:
			return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to apply webhook")
		}
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"status":      "processed",
		"transaction": txn,
	})
}

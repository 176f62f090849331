package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlePaymentWebhook_InvalidJSON(t *testing.T) {
	app := fiber.New()
	app.Post("/webhooks/payments", HandlePaymentWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader("not-json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandlePaymentWebhook_MissingIdentifiers(t *testing.T) {
	app := fiber.New()
	app.Post("/webhooks/payments", HandlePaymentWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(`{"event_type":"charge.status_changed"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	assert.Contains(t, string(body), "event_id and data.id are required")
}

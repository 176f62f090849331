package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCreatePayment_Unauthorized(t *testing.T) {
	app := fiber.New()
	app.Post("/payments", HandleCreatePayment)

	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{"plan_slug":"business","payment_method":"pix"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleCreatePayment_ValidationFailed(t *testing.T) {
	app := newAuthedApp(http.MethodPost, "/payments", HandleCreatePayment)

	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{"plan_slug":"business"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleGetPayment_InvalidID(t *testing.T) {
	app := newAuthedApp(http.MethodGet, "/payments/:id", HandleGetPayment)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/payments/abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleSyncPaymentByExternalID_MissingParam(t *testing.T) {
	app := fiber.New()
	app.Post("/admin/payments/sync", HandleSyncPaymentByExternalID)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/admin/payments/sync", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

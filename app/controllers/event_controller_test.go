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

func TestHandleCreateEvent_Unauthorized(t *testing.T) {
	app := fiber.New()
	app.Post("/events", HandleCreateEvent)

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"title":"Launch","capacity":100}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleGetEvent_InvalidID(t *testing.T) {
	app := newAuthedApp(http.MethodGet, "/events/:id", HandleGetEvent)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/events/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleUpdateEventStatus_InvalidID(t *testing.T) {
	app := newAuthedApp(http.MethodPatch, "/events/:id/status", HandleUpdateEventStatus)

	req := httptest.NewRequest(http.MethodPatch, "/events/zero0/status", strings.NewReader(`{"status":"inactive"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleListEvents_Unauthorized(t *testing.T) {
	app := fiber.New()
	app.Get("/events", HandleListEvents)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/events", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

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

	"github.com/lribeiro/eventgate/internal/pkg/admission"
	"github.com/lribeiro/eventgate/internal/pkg/usercontext"
)

// newAuthedApp wires the handler behind a stub middleware that injects a
// logged-in user context, the way the API key middleware does in production.
func newAuthedApp(method, path string, handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			UserID:     1,
			Username:   "tester",
			CompanyID:  7,
			IsLoggedIn: true,
		})
		return c.Next()
	})
	app.Add(method, path, handler)
	return app
}

func TestAdmissionStatusMapping(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, admissionStatus(admission.ReasonEventNotFound))
	assert.Equal(t, fiber.StatusConflict, admissionStatus(admission.ReasonDuplicateRegistration))
	assert.Equal(t, fiber.StatusConflict, admissionStatus(admission.ReasonCapacityExceeded))
	assert.Equal(t, fiber.StatusUnprocessableEntity, admissionStatus(admission.ReasonEventNotActive))
}

func TestHandleValidateRegistration_Unauthorized(t *testing.T) {
	app := fiber.New()
	app.Post("/events/:id/registrations/validate", HandleValidateRegistration)

	req := httptest.NewRequest(http.MethodPost, "/events/1/registrations/validate", strings.NewReader(`{"document":"12345678900"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleValidateRegistration_InvalidEventID(t *testing.T) {
	app := newAuthedApp(http.MethodPost, "/events/:id/registrations/validate", HandleValidateRegistration)

	req := httptest.NewRequest(http.MethodPost, "/events/notanumber/registrations/validate", strings.NewReader(`{"document":"12345678900"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleValidateRegistration_MissingDocument(t *testing.T) {
	app := newAuthedApp(http.MethodPost, "/events/:id/registrations/validate", HandleValidateRegistration)

	req := httptest.NewRequest(http.MethodPost, "/events/1/registrations/validate", strings.NewReader(`{"document":"---"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	assert.Contains(t, string(body), "document is required")
}

func TestHandleCreateRegistration_Unauthorized(t *testing.T) {
	app := fiber.New()
	app.Post("/events/:id/registrations", HandleCreateRegistration)

	req := httptest.NewRequest(http.MethodPost, "/events/1/registrations", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleCheckIn_Unauthorized(t *testing.T) {
	app := fiber.New()
	app.Post("/check-in/:ticket", HandleCheckIn)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/check-in/some-ticket", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleCancelRegistration_InvalidID(t *testing.T) {
	app := newAuthedApp(http.MethodDelete, "/registrations/:registrationID", HandleCancelRegistration)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/registrations/xyz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDParam(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/42", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/items/abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/items/0", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestParseOptionalTime(t *testing.T) {
	got, err := parseOptionalTime(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	empty := ""
	got, err = parseOptionalTime(&empty)
	require.NoError(t, err)
	assert.Nil(t, got)

	valid := "2026-03-01T18:00:00Z"
	got, err = parseOptionalTime(&valid)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC), got.UTC())

	invalid := "03/01/2026"
	_, err = parseOptionalTime(&invalid)
	assert.Error(t, err)
}

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	now := time.Date(2024, 5, 1, 12, 34, 56, 0, time.Local)
	formatted := formatTimePtr(&now)
	assert.IsType(t, "", formatted)

	expected := now.UTC().Format(time.RFC3339)
	assert.Equal(t, expected, formatted)
}

func TestValidationMessages(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
		Name  string `validate:"required,min=2"`
	}

	err := validator.New().Struct(payload{Email: "nope", Name: ""})
	require.Error(t, err)

	fields := validationMessages(err)
	assert.Equal(t, "email", fields["Email"])
	assert.Equal(t, "required", fields["Name"])

	assert.Empty(t, validationMessages(assert.AnError))
}

func TestErrorJSON(t *testing.T) {
	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return errorJSON(c, fiber.StatusConflict, "some_code", "something happened")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	assert.Contains(t, string(body), `"success":false`)
	assert.Contains(t, string(body), `"error":"some_code"`)
	assert.Contains(t, string(body), `"message":"something happened"`)
}

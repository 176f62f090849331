package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalDocument(t *testing.T) {
	assert.Equal(t, "12345678900", CanonicalDocument("123.456.789-00"))
	assert.Equal(t, "12345678900", CanonicalDocument(" 123 456 789 00 "))
	assert.Equal(t, "12345678900", CanonicalDocument("12345678900"))
	assert.Equal(t, "", CanonicalDocument("no digits here"))
	assert.Equal(t, "", CanonicalDocument(""))
}

func TestRegistrationIsCancelled(t *testing.T) {
	assert.True(t, (&Registration{Status: RegistrationStatusCancelled}).IsCancelled())
	assert.False(t, (&Registration{Status: RegistrationStatusConfirmed}).IsCancelled())
	assert.False(t, (&Registration{Status: RegistrationStatusPending}).IsCancelled())
}

func TestRegistrationValidate(t *testing.T) {
	r := &Registration{
		EventID:  1,
		Name:     "Ana Lima",
		Email:    "ana@example.com",
		Document: "12345678900",
		Status:   RegistrationStatusConfirmed,
	}
	assert.NoError(t, r.Validate())

	r.Document = "123.456.789-00"
	assert.Error(t, r.Validate(), "document must be canonical before validation")

	r.Document = "12345678900"
	r.Email = "nope"
	assert.Error(t, r.Validate())
}

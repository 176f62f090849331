package billing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"id":"prov-1","status":"approved"}`)
	secret := "whsec_test"

	sig := SignWebhookPayload(payload, secret)
	assert.True(t, VerifyWebhookSignature(payload, sig, secret))

	// Header casing and surrounding whitespace must not matter.
	assert.True(t, VerifyWebhookSignature(payload, "  "+strings.ToUpper(sig)+"  ", secret))
}

func TestVerifyWebhookSignatureRejects(t *testing.T) {
	payload := []byte(`{"id":"prov-1","status":"approved"}`)
	secret := "whsec_test"
	sig := SignWebhookPayload(payload, secret)

	assert.False(t, VerifyWebhookSignature([]byte(`{"id":"prov-1","status":"refused"}`), sig, secret))
	assert.False(t, VerifyWebhookSignature(payload, sig, "other-secret"))
	assert.False(t, VerifyWebhookSignature(payload, "not-hex", secret))
	assert.False(t, VerifyWebhookSignature(payload, "", secret))
	assert.False(t, VerifyWebhookSignature(payload, sig, ""))
}

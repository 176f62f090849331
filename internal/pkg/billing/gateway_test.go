package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayCreateCharge(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/charges", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"id":      "prov-1",
			"status":  "waiting_payment",
		})
	}))
	defer server.Close()

	client := &GatewayClient{
		APIKey:     "key-123",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	}

	charge, err := client.CreateCharge(context.Background(), ChargeRequest{
		Name:          "Plan upgrade: Business",
		Description:   "Subscription to the Business plan",
		Value:         4990,
		CustomerName:  "Acme Eventos",
		CustomerEmail: "billing@acme.example",
		ExpiresAt:     time.Now().Add(24 * time.Hour),
		PaymentTypes:  []string{"PIX"},
		CallbackURL:   "https://eventgate.example/api/v1/payments/webhook",
		ExternalID:    "company-10-plan-business-1756500000",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer key-123", gotAuth)
	assert.Equal(t, "prov-1", charge.ID)
	assert.Equal(t, "waiting_payment", charge.Status)
	assert.Equal(t, float64(4990), gotBody["value"])
	assert.Equal(t, []any{"PIX"}, gotBody["payment_types"])
	assert.Equal(t, "company-10-plan-business-1756500000", gotBody["external_id"])
	assert.Equal(t, "https://eventgate.example/api/v1/payments/webhook", gotBody["callback_url"])
}

func TestGatewayGetCharge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/charges/prov-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"id":      "prov-1",
			"status":  "paid",
			"paid_at": time.Now().UTC().Format(time.RFC3339),
		})
	}))
	defer server.Close()

	client := &GatewayClient{APIKey: "key-123", BaseURL: server.URL, HTTPClient: server.Client()}

	charge, err := client.GetCharge(context.Background(), "prov-1")
	require.NoError(t, err)
	assert.Equal(t, "paid", charge.Status)
	require.NotNil(t, charge.PaidAt)
}

func TestGatewayGetChargeByExternalID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "company-10-plan-business-1756500000", r.URL.Query().Get("external_id"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"id":          "prov-1",
			"status":      "approved",
			"external_id": "company-10-plan-business-1756500000",
		})
	}))
	defer server.Close()

	client := &GatewayClient{APIKey: "key-123", BaseURL: server.URL, HTTPClient: server.Client()}

	charge, err := client.GetChargeByExternalID(context.Background(), "company-10-plan-business-1756500000")
	require.NoError(t, err)
	assert.Equal(t, "company-10-plan-business-1756500000", charge.ExternalID)
}

func TestGatewayErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "customer_email is invalid",
		})
	}))
	defer server.Close()

	client := &GatewayClient{APIKey: "key-123", BaseURL: server.URL, HTTPClient: server.Client()}

	_, err := client.GetCharge(context.Background(), "prov-1")
	require.ErrorIs(t, err, ErrProviderFailure)
	assert.Contains(t, err.Error(), "customer_email is invalid")
}

func TestGatewayUnconfigured(t *testing.T) {
	client := &GatewayClient{}
	assert.False(t, client.Configured())

	_, err := client.CreateCharge(context.Background(), ChargeRequest{})
	assert.ErrorIs(t, err, ErrProviderFailure)
}

func TestNormalizeProviderStatus(t *testing.T) {
	cases := map[string]string{
		"approved":        "approved",
		"PAID":            "approved",
		"confirmed":       "approved",
		"refused":         "refused",
		"declined":        "refused",
		"failed":          "refused",
		"cancelled":       "cancelled",
		"canceled":        "cancelled",
		"expired":         "expired",
		"waiting_payment": "waiting_payment",
		"pending":         "waiting_payment",
		"processing":      "waiting_payment",
		"sideways":        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeProviderStatus(in), "status %q", in)
	}
}

package billing

import (
	"encoding/json"
	"time"
)

// ChargeRequest is the provider-facing payment creation payload. Value is in
// minor currency units.
type ChargeRequest struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Value         int64     `json:"value"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	ExpiresAt     time.Time `json:"expires_at"`
	PaymentTypes  []string  `json:"payment_types"`
	CallbackURL   string    `json:"callback_url"`
	ExternalID    string    `json:"external_id"`
}

// ProviderCharge is the provider's view of a charge, with the raw response
// body kept for auditing.
type ProviderCharge struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	ExternalID string          `json:"external_id"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// WebhookNotification is the provider-pushed status update.
type WebhookNotification struct {
	ID     string     `json:"id"`
	Status string     `json:"status"`
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

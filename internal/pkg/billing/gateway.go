package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lribeiro/eventgate/internal/pkg/constants"
	"github.com/lribeiro/eventgate/internal/pkg/env"
)

// ErrProviderFailure wraps any non-success answer from the payment gateway.
var ErrProviderFailure = errors.New("payment gateway request failed")

// GatewayClient talks to the external PIX/credit-card payment gateway.
type GatewayClient struct {
	APIKey        string
	BaseURL       string
	CallbackURL   string
	WebhookSecret string

	HTTPClient *http.Client
}

// NewGatewayClientFromEnv builds a client from GATEWAY_* environment values.
func NewGatewayClientFromEnv() *GatewayClient {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	callbackURL := strings.TrimSpace(env.GetEnv("GATEWAY_CALLBACK_URL", ""))
	if callbackURL == "" && base != "" {
		callbackURL = base + constants.APIRoute + constants.APIV1Route + constants.PaymentWebhookPath
	}

	return &GatewayClient{
		APIKey:        strings.TrimSpace(env.GetEnv("GATEWAY_API_KEY", "")),
		BaseURL:       strings.TrimRight(env.GetEnv("GATEWAY_API_URL", ""), "/"),
		CallbackURL:   callbackURL,
		WebhookSecret: strings.TrimSpace(env.GetEnv("GATEWAY_WEBHOOK_SECRET", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Configured reports whether the client can reach a real gateway.
func (c *GatewayClient) Configured() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

// chargeEnvelope is the gateway's JSON answer for charge endpoints.
type chargeEnvelope struct {
	Success bool       `json:"success"`
	Error   string     `json:"error"`
	ID      string     `json:"id"`
	Status  string     `json:"status"`
	PaidAt  *time.Time `json:"paid_at"`

	ExternalID string `json:"external_id"`
}

// CreateCharge submits a payment request and returns the provider charge.
func (c *GatewayClient) CreateCharge(ctx context.Context, req ChargeRequest) (*ProviderCharge, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: GATEWAY_API_URL / GATEWAY_API_KEY not configured", ErrProviderFailure)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	return c.doCharge(httpReq)
}

// GetCharge queries the authoritative charge status by provider id.
func (c *GatewayClient) GetCharge(ctx context.Context, providerID string) (*ProviderCharge, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: GATEWAY_API_URL / GATEWAY_API_KEY not configured", ErrProviderFailure)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/charges/"+providerID, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	return c.doCharge(httpReq)
}

// GetChargeByExternalID resolves a charge through the caller-supplied
// external reference. Used to reconcile orphaned provider-side payments that
// have no local transaction row.
func (c *GatewayClient) GetChargeByExternalID(ctx context.Context, externalID string) (*ProviderCharge, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: GATEWAY_API_URL / GATEWAY_API_KEY not configured", ErrProviderFailure)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/charges?external_id="+externalID, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	return c.doCharge(httpReq)
}

func (c *GatewayClient) doCharge(req *http.Request) (*ProviderCharge, error) {
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrProviderFailure, err)
	}

	var envl chargeEnvelope
	if err := json.Unmarshal(raw, &envl); err != nil {
		return nil, fmt.Errorf("%w: decoding response (http %d): %v", ErrProviderFailure, res.StatusCode, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 || !envl.Success {
		msg := envl.Error
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return nil, fmt.Errorf("%w: http %d: %s", ErrProviderFailure, res.StatusCode, msg)
	}
	if envl.ID == "" {
		return nil, fmt.Errorf("%w: response missing charge id", ErrProviderFailure)
	}

	return &ProviderCharge{
		ID:         envl.ID,
		Status:     envl.Status,
		ExternalID: envl.ExternalID,
		PaidAt:     envl.PaidAt,
		Raw:        raw,
	}, nil
}

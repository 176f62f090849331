package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/lribeiro/eventgate/app/models"
	"github.com/lribeiro/eventgate/internal/pkg/env"
)

const (
	chargeExpiry    = 24 * time.Hour
	pixHeuristicAge = 2 * time.Minute
)

var (
	// ErrTerminalStatus is returned when a reconciliation attempt would move
	// a transaction out of a terminal state.
	ErrTerminalStatus = errors.New("transaction already in a terminal status")

	// ErrUnsupportedMethod is returned for payment methods other than pix and
	// credit_card.
	ErrUnsupportedMethod = errors.New("unsupported payment method")

	// ErrUnknownProviderStatus is returned when the provider sends a status
	// outside the known vocabulary.
	ErrUnknownProviderStatus = errors.New("unknown provider status")
)

// Gateway is the outbound surface of the payment provider.
type Gateway interface {
	Configured() bool
	CreateCharge(ctx context.Context, req ChargeRequest) (*ProviderCharge, error)
	GetCharge(ctx context.Context, providerID string) (*ProviderCharge, error)
	GetChargeByExternalID(ctx context.Context, externalID string) (*ProviderCharge, error)
}

// Service issues payment intents and reconciles provider status updates onto
// the local transaction and company records.
type Service struct {
	repo    Repository
	gateway Gateway

	// pollHeuristic enables the time-based PIX auto-approval used where no
	// real provider status API is reachable. It mutates state from elapsed
	// time alone, so it stays off unless explicitly enabled.
	pollHeuristic bool
}

// NewService creates a billing service from injected collaborators.
func NewService(repo Repository, gateway Gateway) *Service {
	return &Service{repo: repo, gateway: gateway}
}

// NewServiceFromDB creates a billing service wired from the environment.
func NewServiceFromDB(db *gorm.DB) *Service {
	s := NewService(NewRepository(db), NewGatewayClientFromEnv())
	s.pollHeuristic = env.GetEnv("GATEWAY_POLL_HEURISTIC", "false") == "true"
	return s
}

// EnablePollHeuristic turns on the PIX age heuristic for the poll path.
func (s *Service) EnablePollHeuristic() {
	s.pollHeuristic = true
}

// CreatePayment resolves company and plan, submits a charge to the gateway
// and persists the pending transaction the reconciler will later update.
func (s *Service) CreatePayment(ctx context.Context, companyID, planID uint, method string) (*models.PaymentTransaction, *ProviderCharge, error) {
	if !isSupportedMethod(method) {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}

	company, err := s.repo.GetCompany(companyID)
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.repo.GetPlan(planID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	externalID := buildExternalID(company.ID, plan.Slug, now)

	charge, err := s.gateway.CreateCharge(ctx, ChargeRequest{
		Name:          fmt.Sprintf("Plan upgrade: %s", plan.Name),
		Description:   fmt.Sprintf("Subscription to the %s plan", plan.Name),
		Value:         plan.PriceCents(),
		CustomerName:  company.Name,
		CustomerEmail: company.Email,
		ExpiresAt:     now.Add(chargeExpiry),
		PaymentTypes:  providerPaymentTypes(method),
		CallbackURL:   s.callbackURL(),
		ExternalID:    externalID,
	})
	if err != nil {
		return nil, nil, err
	}

	txn := &models.PaymentTransaction{
		CompanyID:             company.ID,
		PlanID:                plan.ID,
		ProviderTransactionID: charge.ID,
		ExternalID:            externalID,
		Amount:                plan.PriceCents(),
		PaymentMethod:         method,
		Status:                models.TransactionStatusWaitingPayment,
		PaymentData:           string(charge.Raw),
		ExpiresAt:             now.Add(chargeExpiry),
	}
	if err := s.repo.CreateTransaction(txn); err != nil {
		// The provider-side charge now has no local record. SyncByExternalID
		// can rebuild it from the external reference.
		log.Errorf("[Billing] charge %s persisted at provider but local write failed (external_id=%s): %v",
			charge.ID, externalID, err)
		return nil, charge, fmt.Errorf("persisting transaction for charge %s: %w", charge.ID, err)
	}

	return txn, charge, nil
}

// ApplyWebhook reconciles a provider-pushed status update. Replaying a
// terminal status that is already applied is a no-op; conflicting transitions
// out of a terminal state return ErrTerminalStatus.
func (s *Service) ApplyWebhook(ctx context.Context, n WebhookNotification, rawPayload string) (*models.PaymentTransaction, error) {
	_ = ctx
	txn, err := s.repo.GetTransactionByProviderID(n.ID)
	if err != nil {
		return nil, err
	}

	status := normalizeProviderStatus(n.Status)
	if status == "" {
		return txn, fmt.Errorf("%w: %q", ErrUnknownProviderStatus, n.Status)
	}

	return s.applyStatus(txn, status, n.PaidAt, rawPayload)
}

// PollTransaction is the pull-based reconciliation path. Terminal
// transactions return immediately. With a configured gateway the provider's
// answer is authoritative, even past the local charge deadline; local expiry
// and the PIX age heuristic apply only when no provider can be asked.
func (s *Service) PollTransaction(ctx context.Context, id uint) (*models.PaymentTransaction, error) {
	txn, err := s.repo.GetTransactionByID(id)
	if err != nil {
		return nil, err
	}
	if txn.IsTerminal() {
		return txn, nil
	}

	if s.gateway.Configured() {
		charge, err := s.gateway.GetCharge(ctx, txn.ProviderTransactionID)
		if err != nil {
			return txn, err
		}
		status := normalizeProviderStatus(charge.Status)
		if status == "" {
			return txn, fmt.Errorf("%w: %q", ErrUnknownProviderStatus, charge.Status)
		}
		return s.applyStatus(txn, status, charge.PaidAt, string(charge.Raw))
	}

	now := time.Now()
	if now.After(txn.ExpiresAt) {
		if _, err := s.repo.MarkFailed(txn, models.TransactionStatusExpired, txn.PaymentData); err != nil {
			return txn, err
		}
		return s.repo.GetTransactionByID(id)
	}

	if s.pollHeuristic && txn.PaymentMethod == models.PaymentMethodPix &&
		now.Sub(txn.CreatedAt) > pixHeuristicAge {
		log.Warnf("[Billing] presuming PIX transaction %d approved after %s without provider confirmation",
			txn.ID, now.Sub(txn.CreatedAt).Round(time.Second))
		return s.applyStatus(txn, models.TransactionStatusApproved, nil, txn.PaymentData)
	}

	return txn, nil
}

// SyncByExternalID reconciles a charge by its external reference, rebuilding
// the local transaction row when the creation-time persistence write was
// lost.
func (s *Service) SyncByExternalID(ctx context.Context, externalID string) (*models.PaymentTransaction, error) {
	txn, err := s.repo.GetTransactionByExternalID(externalID)
	if err == nil {
		return s.PollTransaction(ctx, txn.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	charge, err := s.gateway.GetChargeByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	companyID, planSlug, ok := parseExternalID(externalID)
	if !ok {
		return nil, fmt.Errorf("unparseable external reference %q", externalID)
	}
	plan, err := s.repo.GetPlanBySlug(planSlug)
	if err != nil {
		return nil, err
	}

	txn = &models.PaymentTransaction{
		CompanyID:             companyID,
		PlanID:                plan.ID,
		ProviderTransactionID: charge.ID,
		ExternalID:            externalID,
		Amount:                plan.PriceCents(),
		PaymentMethod:         models.PaymentMethodPix,
		Status:                models.TransactionStatusWaitingPayment,
		PaymentData:           string(charge.Raw),
		ExpiresAt:             time.Now().Add(chargeExpiry),
	}
	if err := s.repo.CreateTransaction(txn); err != nil {
		return nil, err
	}

	status := normalizeProviderStatus(charge.Status)
	if status == "" || status == models.TransactionStatusWaitingPayment {
		return txn, nil
	}
	return s.applyStatus(txn, status, charge.PaidAt, string(charge.Raw))
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		return false, nil, errors.New("provider event id is required")
	}

	event := &models.PaymentWebhookEvent{
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook event id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

func (s *Service) applyStatus(txn *models.PaymentTransaction, status string, paidAt *time.Time, rawPayload string) (*models.PaymentTransaction, error) {
	if txn.IsTerminal() {
		if txn.Status == status {
			return txn, nil
		}
		return txn, ErrTerminalStatus
	}
	if status == models.TransactionStatusWaitingPayment {
		// Still pending; keep the freshest provider payload on record.
		if rawPayload != "" && rawPayload != txn.PaymentData {
			if err := s.repo.UpdatePaymentData(txn, rawPayload); err != nil {
				return txn, err
			}
		}
		return txn, nil
	}

	var (
		applied bool
		err     error
	)
	if status == models.TransactionStatusApproved {
		applied, err = s.repo.ApproveAndUpgrade(txn, paidAt, rawPayload, time.Now())
	} else {
		applied, err = s.repo.MarkFailed(txn, status, rawPayload)
	}
	if err != nil {
		return txn, err
	}
	if applied {
		return txn, nil
	}

	// Guard lost a race with a concurrent reconciliation. Re-read and apply
	// the terminal rules against the winner.
	current, err := s.repo.GetTransactionByID(txn.ID)
	if err != nil {
		return txn, err
	}
	if current.Status == status {
		return current, nil
	}
	return current, ErrTerminalStatus
}

func (s *Service) callbackURL() string {
	if gc, ok := s.gateway.(*GatewayClient); ok {
		return gc.CallbackURL
	}
	return ""
}

func buildExternalID(companyID uint, planSlug string, now time.Time) string {
	return fmt.Sprintf("company-%d-plan-%s-%d", companyID, planSlug, now.Unix())
}

// parseExternalID inverts buildExternalID.
func parseExternalID(externalID string) (companyID uint, planSlug string, ok bool) {
	parts := strings.Split(externalID, "-")
	if len(parts) < 5 || parts[0] != "company" || parts[2] != "plan" {
		return 0, "", false
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, "", false
	}
	planSlug = strings.Join(parts[3:len(parts)-1], "-")
	return uint(id), planSlug, planSlug != ""
}

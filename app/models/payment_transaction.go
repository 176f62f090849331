package models

import (
	"time"
)

const (
	PaymentMethodPix        = "pix"
	PaymentMethodCreditCard = "credit_card"
)

const (
	TransactionStatusWaitingPayment = "waiting_payment"
	TransactionStatusApproved       = "approved"
	TransactionStatusRefused        = "refused"
	TransactionStatusCancelled      = "cancelled"
	TransactionStatusExpired        = "expired"
)

// PaymentTransaction tracks one provider charge for a plan upgrade. It is
// created in waiting_payment and mutated only by the reconciler; once a
// terminal status is reached it never changes again.
type PaymentTransaction struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	CompanyID             uint       `gorm:"not null;index" json:"company_id"`
	Company               *Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	PlanID                uint       `gorm:"not null;index" json:"plan_id"`
	Plan                  *Plan      `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	ProviderTransactionID string     `gorm:"type:varchar(191);uniqueIndex;not null" json:"provider_transaction_id"`
	ExternalID            string     `gorm:"type:varchar(191);uniqueIndex;not null" json:"external_id"`
	Amount                int64      `gorm:"not null" json:"amount"`
	PaymentMethod         string     `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status                string     `gorm:"type:varchar(32);not null;default:'waiting_payment';index" json:"status"`
	PaymentData           string     `gorm:"type:longtext" json:"-"`
	PaidAt                *time.Time `gorm:"type:timestamp;default:null" json:"paid_at"`
	ExpiresAt             time.Time  `gorm:"type:timestamp;not null" json:"expires_at"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminalTransactionStatus reports whether status permits no further
// transition.
func IsTerminalTransactionStatus(status string) bool {
	switch status {
	case TransactionStatusApproved, TransactionStatusRefused,
		TransactionStatusCancelled, TransactionStatusExpired:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the transaction reached a final status.
func (t *PaymentTransaction) IsTerminal() bool {
	return IsTerminalTransactionStatus(t.Status)
}

// PaymentWebhookEvent records every received provider webhook delivery,
// including replays, before any state mutation happens.
type PaymentWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ProviderEventID string     `gorm:"type:varchar(191);uniqueIndex;not null" json:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(64)" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext" json:"payload_json"`
	SignatureValid  bool       `gorm:"default:false" json:"signature_valid"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at"`
	ProcessingError string     `gorm:"type:text" json:"processing_error,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// ProcessedOK reports whether the delivery was processed without error. A
// replay of a delivery that failed processing must be handled again.
func (e *PaymentWebhookEvent) ProcessedOK() bool {
	return e.ProcessedAt != nil && e.ProcessingError == ""
}

package billing

import (
	"strings"

	"github.com/lribeiro/eventgate/app/models"
)

// normalizeProviderStatus maps provider status vocabulary onto the local
// transaction state machine.
func normalizeProviderStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved", "paid", "confirmed":
		return models.TransactionStatusApproved
	case "refused", "declined", "failed":
		return models.TransactionStatusRefused
	case "cancelled", "canceled":
		return models.TransactionStatusCancelled
	case "expired":
		return models.TransactionStatusExpired
	case "waiting_payment", "pending", "processing":
		return models.TransactionStatusWaitingPayment
	default:
		return ""
	}
}

func isSupportedMethod(method string) bool {
	switch method {
	case models.PaymentMethodPix, models.PaymentMethodCreditCard:
		return true
	default:
		return false
	}
}

func providerPaymentTypes(method string) []string {
	if method == models.PaymentMethodCreditCard {
		return []string{"CREDIT_CARD"}
	}
	return []string{"PIX"}
}

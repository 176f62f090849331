package billing

import (
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lribeiro/eventgate/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the billing service. Status
// transitions are guarded so a transaction that already reached a terminal
// state is never mutated again, regardless of delivery order or replays.
type Repository interface {
	CreateTransaction(txn *models.PaymentTransaction) error
	GetTransactionByID(id uint) (*models.PaymentTransaction, error)
	GetTransactionByProviderID(providerID string) (*models.PaymentTransaction, error)
	GetTransactionByExternalID(externalID string) (*models.PaymentTransaction, error)
	// ApproveAndUpgrade marks the transaction approved and upgrades the
	// owning company in one DB transaction. Returns false without error when
	// the guard found the transaction already out of waiting_payment.
	ApproveAndUpgrade(txn *models.PaymentTransaction, paidAt *time.Time, rawPayload string, now time.Time) (bool, error)
	// MarkFailed moves the transaction to a failing terminal status without
	// touching the company. Same guard semantics as ApproveAndUpgrade.
	MarkFailed(txn *models.PaymentTransaction, status, rawPayload string) (bool, error)
	// UpdatePaymentData refreshes the stored raw provider payload while the
	// transaction is still waiting_payment.
	UpdatePaymentData(txn *models.PaymentTransaction, rawPayload string) error
	GetCompany(id uint) (*models.Company, error)
	GetPlan(id uint) (*models.Plan, error)
	GetPlanBySlug(slug string) (*models.Plan, error)
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateTransaction(txn *models.PaymentTransaction) error {
	return r.db.Create(txn).Error
}

func (r *gormRepository) GetTransactionByID(id uint) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := r.db.First(&txn, id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *gormRepository) GetTransactionByProviderID(providerID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := r.db.Where("provider_transaction_id = ?", providerID).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *gormRepository) GetTransactionByExternalID(externalID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := r.db.Where("external_id = ?", externalID).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *gormRepository) ApproveAndUpgrade(txn *models.PaymentTransaction, paidAt *time.Time, rawPayload string, now time.Time) (bool, error) {
	applied := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		when := paidAt
		if when == nil {
			when = &now
		}
		res := tx.Model(&models.PaymentTransaction{}).
			Where("id = ? AND status = ?", txn.ID, models.TransactionStatusWaitingPayment).
			Updates(map[string]any{
				"status":       models.TransactionStatusApproved,
				"paid_at":      when,
				"payment_data": rawPayload,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already terminal; leave everything untouched.
			return nil
		}
		applied = true

		var plan models.Plan
		if err := tx.First(&plan, txn.PlanID).Error; err != nil {
			return err
		}

		nextDue := now.AddDate(0, 1, 0)
		return tx.Model(&models.Company{}).
			Where("id = ?", txn.CompanyID).
			Updates(map[string]any{
				"plan_id":            txn.PlanID,
				"plan_status":        models.PlanStatusActive,
				"payment_status":     models.PaymentStatusActive,
				"last_payment_date":  now,
				"next_payment_due":   nextDue,
				"max_monthly_guests": plan.MonthlyGuestAllowance,
			}).Error
	})
	if err != nil {
		return false, err
	}
	if applied {
		txn.Status = models.TransactionStatusApproved
	}
	return applied, nil
}

func (r *gormRepository) MarkFailed(txn *models.PaymentTransaction, status, rawPayload string) (bool, error) {
	res := r.db.Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", txn.ID, models.TransactionStatusWaitingPayment).
		Updates(map[string]any{
			"status":       status,
			"payment_data": rawPayload,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		txn.Status = status
		return true, nil
	}
	return false, nil
}

func (r *gormRepository) UpdatePaymentData(txn *models.PaymentTransaction, rawPayload string) error {
	err := r.db.Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", txn.ID, models.TransactionStatusWaitingPayment).
		Update("payment_data", rawPayload).Error
	if err == nil {
		txn.PaymentData = rawPayload
	}
	return err
}

func (r *gormRepository) GetCompany(id uint) (*models.Company, error) {
	var company models.Company
	if err := r.db.First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *gormRepository) GetPlan(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) GetPlanBySlug(slug string) (*models.Plan, error) {
	return models.FindPlanBySlug(r.db, slug)
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	if err := r.db.Create(event).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			var existing models.PaymentWebhookEvent
			if ferr := r.db.Where("provider_event_id = ?", event.ProviderEventID).First(&existing).Error; ferr != nil {
				return false, nil, ferr
			}
			return false, &existing, nil
		}
		return false, nil, err
	}
	return true, event, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	return r.db.Model(&models.PaymentWebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"processed_at":     now,
			"processing_error": processingError,
		}).Error
}

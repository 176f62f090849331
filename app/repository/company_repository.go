package repository

import (
	"time"

	"github.com/lribeiro/eventgate/app/models"
	"gorm.io/gorm"
)

// companyRepository implements the CompanyRepository interface
type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository instance
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

// Create creates a new company in the database
func (r *companyRepository) Create(company *models.Company) error {
	return r.db.Create(company).Error
}

// GetByID retrieves a company by its ID
func (r *companyRepository) GetByID(id uint) (*models.Company, error) {
	var company models.Company
	err := r.db.First(&company, id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetByIDWithPlan retrieves a company with its plan preloaded
func (r *companyRepository) GetByIDWithPlan(id uint) (*models.Company, error) {
	var company models.Company
	err := r.db.Preload("Plan").First(&company, id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Update updates an existing company
func (r *companyRepository) Update(company *models.Company) error {
	return r.db.Save(company).Error
}

func (r *companyRepository) FindPaymentExpired(now time.Time, freePlanID uint) ([]models.Company, error) {
	var companies []models.Company
	err := r.db.
		Where("next_payment_due IS NOT NULL AND next_payment_due < ?", now).
		Where("plan_id <> ?", freePlanID).
		Where("payment_status = ?", models.PaymentStatusActive).
		Find(&companies).Error
	return companies, err
}

func (r *companyRepository) DowngradeExpired(now time.Time, freePlanID uint, guestAllowance int) (int64, error) {
	res := r.db.Model(&models.Company{}).
		Where("next_payment_due IS NOT NULL AND next_payment_due < ?", now).
		Where("plan_id <> ?", freePlanID).
		Where("payment_status = ?", models.PaymentStatusActive).
		Updates(map[string]any{
			"plan_id":            freePlanID,
			"plan_status":        models.PlanStatusActive,
			"payment_status":     models.PaymentStatusExpired,
			"max_monthly_guests": guestAllowance,
			"updated_at":         now,
		})
	return res.RowsAffected, res.Error
}

func (r *companyRepository) FindPaymentDueWithin(now time.Time, window time.Duration) ([]models.Company, error) {
	var companies []models.Company
	err := r.db.
		Where("next_payment_due IS NOT NULL AND next_payment_due > ? AND next_payment_due < ?", now, now.Add(window)).
		Where("payment_status = ?", models.PaymentStatusActive).
		Find(&companies).Error
	return companies, err
}

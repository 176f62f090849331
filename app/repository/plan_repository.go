package repository

import (
	"github.com/lribeiro/eventgate/app/models"
	"gorm.io/gorm"
)

// planRepository implements the PlanRepository interface. Plans are read-only
// reference data.
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// GetByID retrieves a plan by its ID
func (r *planRepository) GetByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetBySlug retrieves a plan by its stable slug key
func (r *planRepository) GetBySlug(slug string) (*models.Plan, error) {
	return models.FindPlanBySlug(r.db, slug)
}

// List returns all plans ordered by price
func (r *planRepository) List() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Order("price ASC").Find(&plans).Error
	return plans, err
}

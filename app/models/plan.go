package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

const (
	PlanSlugFree     = "free"
	PlanSlugStarter  = "starter"
	PlanSlugBusiness = "business"
)

// Plan is immutable reference data describing a subscription tier.
// Nil limits mean unlimited.
type Plan struct {
	ID                       uint      `gorm:"primaryKey" json:"id"`
	Name                     string    `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	Slug                     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug" validate:"required,min=2,max=50"`
	Price                    float64   `gorm:"type:decimal(10,2);not null;default:0" json:"price" validate:"gte=0"`
	MaxEvents                *int      `gorm:"default:null" json:"max_events"`
	MaxRegistrationsPerEvent *int      `gorm:"default:null" json:"max_registrations_per_event"`
	MaxTotalRegistrations    *int      `gorm:"default:null" json:"max_total_registrations"`
	MonthlyGuestAllowance    int       `gorm:"not null;default:50" json:"monthly_guest_allowance"`
	CreatedAt                time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PriceCents returns the plan price in minor currency units as charged
// at the payment provider.
func (p *Plan) PriceCents() int64 {
	return int64(math.Round(p.Price * 100))
}

// IsFree reports whether this is the free tier.
func (p *Plan) IsFree() bool {
	return p.Slug == PlanSlugFree
}

// FindPlanBySlug resolves a plan by its stable slug key.
func FindPlanBySlug(db *gorm.DB, slug string) (*Plan, error) {
	var plan Plan
	if err := db.Where("slug = ?", slug).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PlanStatusActive    = "active"
	PlanStatusSuspended = "suspended"

	PaymentStatusActive  = "active"
	PaymentStatusExpired = "expired"
)

// Company is the tenant that owns events and a subscription plan.
type Company struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Email            string         `gorm:"type:varchar(200);not null" json:"email" validate:"required,email"`
	PlanID           uint           `gorm:"not null;index" json:"plan_id"`
	Plan             *Plan          `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	PlanStatus       string         `gorm:"type:varchar(32);not null;default:'active'" json:"plan_status" validate:"oneof=active suspended"`
	PaymentStatus    string         `gorm:"type:varchar(32);not null;default:'active';index" json:"payment_status" validate:"oneof=active expired"`
	LastPaymentDate  *time.Time     `gorm:"type:timestamp;default:null" json:"last_payment_date"`
	NextPaymentDue   *time.Time     `gorm:"type:timestamp;default:null;index" json:"next_payment_due"`
	MaxMonthlyGuests int            `gorm:"not null;default:50" json:"max_monthly_guests"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsPaymentExpired reports whether the subscription payment has lapsed.
func (c *Company) IsPaymentExpired() bool {
	return c.PaymentStatus == PaymentStatusExpired
}

// PaymentDueWithin reports whether the next payment falls due inside the
// given window from now, and is still in the future.
func (c *Company) PaymentDueWithin(now time.Time, window time.Duration) bool {
	if c.NextPaymentDue == nil {
		return false
	}
	due := *c.NextPaymentDue
	return due.After(now) && due.Before(now.Add(window))
}

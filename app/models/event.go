package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	EventStatusActive    = "active"
	EventStatusInactive  = "inactive"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

// Event is a registerable happening owned by a company.
// Non-cancelled registrations for an active event must never exceed Capacity;
// the registration repository enforces that at insert time.
type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CompanyID   uint           `gorm:"not null;index" json:"company_id"`
	Company     *Company       `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=3,max=200"`
	Description string         `gorm:"type:text" json:"description" validate:"max=5000"`
	Location    string         `gorm:"type:varchar(255)" json:"location" validate:"max=255"`
	Capacity    int            `gorm:"not null;default:0" json:"capacity" validate:"gte=0"`
	Status      string         `gorm:"type:varchar(32);not null;default:'active';index" json:"status" validate:"oneof=active inactive completed cancelled"`
	StartsAt    *time.Time     `gorm:"type:timestamp;default:null" json:"starts_at"`
	EndsAt      *time.Time     `gorm:"type:timestamp;default:null;index" json:"ends_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e *Event) Validate() error {
	v := validator.New()
	return v.Struct(e)
}

// IsActive reports whether the event accepts new registrations.
func (e *Event) IsActive() bool {
	return e.Status == EventStatusActive
}

// IsCancelled reports whether the event reached its immutable final state.
func (e *Event) IsCancelled() bool {
	return e.Status == EventStatusCancelled
}

// CanTransitionTo guards event status changes. Cancelled is final.
func (e *Event) CanTransitionTo(status string) bool {
	if e.IsCancelled() {
		return false
	}
	switch status {
	case EventStatusActive, EventStatusInactive, EventStatusCompleted, EventStatusCancelled:
		return status != e.Status
	default:
		return false
	}
}

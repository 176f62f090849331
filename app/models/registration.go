package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	RegistrationStatusConfirmed = "confirmed"
	RegistrationStatusPending   = "pending"
	RegistrationStatusCancelled = "cancelled"
)

// Registration is an attendee admitted to an event. At most one non-cancelled
// registration may exist per (event, canonical document) pair; the
// active_document generated column backs the unique index that enforces it.
// Registrations are never deleted, only cancelled.
type Registration struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventID     uint           `gorm:"not null;index" json:"event_id"`
	Event       *Event         `gorm:"foreignKey:EventID" json:"event,omitempty"`
	TicketCode  string         `gorm:"type:varchar(36);uniqueIndex" json:"ticket_code"`
	Name        string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Email       string         `gorm:"type:varchar(200);not null" json:"email" validate:"required,email"`
	Document    string         `gorm:"type:varchar(32);not null;index" json:"document" validate:"required,numeric,min=6,max=32"`
	Status      string         `gorm:"type:varchar(32);not null;default:'confirmed'" json:"status" validate:"oneof=confirmed pending cancelled"`
	CheckedIn   bool           `gorm:"not null;default:false" json:"checked_in"`
	CheckedInAt *time.Time     `gorm:"type:timestamp;default:null" json:"checked_in_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Registration) Validate() error {
	v := validator.New()
	return v.Struct(r)
}

// IsCancelled reports whether this registration no longer counts against
// capacity or the duplicate-document rule.
func (r *Registration) IsCancelled() bool {
	return r.Status == RegistrationStatusCancelled
}

// CanonicalDocument strips every non-digit character from a national
// identifier. The canonical form is the deduplication key.
func CanonicalDocument(document string) string {
	var b strings.Builder
	b.Grow(len(document))
	for _, ch := range document {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

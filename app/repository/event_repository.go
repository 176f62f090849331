package repository

import (
	"time"

	"github.com/lribeiro/eventgate/app/models"
	"gorm.io/gorm"
)

// eventRepository implements the EventRepository interface
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository instance
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Create creates a new event in the database
func (r *eventRepository) Create(event *models.Event) error {
	return r.db.Create(event).Error
}

// GetByID retrieves an event by its ID
func (r *eventRepository) GetByID(id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetByCompanyID retrieves events for a company with pagination
func (r *eventRepository) GetByCompanyID(companyID uint, offset, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Where("company_id = ?", companyID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&events).Error
	return events, err
}

// Update updates an existing event
func (r *eventRepository) Update(event *models.Event) error {
	return r.db.Save(event).Error
}

// UpdateStatus changes the event status. Cancelled events are immutable.
func (r *eventRepository) UpdateStatus(id uint, status string) error {
	res := r.db.Model(&models.Event{}).
		Where("id = ? AND status <> ?", id, models.EventStatusCancelled).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var event models.Event
		if err := r.db.First(&event, id).Error; err != nil {
			return err
		}
		if event.IsCancelled() {
			return ErrImmutableEvent
		}
	}
	return nil
}

// CountByCompanyID returns the total number of events for a company
func (r *eventRepository) CountByCompanyID(companyID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).
		Where("company_id = ?", companyID).
		Count(&count).Error
	return count, err
}

// CountActiveByCompanyID returns the number of active events for a company
func (r *eventRepository) CountActiveByCompanyID(companyID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).
		Where("company_id = ? AND status = ?", companyID, models.EventStatusActive).
		Count(&count).Error
	return count, err
}

// InactivatePastEvents marks active events past their end date as inactive.
// The status predicate keeps overlapping runs idempotent.
func (r *eventRepository) InactivatePastEvents(now time.Time) (int64, error) {
	res := r.db.Model(&models.Event{}).
		Where("status = ?", models.EventStatusActive).
		Where("ends_at IS NOT NULL AND ends_at < ?", now).
		Update("status", models.EventStatusInactive)
	return res.RowsAffected, res.Error
}

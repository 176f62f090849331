package repository

import (
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lribeiro/eventgate/app/models"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// registrationRepository implements the RegistrationRepository interface
type registrationRepository struct {
	db *gorm.DB
}

// NewRegistrationRepository creates a new registration repository instance
func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

// GetByID retrieves a registration by its ID
func (r *registrationRepository) GetByID(id uint) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.First(&reg, id).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// GetByTicketCode retrieves a registration by its ticket code
func (r *registrationRepository) GetByTicketCode(code string) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.Where("ticket_code = ?", code).First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// GetActiveByEventAndDocument finds a non-cancelled registration for the
// given event and canonical document, if one exists.
func (r *registrationRepository) GetActiveByEventAndDocument(eventID uint, document string) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.
		Where("event_id = ? AND document = ? AND status <> ?", eventID, document, models.RegistrationStatusCancelled).
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// CountActiveByEventID counts non-cancelled registrations for an event
func (r *registrationRepository) CountActiveByEventID(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Registration{}).
		Where("event_id = ? AND status <> ?", eventID, models.RegistrationStatusCancelled).
		Count(&count).Error
	return count, err
}

// CountActiveByCompanyID counts non-cancelled registrations across all of a
// company's events
func (r *registrationRepository) CountActiveByCompanyID(companyID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Registration{}).
		Joins("JOIN events ON events.id = registrations.event_id").
		Where("events.company_id = ?", companyID).
		Where("registrations.status <> ?", models.RegistrationStatusCancelled).
		Where("registrations.deleted_at IS NULL").
		Count(&count).Error
	return count, err
}

// ListByEventID retrieves registrations for an event with pagination
func (r *registrationRepository) ListByEventID(eventID uint, offset, limit int) ([]models.Registration, error) {
	var regs []models.Registration
	err := r.db.Where("event_id = ?", eventID).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&regs).Error
	return regs, err
}

// CreateAdmitted inserts a registration only while the event is active and
// under capacity, in one statement. The pre-insert validation in the
// admission package is advisory; this guard plus the unique index on
// (event_id, active_document) is what actually holds the invariants under
// concurrent inserts.
func (r *registrationRepository) CreateAdmitted(reg *models.Registration) error {
	now := time.Now()
	res := r.db.Exec(`
		INSERT INTO registrations
			(event_id, ticket_code, name, email, document, status, checked_in, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, 0, ?, ?
		FROM events e
		WHERE e.id = ?
		  AND e.status = ?
		  AND e.deleted_at IS NULL
		  AND e.capacity > (
			SELECT COUNT(*) FROM registrations x
			WHERE x.event_id = e.id AND x.status <> ? AND x.deleted_at IS NULL
		  )`,
		reg.EventID, reg.TicketCode, reg.Name, reg.Email, reg.Document, reg.Status, now, now,
		reg.EventID, models.EventStatusActive, models.RegistrationStatusCancelled,
	)
	if res.Error != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(res.Error, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return ErrDuplicateRegistration
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCapacityExceeded
	}
	return r.db.Where("ticket_code = ?", reg.TicketCode).First(reg).Error
}

// CheckIn flips checked_in exactly once from false to true.
func (r *registrationRepository) CheckIn(id uint, at time.Time) error {
	res := r.db.Model(&models.Registration{}).
		Where("id = ? AND checked_in = ? AND status <> ?", id, false, models.RegistrationStatusCancelled).
		Updates(map[string]any{"checked_in": true, "checked_in_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var reg models.Registration
		if err := r.db.First(&reg, id).Error; err != nil {
			return err
		}
		if reg.CheckedIn {
			return ErrAlreadyCheckedIn
		}
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Cancel marks a registration as cancelled. Registrations are never deleted.
func (r *registrationRepository) Cancel(id uint) error {
	return r.db.Model(&models.Registration{}).
		Where("id = ?", id).
		Update("status", models.RegistrationStatusCancelled).Error
}

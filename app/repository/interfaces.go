package repository

import (
	"time"

	"github.com/lribeiro/eventgate/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for staff-user database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	Update(user *models.User) error
	TouchAPIKeyUsage(id uint, at time.Time) error
}

// CompanyRepository defines the interface for company database operations
type CompanyRepository interface {
	Create(company *models.Company) error
	GetByID(id uint) (*models.Company, error)
	GetByIDWithPlan(id uint) (*models.Company, error)
	Update(company *models.Company) error
	// FindPaymentExpired returns companies whose next payment is past due,
	// that are not already on the free plan, and whose payment status is
	// still active.
	FindPaymentExpired(now time.Time, freePlanID uint) ([]models.Company, error)
	// DowngradeExpired applies the free-tier downgrade to every company
	// matching the FindPaymentExpired predicate in a single batch update and
	// returns the number of affected rows. The payment_status = 'active'
	// predicate makes repeated invocations no-ops.
	DowngradeExpired(now time.Time, freePlanID uint, guestAllowance int) (int64, error)
	// FindPaymentDueWithin returns companies whose next payment falls due
	// inside the window and is still in the future.
	FindPaymentDueWithin(now time.Time, window time.Duration) ([]models.Company, error)
}

// PlanRepository defines the interface for plan reference data
type PlanRepository interface {
	GetByID(id uint) (*models.Plan, error)
	GetBySlug(slug string) (*models.Plan, error)
	List() ([]models.Plan, error)
}

// EventRepository defines the interface for event database operations
type EventRepository interface {
	Create(event *models.Event) error
	GetByID(id uint) (*models.Event, error)
	GetByCompanyID(companyID uint, offset, limit int) ([]models.Event, error)
	Update(event *models.Event) error
	UpdateStatus(id uint, status string) error
	CountByCompanyID(companyID uint) (int64, error)
	CountActiveByCompanyID(companyID uint) (int64, error)
	// InactivatePastEvents marks active events whose end date has passed as
	// inactive and returns the number of affected rows.
	InactivatePastEvents(now time.Time) (int64, error)
}

// RegistrationRepository defines the interface for registration database
// operations. CreateAdmitted is the only write path for new registrations and
// enforces the capacity and duplicate-document invariants at the store level.
type RegistrationRepository interface {
	GetByID(id uint) (*models.Registration, error)
	GetByTicketCode(code string) (*models.Registration, error)
	GetActiveByEventAndDocument(eventID uint, document string) (*models.Registration, error)
	CountActiveByEventID(eventID uint) (int64, error)
	CountActiveByCompanyID(companyID uint) (int64, error)
	ListByEventID(eventID uint, offset, limit int) ([]models.Registration, error)
	// CreateAdmitted inserts atomically, guarded by a conditional capacity
	// check against the event row and the unique (event, active document)
	// index. Returns ErrCapacityExceeded or ErrDuplicateRegistration when the
	// store rejects the insert.
	CreateAdmitted(reg *models.Registration) error
	// CheckIn flips checked_in from false to true exactly once. Returns
	// ErrAlreadyCheckedIn when the flag was already set.
	CheckIn(id uint, at time.Time) error
	Cancel(id uint) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Company      CompanyRepository
	Plan         PlanRepository
	Event        EventRepository
	Registration RegistrationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Company:      NewCompanyRepository(db),
		Plan:         NewPlanRepository(db),
		Event:        NewEventRepository(db),
		Registration: NewRegistrationRepository(db),
	}
}

// Package admission decides whether a candidate registrant may be admitted to
// an event. It is a pure read path: the caller performs the actual insert
// afterwards through the registration repository, whose store-level guards
// close the validate-then-insert race window.
package admission

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lribeiro/eventgate/app/models"
	"github.com/lribeiro/eventgate/app/repository"
	"gorm.io/gorm"
)

// Reason identifies which admission check failed.
type Reason string

const (
	ReasonEventNotFound         Reason = "event_not_found"
	ReasonEventNotActive        Reason = "event_not_active"
	ReasonDuplicateRegistration Reason = "duplicate_registration"
	ReasonCapacityExceeded      Reason = "capacity_exceeded"
)

// Decision is the outcome of validating one candidate registrant.
// On success it carries the event plus current occupancy so callers can
// render "current/capacity" without a second query.
type Decision struct {
	OK                   bool                 `json:"ok"`
	Reason               Reason               `json:"reason,omitempty"`
	Message              string               `json:"message,omitempty"`
	Event                *models.Event        `json:"event,omitempty"`
	CurrentRegistrations int64                `json:"current_registrations"`
	Capacity             int                  `json:"capacity"`
	Existing             *models.Registration `json:"-"`
}

// Store is the minimal read surface the validator needs.
type Store interface {
	GetEvent(id uint) (*models.Event, error)
	ActiveRegistrationByDocument(eventID uint, document string) (*models.Registration, error)
	CountActiveRegistrations(eventID uint) (int64, error)
}

// Validate runs the admission checks concurrently and reports the first
// failing check in the fixed priority order
// [exists, active, duplicate, capacity]. The ordering is part of the
// contract: callers rely on the messages being mutually exclusive.
func Validate(ctx context.Context, store Store, eventID uint, document string) (*Decision, error) {
	_ = ctx
	doc := models.CanonicalDocument(document)

	var (
		wg       sync.WaitGroup
		event    *models.Event
		eventErr error
		existing *models.Registration
		dupErr   error
		count    int64
		countErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		event, eventErr = store.GetEvent(eventID)
	}()
	go func() {
		defer wg.Done()
		existing, dupErr = store.ActiveRegistrationByDocument(eventID, doc)
	}()
	go func() {
		defer wg.Done()
		count, countErr = store.CountActiveRegistrations(eventID)
	}()
	wg.Wait()

	// Check 1: event exists.
	if eventErr != nil {
		if errors.Is(eventErr, gorm.ErrRecordNotFound) {
			return &Decision{
				OK:      false,
				Reason:  ReasonEventNotFound,
				Message: "event not found",
			}, nil
		}
		return nil, eventErr
	}

	// Check 2: event is active.
	if !event.IsActive() {
		return &Decision{
			OK:      false,
			Reason:  ReasonEventNotActive,
			Message: fmt.Sprintf("event %q is not accepting registrations (status: %s)", event.Title, event.Status),
			Event:   event,
		}, nil
	}

	// Check 3: document not already registered.
	if dupErr != nil && !errors.Is(dupErr, gorm.ErrRecordNotFound) {
		return nil, dupErr
	}
	if dupErr == nil && existing != nil {
		return &Decision{
			OK:       false,
			Reason:   ReasonDuplicateRegistration,
			Message:  fmt.Sprintf("document is already registered for this event by %s (%s)", existing.Name, existing.Email),
			Event:    event,
			Existing: existing,
		}, nil
	}

	// Check 4: capacity not exceeded.
	if countErr != nil {
		return nil, countErr
	}
	if count >= int64(event.Capacity) {
		return &Decision{
			OK:                   false,
			Reason:               ReasonCapacityExceeded,
			Message:              fmt.Sprintf("event is at capacity (%d/%d)", count, event.Capacity),
			Event:                event,
			CurrentRegistrations: count,
			Capacity:             event.Capacity,
		}, nil
	}

	return &Decision{
		OK:                   true,
		Event:                event,
		CurrentRegistrations: count,
		Capacity:             event.Capacity,
	}, nil
}

// repositoryStore adapts the event and registration repositories to the
// validator's Store interface.
type repositoryStore struct {
	events        repository.EventRepository
	registrations repository.RegistrationRepository
}

// NewRepositoryStore builds a Store backed by the persistence repositories.
func NewRepositoryStore(events repository.EventRepository, registrations repository.RegistrationRepository) Store {
	return &repositoryStore{events: events, registrations: registrations}
}

func (s *repositoryStore) GetEvent(id uint) (*models.Event, error) {
	return s.events.GetByID(id)
}

func (s *repositoryStore) ActiveRegistrationByDocument(eventID uint, document string) (*models.Registration, error) {
	return s.registrations.GetActiveByEventAndDocument(eventID, document)
}

func (s *repositoryStore) CountActiveRegistrations(eventID uint) (int64, error) {
	return s.registrations.CountActiveByEventID(eventID)
}

package entitlements

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lribeiro/eventgate/app/repository"
	"github.com/lribeiro/eventgate/internal/pkg/cache"
)

const usageCacheTTL = 30 * time.Second

// Tracker computes a company's live consumption against its plan limits.
type Tracker struct {
	companies     repository.CompanyRepository
	events        repository.EventRepository
	registrations repository.RegistrationRepository
}

// NewTracker builds a tracker over the persistence repositories.
func NewTracker(repos *repository.Repositories) *Tracker {
	return &Tracker{
		companies:     repos.Company,
		events:        repos.Event,
		registrations: repos.Registration,
	}
}

func usageCacheKey(companyID uint) string {
	return fmt.Sprintf("usage:company:%d", companyID)
}

// GetUsage returns current consumption, served from a short-lived cache
// snapshot when available.
func (t *Tracker) GetUsage(companyID uint) (Usage, error) {
	if raw, err := cache.Get(usageCacheKey(companyID)); err == nil && raw != "" {
		var u Usage
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			return u, nil
		}
	}

	totalEvents, err := t.events.CountByCompanyID(companyID)
	if err != nil {
		return Usage{}, err
	}
	activeEvents, err := t.events.CountActiveByCompanyID(companyID)
	if err != nil {
		return Usage{}, err
	}
	totalRegistrations, err := t.registrations.CountActiveByCompanyID(companyID)
	if err != nil {
		return Usage{}, err
	}

	u := Usage{
		TotalEvents:        totalEvents,
		ActiveEvents:       activeEvents,
		TotalRegistrations: totalRegistrations,
	}

	if payload, err := json.Marshal(u); err == nil {
		if err := cache.Set(usageCacheKey(companyID), payload, usageCacheTTL); err != nil {
			log.Warnf("[Entitlements] usage cache write failed for company %d: %v", companyID, err)
		}
	}
	return u, nil
}

// GetLimits resolves the company's current plan ceilings.
func (t *Tracker) GetLimits(companyID uint) (Limits, error) {
	company, err := t.companies.GetByIDWithPlan(companyID)
	if err != nil {
		return Limits{}, err
	}
	return LimitsForPlan(company.Plan), nil
}

// InvalidateUsage drops the cached usage snapshot after a write.
func InvalidateUsage(companyID uint) {
	if err := cache.Delete(usageCacheKey(companyID)); err != nil {
		log.Warnf("[Entitlements] usage cache invalidation failed for company %d: %v", companyID, err)
	}
}

// Report bundles usage, limits and pressure percentages for the usage
// endpoint.
type Report struct {
	Usage                   Usage   `json:"usage"`
	Limits                  Limits  `json:"limits"`
	EventsPercentage        float64 `json:"events_percentage"`
	RegistrationsPercentage float64 `json:"registrations_percentage"`
}

// Report computes the full usage report for a company.
func (t *Tracker) Report(companyID uint) (*Report, error) {
	usage, err := t.GetUsage(companyID)
	if err != nil {
		return nil, err
	}
	limits, err := t.GetLimits(companyID)
	if err != nil {
		return nil, err
	}
	return &Report{
		Usage:                   usage,
		Limits:                  limits,
		EventsPercentage:        limits.Percentage(usage, KindEvents),
		RegistrationsPercentage: limits.Percentage(usage, KindRegistrations),
	}, nil
}

// Package entitlements derives what a company may still do from its plan
// limits and current consumption. It is a read-composition layer and performs
// no writes.
package entitlements

import "github.com/lribeiro/eventgate/app/models"

// UsageKind selects which limit a percentage is computed against.
type UsageKind string

const (
	KindEvents        UsageKind = "events"
	KindRegistrations UsageKind = "registrations"
)

// Limits are the plan ceilings. Nil means unlimited.
type Limits struct {
	MaxEvents                *int `json:"max_events"`
	MaxRegistrationsPerEvent *int `json:"max_registrations_per_event"`
	MaxTotalRegistrations    *int `json:"max_total_registrations"`
}

// LimitsForPlan extracts the enforcement limits from a plan record.
func LimitsForPlan(plan *models.Plan) Limits {
	if plan == nil {
		return Limits{}
	}
	return Limits{
		MaxEvents:                plan.MaxEvents,
		MaxRegistrationsPerEvent: plan.MaxRegistrationsPerEvent,
		MaxTotalRegistrations:    plan.MaxTotalRegistrations,
	}
}

// Usage is the company's current consumption.
type Usage struct {
	TotalEvents        int64 `json:"total_events"`
	ActiveEvents       int64 `json:"active_events"`
	TotalRegistrations int64 `json:"total_registrations"`
}

// CanCreateEvent reports whether one more event fits under the plan.
func (l Limits) CanCreateEvent(u Usage) bool {
	if l.MaxEvents == nil {
		return true
	}
	return u.TotalEvents < int64(*l.MaxEvents)
}

// CanAddRegistration reports whether one more registration fits under both
// the per-event and the total-registration ceilings.
func (l Limits) CanAddRegistration(u Usage, currentEventRegistrations int64) bool {
	if l.MaxRegistrationsPerEvent != nil && currentEventRegistrations >= int64(*l.MaxRegistrationsPerEvent) {
		return false
	}
	if l.MaxTotalRegistrations != nil && u.TotalRegistrations >= int64(*l.MaxTotalRegistrations) {
		return false
	}
	return true
}

// UsagePercentage returns consumption pressure against a limit. Unlimited
// reports 0; over-limit reports above 100, unclamped. A zero allowance has
// no scale to divide by and reports full pressure.
func UsagePercentage(used int64, limit *int) float64 {
	if limit == nil {
		return 0
	}
	if *limit == 0 {
		return 100
	}
	return 100 * float64(used) / float64(*limit)
}

// Percentage computes the pressure for a usage kind.
func (l Limits) Percentage(u Usage, kind UsageKind) float64 {
	switch kind {
	case KindEvents:
		return UsagePercentage(u.TotalEvents, l.MaxEvents)
	case KindRegistrations:
		return UsagePercentage(u.TotalRegistrations, l.MaxTotalRegistrations)
	default:
		return 0
	}
}

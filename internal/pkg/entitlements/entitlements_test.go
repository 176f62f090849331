package entitlements

import (
	"testing"

	"github.com/lribeiro/eventgate/app/models"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestLimitsForPlan(t *testing.T) {
	assert.Equal(t, Limits{}, LimitsForPlan(nil))

	plan := &models.Plan{
		MaxEvents:                intPtr(5),
		MaxRegistrationsPerEvent: intPtr(100),
	}
	limits := LimitsForPlan(plan)
	assert.Equal(t, 5, *limits.MaxEvents)
	assert.Equal(t, 100, *limits.MaxRegistrationsPerEvent)
	assert.Nil(t, limits.MaxTotalRegistrations)
}

func TestCanCreateEvent(t *testing.T) {
	unlimited := Limits{}
	assert.True(t, unlimited.CanCreateEvent(Usage{TotalEvents: 10000}))

	capped := Limits{MaxEvents: intPtr(3)}
	assert.True(t, capped.CanCreateEvent(Usage{TotalEvents: 2}))
	assert.False(t, capped.CanCreateEvent(Usage{TotalEvents: 3}))
	assert.False(t, capped.CanCreateEvent(Usage{TotalEvents: 4}))
}

func TestCanAddRegistration(t *testing.T) {
	unlimited := Limits{}
	assert.True(t, unlimited.CanAddRegistration(Usage{TotalRegistrations: 999999}, 999999))

	perEvent := Limits{MaxRegistrationsPerEvent: intPtr(50)}
	assert.True(t, perEvent.CanAddRegistration(Usage{}, 49))
	assert.False(t, perEvent.CanAddRegistration(Usage{}, 50))

	total := Limits{MaxTotalRegistrations: intPtr(200)}
	assert.True(t, total.CanAddRegistration(Usage{TotalRegistrations: 199}, 0))
	assert.False(t, total.CanAddRegistration(Usage{TotalRegistrations: 200}, 0))

	both := Limits{MaxRegistrationsPerEvent: intPtr(50), MaxTotalRegistrations: intPtr(200)}
	assert.False(t, both.CanAddRegistration(Usage{TotalRegistrations: 10}, 50))
	assert.False(t, both.CanAddRegistration(Usage{TotalRegistrations: 200}, 10))
	assert.True(t, both.CanAddRegistration(Usage{TotalRegistrations: 100}, 10))
}

func TestUsagePercentage(t *testing.T) {
	// Unlimited reports no pressure.
	assert.Zero(t, UsagePercentage(500, nil))

	assert.InDelta(t, 50.0, UsagePercentage(1, intPtr(2)), 0.001)
	assert.InDelta(t, 100.0, UsagePercentage(4, intPtr(4)), 0.001)

	// Over-limit reports above 100, unclamped.
	assert.InDelta(t, 150.0, UsagePercentage(3, intPtr(2)), 0.001)
	assert.Zero(t, UsagePercentage(0, intPtr(10)))

	// A zero allowance is full pressure, not the unlimited zero.
	assert.InDelta(t, 100.0, UsagePercentage(0, intPtr(0)), 0.001)
	assert.InDelta(t, 100.0, UsagePercentage(3, intPtr(0)), 0.001)
}

func TestPercentageByKind(t *testing.T) {
	limits := Limits{MaxEvents: intPtr(10), MaxTotalRegistrations: intPtr(100)}
	usage := Usage{TotalEvents: 5, TotalRegistrations: 150}

	assert.InDelta(t, 50.0, limits.Percentage(usage, KindEvents), 0.001)
	assert.InDelta(t, 150.0, limits.Percentage(usage, KindRegistrations), 0.001)
	assert.Zero(t, limits.Percentage(usage, UsageKind("unknown")))
}

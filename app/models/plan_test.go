package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanPriceCents(t *testing.T) {
	assert.Equal(t, int64(0), (&Plan{Price: 0}).PriceCents())
	assert.Equal(t, int64(1990), (&Plan{Price: 19.90}).PriceCents())
	assert.Equal(t, int64(4990), (&Plan{Price: 49.90}).PriceCents())
	assert.Equal(t, int64(10000), (&Plan{Price: 100}).PriceCents())
}

func TestPlanIsFree(t *testing.T) {
	assert.True(t, (&Plan{Slug: PlanSlugFree}).IsFree())
	assert.False(t, (&Plan{Slug: PlanSlugBusiness}).IsFree())
}

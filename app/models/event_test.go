package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventCanTransitionTo(t *testing.T) {
	e := &Event{Status: EventStatusActive}

	assert.True(t, e.CanTransitionTo(EventStatusInactive))
	assert.True(t, e.CanTransitionTo(EventStatusCompleted))
	assert.True(t, e.CanTransitionTo(EventStatusCancelled))
	assert.False(t, e.CanTransitionTo(EventStatusActive))
	assert.False(t, e.CanTransitionTo("archived"))
}

func TestEventCancelledIsFinal(t *testing.T) {
	e := &Event{Status: EventStatusCancelled}

	assert.False(t, e.CanTransitionTo(EventStatusActive))
	assert.False(t, e.CanTransitionTo(EventStatusInactive))
	assert.False(t, e.CanTransitionTo(EventStatusCompleted))
}

func TestEventIsActive(t *testing.T) {
	assert.True(t, (&Event{Status: EventStatusActive}).IsActive())
	assert.False(t, (&Event{Status: EventStatusInactive}).IsActive())
	assert.False(t, (&Event{Status: EventStatusCompleted}).IsActive())
}

func TestEventValidate(t *testing.T) {
	e := &Event{CompanyID: 1, Title: "Tech Meetup", Capacity: 100, Status: EventStatusActive}
	assert.NoError(t, e.Validate())

	e.Capacity = -1
	assert.Error(t, e.Validate())

	e.Capacity = 100
	e.Title = "ab"
	assert.Error(t, e.Validate())
}

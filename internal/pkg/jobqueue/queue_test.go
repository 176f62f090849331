package jobqueue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueAndDequeueJob(t *testing.T) {
	host, port := resolveTestRedis(t)
	configureTestCache(host, port)
	resetJobQueueRedis(t)
	t.Cleanup(func() { resetJobQueueRedis(t) })

	q := NewQueue(1)

	payload := NotificationEmailJobPayload{
		CompanyID:   10,
		Email:       "acme@example.com",
		CompanyName: "Acme",
		Kind:        NotificationKindPaymentDueWarning,
		PlanName:    "Business",
		DueDate:     "2026-09-02",
	}

	enqueued, err := q.EnqueueJob(JobTypeNotificationEmail, payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, enqueued.Status)
	assert.Equal(t, DefaultMaxRetries, enqueued.MaxRetries)

	size, err := q.GetQueueSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	dequeued, err := q.dequeueJob(context.Background())
	require.NoError(t, err)
	require.NotNil(t, dequeued)
	assert.Equal(t, enqueued.ID, dequeued.ID)
	assert.Equal(t, JobTypeNotificationEmail, dequeued.Type)

	decoded, err := NotificationEmailJobPayloadFromMap(dequeued.Payload)
	require.NoError(t, err)
	assert.Equal(t, uint(10), decoded.CompanyID)
	assert.Equal(t, "acme@example.com", decoded.Email)

	// Dequeue moved it to the processing list.
	processing, err := q.GetProcessingSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), processing)
}

func TestGetJobRoundTrip(t *testing.T) {
	host, port := resolveTestRedis(t)
	configureTestCache(host, port)
	resetJobQueueRedis(t)
	t.Cleanup(func() { resetJobQueueRedis(t) })

	q := NewQueue(1)

	payload := RegistrationEmailJobPayload{RegistrationID: 7, Email: "maria@example.com", TicketCode: "abc"}
	enqueued, err := q.EnqueueJob(JobTypeRegistrationEmail, payload.ToMap())
	require.NoError(t, err)

	fetched, err := q.GetJob(context.Background(), enqueued.ID)
	require.NoError(t, err)
	assert.Equal(t, enqueued.ID, fetched.ID)
	assert.Equal(t, JobTypeRegistrationEmail, fetched.Type)
}

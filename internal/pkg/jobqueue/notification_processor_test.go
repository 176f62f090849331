package jobqueue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mailCapture struct {
	to      []string
	subject []string
	body    []string
	err     error
}

func (c *mailCapture) send(to, subject, body string) error {
	c.to = append(c.to, to)
	c.subject = append(c.subject, subject)
	c.body = append(c.body, body)
	return c.err
}

func swapSendMail(t *testing.T, capture *mailCapture) {
	t.Helper()
	prev := sendMail
	sendMail = capture.send
	t.Cleanup(func() { sendMail = prev })
}

func TestProcessNotificationEmailJob(t *testing.T) {
	capture := &mailCapture{}
	swapSendMail(t, capture)

	payload := NotificationEmailJobPayload{
		CompanyID:   10,
		Email:       "acme@example.com",
		CompanyName: "Acme",
		Kind:        NotificationKindPaymentDueWarning,
		PlanName:    "Business",
		DueDate:     "2026-09-02",
	}
	job := &Job{ID: "j1", Type: JobTypeNotificationEmail, Payload: payload.ToMap()}

	q := &Queue{}
	require.NoError(t, q.processNotificationEmailJob(context.Background(), job))

	require.Len(t, capture.to, 1)
	assert.Equal(t, "acme@example.com", capture.to[0])
	assert.Contains(t, capture.subject[0], "2026-09-02")
	assert.Contains(t, capture.body[0], "Business")
}

func TestProcessNotificationEmailJobRejectsUnknownKind(t *testing.T) {
	capture := &mailCapture{}
	swapSendMail(t, capture)

	payload := NotificationEmailJobPayload{CompanyID: 10, Email: "acme@example.com", Kind: "mystery"}
	job := &Job{ID: "j2", Type: JobTypeNotificationEmail, Payload: payload.ToMap()}

	q := &Queue{}
	err := q.processNotificationEmailJob(context.Background(), job)
	assert.Error(t, err)
	assert.Empty(t, capture.to)
}

func TestProcessRegistrationEmailJob(t *testing.T) {
	capture := &mailCapture{}
	swapSendMail(t, capture)

	payload := RegistrationEmailJobPayload{
		RegistrationID: 7,
		Email:          "maria@example.com",
		AttendeeName:   "Maria",
		TicketCode:     "a5a5c74d-1111-2222-3333-444455556666",
		EventTitle:     "GopherCon BR",
	}
	job := &Job{ID: "j3", Type: JobTypeRegistrationEmail, Payload: payload.ToMap()}

	q := &Queue{}
	require.NoError(t, q.processRegistrationEmailJob(context.Background(), job))

	require.Len(t, capture.to, 1)
	assert.Contains(t, capture.subject[0], "GopherCon BR")
	assert.Contains(t, capture.body[0], payload.TicketCode)
}

func TestProcessRegistrationEmailJobMailFailure(t *testing.T) {
	capture := &mailCapture{err: errors.New("smtp down")}
	swapSendMail(t, capture)

	payload := RegistrationEmailJobPayload{RegistrationID: 7, Email: "maria@example.com"}
	job := &Job{ID: "j4", Type: JobTypeRegistrationEmail, Payload: payload.ToMap()}

	q := &Queue{}
	assert.Error(t, q.processRegistrationEmailJob(context.Background(), job))
}

func TestJobRetryLifecycle(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: DefaultMaxRetries}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("boom")
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsFailed("boom")
	job.MarkAsFailed("boom")
	assert.False(t, job.IsRetryable())

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
}

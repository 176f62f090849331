package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeNotificationEmail JobType = "notification_email"
	JobTypeRegistrationEmail JobType = "registration_email"
)

// Notification kinds carried by NotificationEmailJobPayload.
const (
	NotificationKindPaymentDueWarning = "payment_due_warning"
	NotificationKindPlanDowngraded    = "plan_downgraded"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// NotificationEmailJobPayload carries a company-facing notification email.
type NotificationEmailJobPayload struct {
	CompanyID   uint   `json:"company_id"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name"`
	Kind        string `json:"kind"`
	PlanName    string `json:"plan_name"`
	DueDate     string `json:"due_date,omitempty"`
}

// ToMap converts the payload to a map for storage
func (p NotificationEmailJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"company_id":   p.CompanyID,
		"email":        p.Email,
		"company_name": p.CompanyName,
		"kind":         p.Kind,
		"plan_name":    p.PlanName,
		"due_date":     p.DueDate,
	}
}

// FromMap creates a payload from a map
func NotificationEmailJobPayloadFromMap(data map[string]interface{}) (*NotificationEmailJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload NotificationEmailJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// RegistrationEmailJobPayload carries the ticket confirmation email for a
// freshly admitted attendee.
type RegistrationEmailJobPayload struct {
	RegistrationID uint   `json:"registration_id"`
	Email          string `json:"email"`
	AttendeeName   string `json:"attendee_name"`
	TicketCode     string `json:"ticket_code"`
	EventTitle     string `json:"event_title"`
}

// ToMap converts the payload to a map for storage
func (p RegistrationEmailJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"registration_id": p.RegistrationID,
		"email":           p.Email,
		"attendee_name":   p.AttendeeName,
		"ticket_code":     p.TicketCode,
		"event_title":     p.EventTitle,
	}
}

// FromMap creates a payload from a map
func RegistrationEmailJobPayloadFromMap(data map[string]interface{}) (*RegistrationEmailJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload RegistrationEmailJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}

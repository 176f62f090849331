package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lribeiro/eventgate/internal/pkg/mail"
)

// sendMail is swapped out in tests.
var sendMail = mail.SendMail

// processNotificationEmailJob delivers a company-facing notification email.
func (q *Queue) processNotificationEmailJob(ctx context.Context, job *Job) error {
	_ = ctx
	payload, err := NotificationEmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid notification payload: %w", err)
	}
	if payload.Email == "" {
		return fmt.Errorf("notification payload for company %d has no email", payload.CompanyID)
	}

	subject, body, err := renderNotification(payload)
	if err != nil {
		return err
	}

	if err := sendMail(payload.Email, subject, body); err != nil {
		return fmt.Errorf("sending %s notification to %s: %w", payload.Kind, payload.Email, err)
	}

	log.Infof("[JobQueue] Sent %s notification to company %d (%s)", payload.Kind, payload.CompanyID, payload.Email)
	return nil
}

func renderNotification(p *NotificationEmailJobPayload) (subject, body string, err error) {
	switch p.Kind {
	case NotificationKindPaymentDueWarning:
		subject = fmt.Sprintf("Payment for your %s plan is due on %s", p.PlanName, p.DueDate)
		body = fmt.Sprintf(
			"<p>Hello %s,</p>"+
				"<p>The payment for your <strong>%s</strong> plan is due on <strong>%s</strong>. "+
				"If the payment is not completed by then, your account will be moved to the free plan "+
				"and its limits will apply.</p>",
			p.CompanyName, p.PlanName, p.DueDate)
	case NotificationKindPlanDowngraded:
		subject = "Your account has been moved to the free plan"
		body = fmt.Sprintf(
			"<p>Hello %s,</p>"+
				"<p>We did not receive the payment for your <strong>%s</strong> plan, so your account "+
				"has been moved to the free plan. Upgrade again at any time to restore your limits.</p>",
			p.CompanyName, p.PlanName)
	default:
		return "", "", fmt.Errorf("unknown notification kind %q", p.Kind)
	}
	return subject, body, nil
}

// processRegistrationEmailJob delivers the ticket confirmation email.
func (q *Queue) processRegistrationEmailJob(ctx context.Context, job *Job) error {
	_ = ctx
	payload, err := RegistrationEmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid registration email payload: %w", err)
	}
	if payload.Email == "" {
		return fmt.Errorf("registration email payload %d has no recipient", payload.RegistrationID)
	}

	subject := fmt.Sprintf("Your ticket for %s", payload.EventTitle)
	body := fmt.Sprintf(
		"<p>Hello %s,</p>"+
			"<p>Your registration for <strong>%s</strong> is confirmed.</p>"+
			"<p>Ticket code: <strong>%s</strong></p>"+
			"<p>Present this code at the entrance for check-in.</p>",
		payload.AttendeeName, payload.EventTitle, payload.TicketCode)

	if err := sendMail(payload.Email, subject, body); err != nil {
		return fmt.Errorf("sending ticket email for registration %d: %w", payload.RegistrationID, err)
	}

	log.Infof("[JobQueue] Sent ticket email for registration %d to %s", payload.RegistrationID, payload.Email)
	return nil
}

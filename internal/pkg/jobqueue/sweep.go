package jobqueue

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lribeiro/eventgate/app/models"
	"github.com/lribeiro/eventgate/app/repository"
	"github.com/lribeiro/eventgate/internal/pkg/cache"
)

// PaymentWarningWindow is how far ahead of the due date companies get a
// payment reminder.
const PaymentWarningWindow = 3 * 24 * time.Hour

// Enqueuer is the queue surface the sweeps need.
type Enqueuer interface {
	EnqueueJob(jobType JobType, payload map[string]interface{}) (*Job, error)
}

// ExpirySweepResult summarizes one plan expiry sweep run.
type ExpirySweepResult struct {
	Downgraded int64
	Warned     int
}

// RunPlanExpirySweep downgrades companies whose paid plan lapsed and enqueues
// payment reminders for companies approaching their due date. warnOnce
// deduplicates reminders so a company is warned once per due date.
func RunPlanExpirySweep(repos *repository.Repositories, enqueue Enqueuer, warnOnce func(companyID uint, due time.Time) bool, now time.Time) (ExpirySweepResult, error) {
	var result ExpirySweepResult

	freePlan, err := repos.Plan.GetBySlug(models.PlanSlugFree)
	if err != nil {
		return result, fmt.Errorf("resolving free plan: %w", err)
	}

	// Snapshot the lapsed companies before the batch update so the
	// downgrade notices carry the plan they are losing.
	lapsed, err := repos.Company.FindPaymentExpired(now, freePlan.ID)
	if err != nil {
		return result, fmt.Errorf("finding lapsed companies: %w", err)
	}

	result.Downgraded, err = repos.Company.DowngradeExpired(now, freePlan.ID, freePlan.MonthlyGuestAllowance)
	if err != nil {
		return result, fmt.Errorf("downgrading lapsed companies: %w", err)
	}

	for _, company := range lapsed {
		planName := ""
		if plan, perr := repos.Plan.GetByID(company.PlanID); perr == nil {
			planName = plan.Name
		}
		payload := NotificationEmailJobPayload{
			CompanyID:   company.ID,
			Email:       company.Email,
			CompanyName: company.Name,
			Kind:        NotificationKindPlanDowngraded,
			PlanName:    planName,
		}
		if _, err := enqueue.EnqueueJob(JobTypeNotificationEmail, payload.ToMap()); err != nil {
			log.Errorf("[PlanExpiry] Failed to enqueue downgrade notice for company %d: %v", company.ID, err)
		}
	}

	due, err := repos.Company.FindPaymentDueWithin(now, PaymentWarningWindow)
	if err != nil {
		return result, fmt.Errorf("finding companies with upcoming due dates: %w", err)
	}

	for _, company := range due {
		if company.NextPaymentDue == nil {
			continue
		}
		if warnOnce != nil && !warnOnce(company.ID, *company.NextPaymentDue) {
			continue
		}
		planName := ""
		if plan, perr := repos.Plan.GetByID(company.PlanID); perr == nil {
			planName = plan.Name
		}
		payload := NotificationEmailJobPayload{
			CompanyID:   company.ID,
			Email:       company.Email,
			CompanyName: company.Name,
			Kind:        NotificationKindPaymentDueWarning,
			PlanName:    planName,
			DueDate:     company.NextPaymentDue.Format("2006-01-02"),
		}
		if _, err := enqueue.EnqueueJob(JobTypeNotificationEmail, payload.ToMap()); err != nil {
			log.Errorf("[PlanExpiry] Failed to enqueue payment reminder for company %d: %v", company.ID, err)
			continue
		}
		result.Warned++
	}

	if result.Downgraded > 0 || result.Warned > 0 {
		log.Infof("[PlanExpiry] Sweep done: %d downgraded, %d warned", result.Downgraded, result.Warned)
	}
	return result, nil
}

// RunEventInactivationSweep marks active events whose end date passed as
// inactive and returns how many rows changed.
func RunEventInactivationSweep(repos *repository.Repositories, now time.Time) (int64, error) {
	changed, err := repos.Event.InactivatePastEvents(now)
	if err != nil {
		return 0, fmt.Errorf("inactivating past events: %w", err)
	}
	if changed > 0 {
		log.Infof("[EventSweep] Inactivated %d past events", changed)
	}
	return changed, nil
}

// cacheWarnOnce gates payment reminders through Redis so restarts and
// overlapping sweeps do not double-send. Fails open when Redis is down.
func cacheWarnOnce(companyID uint, due time.Time) bool {
	key := fmt.Sprintf("billing:warned:%d:%s", companyID, due.Format("2006-01-02"))
	first, err := cache.SetNX(key, 1, 7*24*time.Hour)
	if err != nil {
		log.Errorf("[PlanExpiry] Reminder dedupe check failed for company %d: %v", companyID, err)
		return true
	}
	return first
}

package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lribeiro/eventgate/app/models"
	"github.com/lribeiro/eventgate/app/repository"
)

type fakeEnqueuer struct {
	jobs []struct {
		Type    JobType
		Payload map[string]interface{}
	}
}

func (f *fakeEnqueuer) EnqueueJob(jobType JobType, payload map[string]interface{}) (*Job, error) {
	f.jobs = append(f.jobs, struct {
		Type    JobType
		Payload map[string]interface{}
	}{jobType, payload})
	return &Job{ID: "test", Type: jobType, Payload: payload}, nil
}

type fakePlanRepo struct {
	plans map[uint]*models.Plan
}

func (f *fakePlanRepo) GetByID(id uint) (*models.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return plan, nil
}

func (f *fakePlanRepo) GetBySlug(slug string) (*models.Plan, error) {
	for _, plan := range f.plans {
		if plan.Slug == slug {
			return plan, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePlanRepo) List() ([]models.Plan, error) {
	out := make([]models.Plan, 0, len(f.plans))
	for _, plan := range f.plans {
		out = append(out, *plan)
	}
	return out, nil
}

type fakeCompanyRepo struct {
	lapsed     []models.Company
	due        []models.Company
	downgraded int64
}

func (f *fakeCompanyRepo) Create(*models.Company) error                  { return nil }
func (f *fakeCompanyRepo) GetByID(uint) (*models.Company, error)         { return nil, gorm.ErrRecordNotFound }
func (f *fakeCompanyRepo) GetByIDWithPlan(uint) (*models.Company, error) { return nil, gorm.ErrRecordNotFound }
func (f *fakeCompanyRepo) Update(*models.Company) error                  { return nil }

func (f *fakeCompanyRepo) FindPaymentExpired(now time.Time, freePlanID uint) ([]models.Company, error) {
	return f.lapsed, nil
}

func (f *fakeCompanyRepo) DowngradeExpired(now time.Time, freePlanID uint, guestAllowance int) (int64, error) {
	f.downgraded = int64(len(f.lapsed))
	return f.downgraded, nil
}

func (f *fakeCompanyRepo) FindPaymentDueWithin(now time.Time, window time.Duration) ([]models.Company, error) {
	return f.due, nil
}

type fakeEventRepo struct {
	inactivated int64
}

func (f *fakeEventRepo) Create(*models.Event) error                            { return nil }
func (f *fakeEventRepo) GetByID(uint) (*models.Event, error)                   { return nil, gorm.ErrRecordNotFound }
func (f *fakeEventRepo) GetByCompanyID(uint, int, int) ([]models.Event, error) { return nil, nil }
func (f *fakeEventRepo) Update(*models.Event) error                            { return nil }
func (f *fakeEventRepo) UpdateStatus(uint, string) error                       { return nil }
func (f *fakeEventRepo) CountByCompanyID(uint) (int64, error)                  { return 0, nil }
func (f *fakeEventRepo) CountActiveByCompanyID(uint) (int64, error)            { return 0, nil }
func (f *fakeEventRepo) InactivatePastEvents(now time.Time) (int64, error)     { return f.inactivated, nil }

func sweepRepos(companies *fakeCompanyRepo) *repository.Repositories {
	return &repository.Repositories{
		Company: companies,
		Plan: &fakePlanRepo{plans: map[uint]*models.Plan{
			1: {ID: 1, Name: "Free", Slug: models.PlanSlugFree, MonthlyGuestAllowance: 50},
			2: {ID: 2, Name: "Business", Slug: models.PlanSlugBusiness, MonthlyGuestAllowance: 500},
		}},
	}
}

func TestPlanExpirySweepDowngradesAndNotifies(t *testing.T) {
	companies := &fakeCompanyRepo{
		lapsed: []models.Company{
			{ID: 10, Name: "Acme", Email: "acme@example.com", PlanID: 2},
		},
	}
	queue := &fakeEnqueuer{}

	result, err := RunPlanExpirySweep(sweepRepos(companies), queue, nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Downgraded)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobTypeNotificationEmail, queue.jobs[0].Type)

	payload, err := NotificationEmailJobPayloadFromMap(queue.jobs[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, NotificationKindPlanDowngraded, payload.Kind)
	assert.Equal(t, "acme@example.com", payload.Email)
	assert.Equal(t, "Business", payload.PlanName)
}

func TestPlanExpirySweepWarnsUpcomingDueDates(t *testing.T) {
	due := time.Now().Add(48 * time.Hour)
	companies := &fakeCompanyRepo{
		due: []models.Company{
			{ID: 11, Name: "Beta", Email: "beta@example.com", PlanID: 2, NextPaymentDue: &due},
		},
	}
	queue := &fakeEnqueuer{}

	result, err := RunPlanExpirySweep(sweepRepos(companies), queue, nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Warned)
	require.Len(t, queue.jobs, 1)

	payload, err := NotificationEmailJobPayloadFromMap(queue.jobs[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, NotificationKindPaymentDueWarning, payload.Kind)
	assert.Equal(t, due.Format("2006-01-02"), payload.DueDate)
}

func TestPlanExpirySweepDeduplicatesWarnings(t *testing.T) {
	due := time.Now().Add(24 * time.Hour)
	companies := &fakeCompanyRepo{
		due: []models.Company{
			{ID: 11, Name: "Beta", Email: "beta@example.com", PlanID: 2, NextPaymentDue: &due},
		},
	}
	queue := &fakeEnqueuer{}

	warned := map[uint]bool{}
	warnOnce := func(companyID uint, _ time.Time) bool {
		if warned[companyID] {
			return false
		}
		warned[companyID] = true
		return true
	}

	first, err := RunPlanExpirySweep(sweepRepos(companies), queue, warnOnce, time.Now())
	require.NoError(t, err)
	second, err := RunPlanExpirySweep(sweepRepos(companies), queue, warnOnce, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, first.Warned)
	assert.Zero(t, second.Warned)
	assert.Len(t, queue.jobs, 1)
}

func TestEventInactivationSweep(t *testing.T) {
	repos := &repository.Repositories{Event: &fakeEventRepo{inactivated: 3}}

	changed, err := RunEventInactivationSweep(repos, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), changed)
}

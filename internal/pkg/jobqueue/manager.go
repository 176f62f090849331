package jobqueue

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lribeiro/eventgate/app/repository"
	"github.com/lribeiro/eventgate/internal/pkg/env"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue            *Queue
	expiryTicker     *time.Ticker
	inactivateTicker *time.Ticker
	stopCh           chan struct{}
	wg               sync.WaitGroup
	mu               sync.Mutex
	running          bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := env.GetIntEnv("JOB_QUEUE_WORKERS", 5)

		globalManager = &Manager{
			queue:  NewQueue(workerCount),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	// Start the job queue
	m.queue.Start()

	// Plan expiry sweep. The sweep is idempotent, so a short interval only
	// costs a few queries.
	expiryInterval := time.Duration(env.GetIntEnv("PLAN_EXPIRY_SWEEP_MINUTES", 60)) * time.Minute
	m.expiryTicker = time.NewTicker(expiryInterval)
	m.wg.Add(1)
	go m.planExpiryWorker(expiryInterval)

	// Past-event inactivation sweep.
	inactivateInterval := time.Duration(env.GetIntEnv("EVENT_INACTIVATION_SWEEP_MINUTES", 60)) * time.Minute
	m.inactivateTicker = time.NewTicker(inactivateInterval)
	m.wg.Add(1)
	go m.eventInactivationWorker(inactivateInterval)

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.expiryTicker != nil {
		m.expiryTicker.Stop()
	}
	if m.inactivateTicker != nil {
		m.inactivateTicker.Stop()
	}

	// Signal workers to stop
	close(m.stopCh)
	m.stopCh = nil
	m.running = false

	// Wait for background workers to finish
	m.wg.Wait()

	// Stop the job queue
	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// planExpiryWorker periodically downgrades lapsed companies and enqueues
// payment reminders.
func (m *Manager) planExpiryWorker(interval time.Duration) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started plan expiry worker (interval: %s)", interval)

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Plan expiry worker stopping")
			return
		case <-m.expiryTicker.C:
			if _, err := m.RunPlanExpirySweepOnce(); err != nil {
				log.Errorf("[JobQueue Manager] Plan expiry sweep error: %v", err)
			}
		}
	}
}

// eventInactivationWorker periodically closes out events whose end date passed.
func (m *Manager) eventInactivationWorker(interval time.Duration) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started event inactivation worker (interval: %s)", interval)

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Event inactivation worker stopping")
			return
		case <-m.inactivateTicker.C:
			if _, err := m.RunEventInactivationSweepOnce(); err != nil {
				log.Errorf("[JobQueue Manager] Event inactivation sweep error: %v", err)
			}
		}
	}
}

// RunPlanExpirySweepOnce exposes a manual trigger for a single plan expiry sweep (admin use).
func (m *Manager) RunPlanExpirySweepOnce() (ExpirySweepResult, error) {
	return RunPlanExpirySweep(repository.GetGlobalRepositories(), m.queue, cacheWarnOnce, time.Now())
}

// RunEventInactivationSweepOnce exposes a manual trigger for a single event inactivation sweep (admin use).
func (m *Manager) RunEventInactivationSweepOnce() (int64, error) {
	return RunEventInactivationSweep(repository.GetGlobalRepositories(), time.Now())
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

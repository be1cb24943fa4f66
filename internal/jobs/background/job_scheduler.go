package background

import (
	"context"
	"log"
	"sync"

	"subtrack/internal/config"
	"subtrack/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler owns the daily reminder trigger: one fixed wall-clock
// time in one fixed civil timezone. Singleton mode guarantees a firing
// still running when the next trigger arrives is never overlapped.
type JobScheduler struct {
	scheduler   gocron.Scheduler
	reminderSvc *jobs.RenewalReminderService
	triggerCfg  config.TriggerConfig
	jobsByName  map[string]gocron.Job
	mu          sync.RWMutex
}

// NewJobScheduler creates the scheduler in the configured timezone and
// registers the reminder job.
func NewJobScheduler(reminderSvc *jobs.RenewalReminderService, triggerCfg config.TriggerConfig) (*JobScheduler, error) {
	location, err := triggerCfg.Location()
	if err != nil {
		return nil, err
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(location))
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:   scheduler,
		reminderSvc: reminderSvc,
		triggerCfg:  triggerCfg,
		jobsByName:  make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler.
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler (reminders daily at %s %s)",
		js.triggerCfg.At, js.triggerCfg.Timezone)
	js.scheduler.Start()
}

// Stop stops the job scheduler.
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	hour, minute, err := js.triggerCfg.Clock()
	if err != nil {
		return err
	}

	reminderJob, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0))),
		gocron.NewTask(js.runRenewalReminders),
		gocron.WithName("renewal-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	js.mu.Lock()
	js.jobsByName["renewal-reminders"] = reminderJob
	js.mu.Unlock()

	log.Printf("Registered %d background jobs", 1)
	return nil
}

// runRenewalReminders executes one firing. A failed firing is logged and
// swallowed so the next day's trigger stays armed.
func (js *JobScheduler) runRenewalReminders() {
	if err := js.reminderSvc.Run(context.Background()); err != nil {
		log.Printf("Renewal reminder firing failed: %v", err)
	}
}

// JobNames returns the registered job names, for the health surface.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobsByName))
	for name := range js.jobsByName {
		names = append(names, name)
	}
	return names
}

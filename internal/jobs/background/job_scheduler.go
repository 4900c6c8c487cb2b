package background

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"stockroom/internal/caching"
	"stockroom/internal/events"
	"stockroom/internal/jobs"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Evaluator is the part of jobs.AlertEvaluator the scheduler drives
type Evaluator interface {
	EvaluateAll(ctx context.Context) error
	EvaluateTenant(ctx context.Context, tenantID uuid.UUID) (jobs.EvaluationResult, error)
}

// JobScheduler runs alert evaluation on an interval and, when a subscriber is
// given, whenever a tenant's stock changes
type JobScheduler struct {
	scheduler  gocron.Scheduler
	evaluator  Evaluator
	subscriber events.Subscriber
	interval   time.Duration
	jobs       map[string]gocron.Job
	stops      []func()
	mu         sync.RWMutex

	// per-tenant guard so bursts of change events do not stack evaluations
	running sync.Map
}

// NewJobScheduler creates the scheduler and registers the periodic jobs.
// subscriber may be nil to disable on-change evaluation.
func NewJobScheduler(evaluator Evaluator, subscriber events.Subscriber, interval time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		evaluator:  evaluator,
		subscriber: subscriber,
		interval:   interval,
		jobs:       make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs() error {
	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.interval),
		gocron.NewTask(js.evaluator.EvaluateAll, context.Background()),
		gocron.WithName("alert-evaluation"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create alert evaluation job: %w", err)
	}
	js.jobs["alert-evaluation"] = alertsJob

	log.Printf("Registered %d background jobs", len(js.jobs))
	return nil
}

// Start starts the scheduler and the stock change subscription
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	if js.subscriber != nil {
		stop, err := js.subscriber.Subscribe(caching.KeyStockLevels, js.onStockChanged)
		if err != nil {
			return fmt.Errorf("failed to subscribe to stock changes: %w", err)
		}
		js.mu.Lock()
		js.stops = append(js.stops, stop)
		js.mu.Unlock()
	}
	js.scheduler.Start()
	return nil
}

// Stop unsubscribes and waits for running jobs to finish
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	js.mu.Lock()
	for _, stop := range js.stops {
		stop()
	}
	js.stops = nil
	js.mu.Unlock()
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) onStockChanged(ctx context.Context, event events.ChangeEvent) {
	if event.Action == events.ActionEvaluated {
		return
	}
	if _, busy := js.running.LoadOrStore(event.TenantID, struct{}{}); busy {
		return
	}
	defer js.running.Delete(event.TenantID)

	result, err := js.evaluator.EvaluateTenant(ctx, event.TenantID)
	if err != nil {
		log.Printf("Failed to evaluate alerts for tenant %s after %s: %v", event.TenantID, event.Action, err)
		return
	}
	if result.Opened > 0 || result.Resolved > 0 {
		log.Printf("Alert evaluation for tenant %s: %d opened, %d resolved", event.TenantID, result.Opened, result.Resolved)
	}
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobs)
	names := make([]string, 0, len(js.jobs))
	for name, job := range js.jobs {
		names = append(names, name)
		if next, err := job.NextRun(); err == nil {
			status[name+"_next_run"] = next
		}
	}
	status["jobs"] = names
	status["evaluate_on_change"] = js.subscriber != nil
	return status
}

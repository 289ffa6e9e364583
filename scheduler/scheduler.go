package scheduler

import (
	"sync"
	"time"

	"github.com/paperlex/paperlex/logger"
	"github.com/paperlex/paperlex/metadata"
	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/util"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Dispatcher is the slice of the event pipeline the scheduler feeds; ticks
// enter the same pipeline as webhook events.
type Dispatcher interface {
	Enqueue(event model.Event)
}

// Scheduler maintains a next-fire time per schedule trigger and enqueues a
// tick event when it is due. Overlap prevention happens downstream through
// the per-workflow execution lock.
type Scheduler struct {
	metadata metadata.MetadataService
	dispatch Dispatcher
	stop     chan struct{}
	ticker   *util.TickWorker
	nextFire map[string]time.Time
	now      func() time.Time
}

func NewScheduler(metadataService metadata.MetadataService, dispatch Dispatcher, wg *sync.WaitGroup) *Scheduler {
	s := &Scheduler{
		metadata: metadataService,
		dispatch: dispatch,
		stop:     make(chan struct{}),
		nextFire: make(map[string]time.Time),
		now:      time.Now,
	}
	s.ticker = util.NewTickWorker("scheduler", time.Second, s.stop, s.Tick, wg)
	return s
}

func (s *Scheduler) Start() {
	s.ticker.Start()
	logger.Info("scheduler started")
}

func (s *Scheduler) Stop() {
	s.ticker.Stop()
}

// Tick scans every enabled workflow's schedule triggers once. Exported so a
// tick can be driven directly in tests.
func (s *Scheduler) Tick() {
	workflows, err := s.metadata.ListEnabled()
	if err != nil {
		logger.Error("scheduler failed to list workflows", zap.Error(err))
		return
	}
	now := s.now()
	seen := make(map[string]bool)
	for _, wf := range workflows {
		for _, trigger := range wf.Triggers {
			if trigger.Source != model.SOURCE_SCHEDULE {
				continue
			}
			seen[trigger.Id] = true
			schedule, err := cron.ParseStandard(trigger.Schedule)
			if err != nil {
				// validation rejects these at definition time; a stale
				// definition is skipped rather than crashing the loop
				logger.Error("invalid cron expression on trigger",
					zap.String("workflow", wf.Id), zap.String("trigger", trigger.Id), zap.Error(err))
				continue
			}
			next, ok := s.nextFire[trigger.Id]
			if !ok {
				s.nextFire[trigger.Id] = schedule.Next(now)
				continue
			}
			if now.Before(next) {
				continue
			}
			s.nextFire[trigger.Id] = schedule.Next(now)
			s.fire(wf, trigger, now)
		}
	}
	// drop state for triggers that disappeared
	for id := range s.nextFire {
		if !seen[id] {
			delete(s.nextFire, id)
		}
	}
}

func (s *Scheduler) fire(wf model.Workflow, trigger model.Trigger, now time.Time) {
	logger.Info("firing schedule trigger",
		zap.String("workflow", wf.Id), zap.String("trigger", trigger.Id))
	s.dispatch.Enqueue(model.Event{
		Source:     model.SOURCE_SCHEDULE,
		EventType:  trigger.EventType,
		WorkflowId: wf.Id,
		FiredAt:    now,
		Payload: map[string]any{
			"workflow_id": wf.Id,
			"fired_at":    now.UTC().Format(time.RFC3339),
		},
	})
}

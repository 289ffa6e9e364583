package service

import (
	"context"
	"sync"
	"time"

	"github.com/paperlex/paperlex/engine"
	"github.com/paperlex/paperlex/logger"
	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/util"
	"go.uber.org/zap"
)

// EventDispatchService feeds inbound events (webhook receipts and schedule
// ticks) through the pipeline: match, evaluate, lock, execute, record.
type EventDispatchService struct {
	matcher     *engine.TriggerMatcher
	executor    *engine.ActionExecutor
	recorder    engine.ExecutionRecorder
	locks       *engine.LockArena
	execTimeout time.Duration
	worker      *util.Worker
}

func NewEventDispatchService(
	matcher *engine.TriggerMatcher,
	executor *engine.ActionExecutor,
	recorder engine.ExecutionRecorder,
	locks *engine.LockArena,
	execTimeout time.Duration,
	wg *sync.WaitGroup,
	queueCapacity int,
) *EventDispatchService {
	s := &EventDispatchService{
		matcher:     matcher,
		executor:    executor,
		recorder:    recorder,
		locks:       locks,
		execTimeout: execTimeout,
	}
	s.worker = util.NewWorker("event-dispatch", wg, func(task util.Task) error {
		event, ok := task.(model.Event)
		if !ok {
			return nil
		}
		s.Dispatch(event)
		return nil
	}, queueCapacity)
	return s
}

func (s *EventDispatchService) Start() {
	s.worker.Start()
}

func (s *EventDispatchService) Stop() {
	s.worker.Stop()
}

// Enqueue hands the event to the dispatch worker without blocking the
// caller on execution.
func (s *EventDispatchService) Enqueue(event model.Event) {
	s.worker.Sender() <- event
}

// Dispatch runs every matching workflow concurrently and returns the
// resulting log rows. Workflows do not block on each other's outcome;
// execution within one workflow is sequential.
func (s *EventDispatchService) Dispatch(event model.Event) []model.WorkflowLog {
	matches, err := s.matcher.Match(event)
	if err != nil {
		logger.Error("trigger matching failed", zap.Error(err))
		return nil
	}
	if len(matches) == 0 {
		log := s.recorder.RecordSkip("", event, model.REASON_NO_MATCHING_WORKFLOW)
		return []model.WorkflowLog{log}
	}

	logs := make([]model.WorkflowLog, len(matches))
	var wg sync.WaitGroup
	for i, match := range matches {
		wg.Add(1)
		go func(i int, match engine.Match) {
			defer wg.Done()
			logs[i] = s.runMatch(event, match)
		}(i, match)
	}
	wg.Wait()
	return logs
}

func (s *EventDispatchService) runMatch(event model.Event, match engine.Match) model.WorkflowLog {
	wf := match.Workflow

	if !s.locks.TryAcquire(wf.Id) {
		logger.Info("skipping workflow, previous execution still running", zap.String("workflow", wf.Id))
		return s.recorder.RecordSkip(wf.Id, event, model.REASON_ALREADY_RUNNING)
	}
	defer s.locks.Release(wf.Id)

	fired := false
	for _, trigger := range match.Triggers {
		if engine.EvaluateConditions(trigger.Conditions, event.Payload) {
			fired = true
			break
		}
	}
	if !fired {
		return s.recorder.RecordSkip(wf.Id, event, model.REASON_CONDITIONS_NOT_MET)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.execTimeout)
	defer cancel()

	logger.Info("executing workflow", zap.String("workflow", wf.Id), zap.String("name", wf.Name),
		zap.String("source", string(event.Source)), zap.String("eventType", event.EventType))
	trace := s.executor.Execute(ctx, wf, event)
	return s.recorder.RecordTrace(event, trace)
}

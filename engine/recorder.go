package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/paperlex/paperlex/logger"
	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/persistence"
	"go.uber.org/zap"
)

// ExecutionRecorder persists the outcome of every run exactly once.
type ExecutionRecorder interface {
	RecordTrace(event model.Event, trace ExecutionTrace) model.WorkflowLog
	RecordSkip(workflowId string, event model.Event, reason string) model.WorkflowLog
}

type executionRecorder struct {
	logs persistence.LogStorage
}

func NewExecutionRecorder(logs persistence.LogStorage) ExecutionRecorder {
	return &executionRecorder{logs: logs}
}

func (r *executionRecorder) RecordTrace(event model.Event, trace ExecutionTrace) model.WorkflowLog {
	steps := make([]any, 0, len(trace.Steps))
	for _, step := range trace.Steps {
		steps = append(steps, step)
	}
	log := model.WorkflowLog{
		Id:         uuid.NewString(),
		WorkflowId: trace.WorkflowId,
		Status:     trace.Status,
		Input:      event.Payload,
		Output:     map[string]any{"actions": steps},
		ExecutedAt: time.Now().UTC(),
	}
	if trace.Status == model.RUN_STATUS_ERROR {
		log.ErrorMessage = trace.Reason
	}
	r.append(log)
	return log
}

func (r *executionRecorder) RecordSkip(workflowId string, event model.Event, reason string) model.WorkflowLog {
	log := model.WorkflowLog{
		Id:         uuid.NewString(),
		WorkflowId: workflowId,
		Status:     model.RUN_STATUS_SKIPPED,
		Input:      event.Payload,
		Output:     map[string]any{"reason": reason},
		ExecutedAt: time.Now().UTC(),
	}
	r.append(log)
	return log
}

func (r *executionRecorder) append(log model.WorkflowLog) {
	if err := r.logs.Append(log); err != nil {
		logger.Error("failed to persist workflow log",
			zap.String("workflow", log.WorkflowId),
			zap.String("status", string(log.Status)),
			zap.Error(err))
	}
}

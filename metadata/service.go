package metadata

import (
	"fmt"
	"time"

	c "github.com/patrickmn/go-cache"
	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/persistence"
	"github.com/robfig/cron/v3"
)

// ConfigurationError marks a workflow definition as not runnable. It is
// raised when a definition is saved, never mid-execution.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

func configErr(format string, args ...any) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

type MetadataService interface {
	ValidateWorkflow(wf model.Workflow) error
	GetWorkflow(id string) (*model.Workflow, error)
	ListEnabled() ([]model.Workflow, error)
	Invalidate(id string)
}

type metadataService struct {
	storage persistence.WorkflowStorage
	cache   *c.Cache
}

func NewMetadataService(storage persistence.WorkflowStorage) MetadataService {
	return &metadataService{
		storage: storage,
		cache:   c.New(30*time.Second, 10*time.Minute),
	}
}

// ValidateWorkflow enforces the definition-time invariants: at least one
// trigger, known sources/targets/action types/operators, a parseable cron
// expression on schedule triggers, and strictly increasing unique action
// sort order.
func (s *metadataService) ValidateWorkflow(wf model.Workflow) error {
	if wf.Name == "" {
		return configErr("workflow name is required")
	}
	if len(wf.Triggers) == 0 {
		return configErr("workflow %s has no trigger", wf.Name)
	}
	for _, trigger := range wf.Triggers {
		if !model.ValidSource(trigger.Source) {
			return configErr("unknown trigger source %q", trigger.Source)
		}
		if trigger.EventType == "" {
			return configErr("trigger event type is required")
		}
		if trigger.Source == model.SOURCE_SCHEDULE {
			if trigger.Schedule == "" {
				return configErr("schedule trigger requires a cron expression")
			}
			if _, err := cron.ParseStandard(trigger.Schedule); err != nil {
				return configErr("invalid cron expression %q: %v", trigger.Schedule, err)
			}
		}
		for field, cond := range trigger.Conditions {
			if field == "" {
				return configErr("condition field name is required")
			}
			if !model.ValidOperator(cond.Operator) {
				return configErr("unknown operator %q on field %q", cond.Operator, field)
			}
		}
	}
	seen := make(map[int]bool)
	lastOrder := -1 << 31
	for _, action := range wf.Actions {
		if !model.ValidTarget(action.Target) {
			return configErr("unknown action target %q", action.Target)
		}
		if !model.ValidActionType(action.Type) {
			return configErr("unknown action type %q", action.Type)
		}
		if seen[action.SortOrder] {
			return configErr("duplicate action sort order %d", action.SortOrder)
		}
		if action.SortOrder < lastOrder {
			return configErr("action sort order %d out of sequence", action.SortOrder)
		}
		seen[action.SortOrder] = true
		lastOrder = action.SortOrder
	}
	return nil
}

func (s *metadataService) GetWorkflow(id string) (*model.Workflow, error) {
	if cached, found := s.cache.Get(id); found {
		wf := cached.(model.Workflow)
		return &wf, nil
	}
	wf, err := s.storage.Get(id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(id, *wf, c.DefaultExpiration)
	return wf, nil
}

func (s *metadataService) ListEnabled() ([]model.Workflow, error) {
	return s.storage.ListEnabled()
}

func (s *metadataService) Invalidate(id string) {
	s.cache.Delete(id)
}

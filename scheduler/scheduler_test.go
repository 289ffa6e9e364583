package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/paperlex/paperlex/metadata"
	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureDispatcher struct {
	events []model.Event
}

func (c *captureDispatcher) Enqueue(event model.Event) {
	c.events = append(c.events, event)
}

func scheduleWorkflow(id, cronExpr string, enabled bool) model.Workflow {
	return model.Workflow{
		Id:      id,
		Name:    "scheduled " + id,
		Enabled: enabled,
		Triggers: []model.Trigger{{
			Id:        id + "-t",
			Source:    model.SOURCE_SCHEDULE,
			EventType: "cadence",
			Schedule:  cronExpr,
		}},
	}
}

func newTestScheduler(t *testing.T, workflows ...model.Workflow) (*Scheduler, *captureDispatcher) {
	storage := persistence.NewInMemStorage()
	for _, wf := range workflows {
		require.NoError(t, storage.Workflows().Save(wf))
	}
	dispatch := &captureDispatcher{}
	var wg sync.WaitGroup
	s := NewScheduler(metadata.NewMetadataService(storage.Workflows()), dispatch, &wg)
	return s, dispatch
}

func TestScheduler_FiresWhenDue(t *testing.T) {
	s, dispatch := newTestScheduler(t, scheduleWorkflow("wf-1", "*/5 * * * *", true))

	base := time.Date(2026, 5, 1, 10, 1, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	s.Tick()
	assert.Empty(t, dispatch.events, "first sight only primes the next fire time")

	base = time.Date(2026, 5, 1, 10, 5, 1, 0, time.UTC)
	s.Tick()
	require.Len(t, dispatch.events, 1)
	event := dispatch.events[0]
	assert.Equal(t, model.SOURCE_SCHEDULE, event.Source)
	assert.Equal(t, "cadence", event.EventType)
	assert.Equal(t, "wf-1", event.WorkflowId)
	assert.Equal(t, "wf-1", event.Payload["workflow_id"])

	// same instant again: next fire already advanced
	s.Tick()
	assert.Len(t, dispatch.events, 1)

	base = time.Date(2026, 5, 1, 10, 10, 1, 0, time.UTC)
	s.Tick()
	assert.Len(t, dispatch.events, 2)
}

func TestScheduler_IgnoresDisabledWorkflows(t *testing.T) {
	s, dispatch := newTestScheduler(t, scheduleWorkflow("wf-off", "* * * * *", false))

	base := time.Date(2026, 5, 1, 10, 0, 30, 0, time.UTC)
	s.now = func() time.Time { return base }
	s.Tick()
	base = base.Add(2 * time.Minute)
	s.Tick()

	assert.Empty(t, dispatch.events)
	assert.Empty(t, s.nextFire)
}

func TestScheduler_PrunesRemovedTriggers(t *testing.T) {
	storage := persistence.NewInMemStorage()
	wf := scheduleWorkflow("wf-1", "*/5 * * * *", true)
	require.NoError(t, storage.Workflows().Save(wf))
	dispatch := &captureDispatcher{}
	var wg sync.WaitGroup
	s := NewScheduler(metadata.NewMetadataService(storage.Workflows()), dispatch, &wg)

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	s.Tick()
	assert.Len(t, s.nextFire, 1)

	require.NoError(t, storage.Workflows().Delete(wf.Id))
	s.Tick()
	assert.Empty(t, s.nextFire)
}

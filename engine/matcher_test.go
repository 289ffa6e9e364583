package engine

import (
	"testing"
	"time"

	"github.com/paperlex/paperlex/metadata"
	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatcher(t *testing.T, workflows ...model.Workflow) *TriggerMatcher {
	storage := persistence.NewInMemStorage()
	for _, wf := range workflows {
		require.NoError(t, storage.Workflows().Save(wf))
	}
	return NewTriggerMatcher(metadata.NewMetadataService(storage.Workflows()))
}

func docWorkflow(id string, createdAt time.Time, enabled bool) model.Workflow {
	return model.Workflow{
		Id:        id,
		Name:      "wf " + id,
		Enabled:   enabled,
		CreatedAt: createdAt,
		Triggers: []model.Trigger{
			{Id: id + "-t", Source: model.SOURCE_PAPERLESS, EventType: "document_created"},
		},
	}
}

func TestTriggerMatcher_OrdersByCreationTime(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	matcher := newMatcher(t,
		docWorkflow("later", base.Add(time.Hour), true),
		docWorkflow("earlier", base, true),
	)

	matches, err := matcher.Match(model.Event{Source: model.SOURCE_PAPERLESS, EventType: "document_created"})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "earlier", matches[0].Workflow.Id)
	assert.Equal(t, "later", matches[1].Workflow.Id)
}

func TestTriggerMatcher_SkipsDisabledAndNonMatching(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	disabled := docWorkflow("disabled", base, false)
	otherEvent := docWorkflow("other", base, true)
	otherEvent.Triggers[0].EventType = "document_updated"
	matcher := newMatcher(t, disabled, otherEvent, docWorkflow("match", base, true))

	matches, err := matcher.Match(model.Event{Source: model.SOURCE_PAPERLESS, EventType: "document_created"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "match", matches[0].Workflow.Id)
}

func TestTriggerMatcher_NoCandidates(t *testing.T) {
	matcher := newMatcher(t, docWorkflow("wf", time.Now(), true))

	matches, err := matcher.Match(model.Event{Source: model.SOURCE_LEXOFFICE, EventType: "voucher.created"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestTriggerMatcher_ScheduleTickTargetsOneWorkflow(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := model.Workflow{
		Id: "a", Name: "a", Enabled: true, CreatedAt: base,
		Triggers: []model.Trigger{{Id: "a-t", Source: model.SOURCE_SCHEDULE, EventType: "cadence", Schedule: "*/5 * * * *"}},
	}
	b := model.Workflow{
		Id: "b", Name: "b", Enabled: true, CreatedAt: base,
		Triggers: []model.Trigger{{Id: "b-t", Source: model.SOURCE_SCHEDULE, EventType: "cadence", Schedule: "*/5 * * * *"}},
	}
	matcher := newMatcher(t, a, b)

	matches, err := matcher.Match(model.Event{Source: model.SOURCE_SCHEDULE, EventType: "cadence", WorkflowId: "b"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b", matches[0].Workflow.Id)
}

func TestTriggerMatcher_TriggersSortedWithinMatch(t *testing.T) {
	wf := model.Workflow{
		Id: "wf", Name: "wf", Enabled: true, CreatedAt: time.Now(),
		Triggers: []model.Trigger{
			{Id: "second", Source: model.SOURCE_PAPERLESS, EventType: "document_created", SortOrder: 2},
			{Id: "first", Source: model.SOURCE_PAPERLESS, EventType: "document_created", SortOrder: 1},
		},
	}
	matcher := newMatcher(t, wf)

	matches, err := matcher.Match(model.Event{Source: model.SOURCE_PAPERLESS, EventType: "document_created"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Len(t, matches[0].Triggers, 2)
	assert.Equal(t, "first", matches[0].Triggers[0].Id)
	assert.Equal(t, "second", matches[0].Triggers[1].Id)
}

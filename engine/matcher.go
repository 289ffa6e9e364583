package engine

import (
	"sort"

	"github.com/paperlex/paperlex/metadata"
	"github.com/paperlex/paperlex/model"
)

// Match pairs a candidate workflow with the triggers that matched the
// event's source and type, ordered by trigger sort order.
type Match struct {
	Workflow model.Workflow
	Triggers []model.Trigger
}

type TriggerMatcher struct {
	metadata metadata.MetadataService
}

func NewTriggerMatcher(metadata metadata.MetadataService) *TriggerMatcher {
	return &TriggerMatcher{metadata: metadata}
}

// Match returns candidates for the event in ascending workflow creation
// time. A schedule tick addressed to one workflow only considers that
// workflow. Condition evaluation happens later, at dispatch.
func (m *TriggerMatcher) Match(event model.Event) ([]Match, error) {
	workflows, err := m.metadata.ListEnabled()
	if err != nil {
		return nil, err
	}
	var matches []Match
	for _, wf := range workflows {
		if event.WorkflowId != "" && wf.Id != event.WorkflowId {
			continue
		}
		var triggers []model.Trigger
		for _, trigger := range wf.Triggers {
			if trigger.Source == event.Source && trigger.EventType == event.EventType {
				triggers = append(triggers, trigger)
			}
		}
		if len(triggers) == 0 {
			continue
		}
		sort.SliceStable(triggers, func(i, j int) bool {
			return triggers[i].SortOrder < triggers[j].SortOrder
		})
		matches = append(matches, Match{Workflow: wf, Triggers: triggers})
	}
	return matches, nil
}

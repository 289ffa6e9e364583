package persistence

import (
	"fmt"
	"sort"
	"sync"

	"github.com/paperlex/paperlex/model"
)

// InMemStorage backs the engine with plain maps, used for the memory
// storage type and in tests.
type InMemStorage struct {
	mu        sync.RWMutex
	workflows map[string]model.Workflow
	logs      []model.WorkflowLog
	mappings  map[string]model.ContactMapping
}

var _ Storage = new(InMemStorage)

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{
		workflows: make(map[string]model.Workflow),
		mappings:  make(map[string]model.ContactMapping),
	}
}

func (s *InMemStorage) Workflows() WorkflowStorage { return (*inMemWorkflows)(s) }
func (s *InMemStorage) Logs() LogStorage           { return (*inMemLogs)(s) }
func (s *InMemStorage) Mappings() MappingStorage   { return (*inMemMappings)(s) }

type inMemWorkflows InMemStorage

func (s *inMemWorkflows) Save(wf model.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[wf.Id] = wf
	return nil
}

func (s *inMemWorkflows) Get(id string) (*model.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.workflows[id]
	if !ok {
		return nil, fmt.Errorf("workflow %s not found", id)
	}
	return &wf, nil
}

func (s *inMemWorkflows) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workflows, id)
	return nil
}

func (s *inMemWorkflows) List() ([]model.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		out = append(out, wf)
	}
	sortByCreation(out)
	return out, nil
}

func (s *inMemWorkflows) ListEnabled() ([]model.Workflow, error) {
	all, _ := s.List()
	out := all[:0]
	for _, wf := range all {
		if wf.Enabled {
			out = append(out, wf)
		}
	}
	return out, nil
}

func sortByCreation(wfs []model.Workflow) {
	sort.SliceStable(wfs, func(i, j int) bool {
		if wfs[i].CreatedAt.Equal(wfs[j].CreatedAt) {
			return wfs[i].Id < wfs[j].Id
		}
		return wfs[i].CreatedAt.Before(wfs[j].CreatedAt)
	})
}

type inMemLogs InMemStorage

func (s *inMemLogs) Append(log model.WorkflowLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	return nil
}

func (s *inMemLogs) ListByWorkflow(workflowId string, limit int) ([]model.WorkflowLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.WorkflowLog
	for i := len(s.logs) - 1; i >= 0; i-- {
		if s.logs[i].WorkflowId == workflowId {
			out = append(out, s.logs[i])
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

type inMemMappings InMemStorage

func (s *inMemMappings) Save(m model.ContactMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[m.Id] = m
	return nil
}

func (s *inMemMappings) GetByCorrespondent(correspondentId string) (*model.ContactMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.mappings {
		if m.CorrespondentId == correspondentId {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (s *inMemMappings) GetByContact(contactId string) (*model.ContactMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.mappings {
		if m.ContactId == contactId {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (s *inMemMappings) List() ([]model.ContactMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ContactMapping, 0, len(s.mappings))
	for _, m := range s.mappings {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

package persistence

import "github.com/paperlex/paperlex/model"

// WorkflowStorage persists workflow definitions. Definitions are mutated
// only through the configuration surface and are read-only to the engine.
type WorkflowStorage interface {
	Save(wf model.Workflow) error
	Get(id string) (*model.Workflow, error)
	Delete(id string) error
	// ListEnabled returns enabled workflows in ascending creation time.
	ListEnabled() ([]model.Workflow, error)
	List() ([]model.Workflow, error)
}

// LogStorage is append-only; a log row is never mutated after Append.
type LogStorage interface {
	Append(log model.WorkflowLog) error
	ListByWorkflow(workflowId string, limit int) ([]model.WorkflowLog, error)
}

// MappingStorage persists contact mappings. Rows are inserted and updated
// by the reconciler, never deleted by the engine.
type MappingStorage interface {
	Save(m model.ContactMapping) error
	GetByCorrespondent(correspondentId string) (*model.ContactMapping, error)
	GetByContact(contactId string) (*model.ContactMapping, error)
	List() ([]model.ContactMapping, error)
}

type Storage interface {
	Workflows() WorkflowStorage
	Logs() LogStorage
	Mappings() MappingStorage
}

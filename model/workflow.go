package model

import "time"

type Source string

const SOURCE_PAPERLESS Source = "paperless"
const SOURCE_LEXOFFICE Source = "lexoffice"
const SOURCE_SCHEDULE Source = "schedule"

func ValidSource(s Source) bool {
	switch s {
	case SOURCE_PAPERLESS, SOURCE_LEXOFFICE, SOURCE_SCHEDULE:
		return true
	}
	return false
}

type Target string

const TARGET_PAPERLESS Target = "paperless"
const TARGET_LEXOFFICE Target = "lexoffice"

func ValidTarget(t Target) bool {
	return t == TARGET_PAPERLESS || t == TARGET_LEXOFFICE
}

type ActionType string

const ACTION_CREATE_DOCUMENT ActionType = "create_document"
const ACTION_CREATE_VOUCHER ActionType = "create_voucher"
const ACTION_CREATE_CONTACT ActionType = "create_contact"
const ACTION_ADD_LABEL ActionType = "add_label"
const ACTION_UPLOAD_ATTACHMENT ActionType = "upload_attachment"
const ACTION_UPDATE_FIELD ActionType = "update_field"
const ACTION_DOWNLOAD_DOCUMENT ActionType = "download_document"

var validActionTypes = map[ActionType]bool{
	ACTION_CREATE_DOCUMENT:   true,
	ACTION_CREATE_VOUCHER:    true,
	ACTION_CREATE_CONTACT:    true,
	ACTION_ADD_LABEL:         true,
	ACTION_UPLOAD_ATTACHMENT: true,
	ACTION_UPDATE_FIELD:      true,
	ACTION_DOWNLOAD_DOCUMENT: true,
}

func ValidActionType(at ActionType) bool {
	return validActionTypes[at]
}

type Operator string

const OP_EQUALS Operator = "equals"
const OP_NOT_EQUALS Operator = "not_equals"
const OP_CONTAINS Operator = "contains"
const OP_IN Operator = "in"
const OP_MATCHES Operator = "matches"
const OP_GREATER_THAN Operator = "greater_than"
const OP_LESS_THAN Operator = "less_than"
const OP_EXISTS Operator = "exists"

var validOperators = map[Operator]bool{
	OP_EQUALS:       true,
	OP_NOT_EQUALS:   true,
	OP_CONTAINS:     true,
	OP_IN:           true,
	OP_MATCHES:      true,
	OP_GREATER_THAN: true,
	OP_LESS_THAN:    true,
	OP_EXISTS:       true,
}

func ValidOperator(op Operator) bool {
	return validOperators[op]
}

// Condition is one comparison against a payload field. The field name is the
// key of the enclosing Conditions map and may be a dot path into nested data.
type Condition struct {
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

type Trigger struct {
	Id         string               `json:"id"`
	Source     Source               `json:"source"`
	EventType  string               `json:"eventType"`
	Conditions map[string]Condition `json:"conditions,omitempty"`
	// Schedule is a cron expression, only meaningful when Source is schedule.
	Schedule  string `json:"schedule,omitempty"`
	SortOrder int    `json:"sortOrder"`
}

type Action struct {
	Id         string         `json:"id"`
	Target     Target         `json:"target"`
	Type       ActionType     `json:"type"`
	Parameters map[string]any `json:"parameters,omitempty"`
	SortOrder  int            `json:"sortOrder"`
}

type Workflow struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Enabled   bool      `json:"enabled"`
	Triggers  []Trigger `json:"triggers"`
	Actions   []Action  `json:"actions"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

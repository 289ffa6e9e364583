package model

import "time"

type RunStatus string

const RUN_STATUS_SUCCESS RunStatus = "success"
const RUN_STATUS_ERROR RunStatus = "error"
const RUN_STATUS_SKIPPED RunStatus = "skipped"

const REASON_NO_MATCHING_WORKFLOW = "no matching workflow"
const REASON_CONDITIONS_NOT_MET = "conditions not satisfied"
const REASON_ALREADY_RUNNING = "previous execution still running"
const REASON_EXECUTION_TIMEOUT = "execution timeout"

// WorkflowLog is the immutable audit record of one execution attempt.
// It is written exactly once and never mutated.
type WorkflowLog struct {
	Id           string         `json:"id"`
	WorkflowId   string         `json:"workflowId"`
	Status       RunStatus      `json:"status"`
	Input        map[string]any `json:"input,omitempty"`
	Output       map[string]any `json:"output,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	ExecutedAt   time.Time      `json:"executedAt"`
}

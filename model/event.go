package model

import "time"

// Event is the single inbound shape consumed by the trigger matcher. Webhook
// receipts and schedule ticks are both normalized into it.
type Event struct {
	Source    Source         `json:"source"`
	EventType string         `json:"eventType"`
	Payload   map[string]any `json:"payload"`
	// WorkflowId is set on schedule ticks to address a single workflow.
	WorkflowId string    `json:"workflowId,omitempty"`
	FiredAt    time.Time `json:"firedAt"`
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/paperlex/paperlex/connector"
	"github.com/paperlex/paperlex/logger"
	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/util"
	"go.uber.org/zap"
)

type StepStatus string

const STEP_SUCCESS StepStatus = "success"
const STEP_ERROR StepStatus = "error"

// StepResult is one action's outcome within a run.
type StepResult struct {
	Index  int              `json:"index"`
	Type   model.ActionType `json:"type"`
	Target model.Target     `json:"target"`
	Status StepStatus       `json:"status"`
	Output connector.Item   `json:"output,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// ExecutionTrace records every action attempted in a run and the point of
// failure when one aborts the sequence.
type ExecutionTrace struct {
	WorkflowId string
	Status     model.RunStatus
	Reason     string
	Steps      []StepResult
	StartedAt  time.Time
}

// ActionExecutor runs a workflow's ordered action list against the
// connectors. Fail-fast: the first failing action aborts the rest; completed
// actions are never rolled back.
type ActionExecutor struct {
	connectors map[model.Target]connector.Connector
}

func NewActionExecutor(connectors map[model.Target]connector.Connector) *ActionExecutor {
	return &ActionExecutor{connectors: connectors}
}

// Execute runs the workflow's actions in ascending sort order. Each action's
// parameters are resolved against the run data (event payload plus prior
// action outputs) immediately before dispatch.
func (e *ActionExecutor) Execute(ctx context.Context, wf model.Workflow, event model.Event) ExecutionTrace {
	trace := ExecutionTrace{
		WorkflowId: wf.Id,
		Status:     model.RUN_STATUS_SUCCESS,
		StartedAt:  time.Now().UTC(),
	}

	actions := make([]model.Action, len(wf.Actions))
	copy(actions, wf.Actions)
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].SortOrder < actions[j].SortOrder
	})

	data := make(map[string]any, len(event.Payload))
	for k, v := range event.Payload {
		data[k] = v
	}

	for i, action := range actions {
		step := StepResult{Index: i, Type: action.Type, Target: action.Target}
		if err := ctx.Err(); err != nil {
			step.Status = STEP_ERROR
			step.Error = model.REASON_EXECUTION_TIMEOUT
			trace.Steps = append(trace.Steps, step)
			trace.Status = model.RUN_STATUS_ERROR
			trace.Reason = model.REASON_EXECUTION_TIMEOUT
			return trace
		}

		params := util.ResolveParams(data, action.Parameters)
		output, err := e.runAction(ctx, action, params, data)
		if err != nil {
			step.Status = STEP_ERROR
			if errors.Is(err, context.DeadlineExceeded) {
				step.Error = model.REASON_EXECUTION_TIMEOUT
				trace.Reason = model.REASON_EXECUTION_TIMEOUT
			} else {
				step.Error = err.Error()
				trace.Reason = fmt.Sprintf("action %s failed: %v", action.Type, err)
			}
			trace.Steps = append(trace.Steps, step)
			trace.Status = model.RUN_STATUS_ERROR
			logger.Error("action failed, aborting run",
				zap.String("workflow", wf.Id),
				zap.String("action", string(action.Type)),
				zap.Error(err))
			return trace
		}

		step.Status = STEP_SUCCESS
		step.Output = output
		trace.Steps = append(trace.Steps, step)
		// merge output into run data so later actions can chain on it
		for k, v := range output {
			data[k] = v
		}
	}
	return trace
}

func (e *ActionExecutor) runAction(ctx context.Context, action model.Action, params map[string]any, data map[string]any) (connector.Item, error) {
	conn, ok := e.connectors[action.Target]
	if !ok {
		return nil, fmt.Errorf("no connector configured for target %s", action.Target)
	}
	switch action.Type {
	case model.ACTION_CREATE_DOCUMENT:
		item, err := conn.Create(ctx, connector.ITEM_TYPE_DOCUMENT, withRunContent(params, data))
		if err != nil {
			return nil, err
		}
		return connector.Item{"document": map[string]any(item)}, nil

	case model.ACTION_CREATE_VOUCHER:
		item, err := conn.Create(ctx, connector.ITEM_TYPE_VOUCHER, connector.Item(params))
		if err != nil {
			return nil, err
		}
		return connector.Item{"voucher": map[string]any(item)}, nil

	case model.ACTION_CREATE_CONTACT:
		item, err := conn.Create(ctx, connector.ITEM_TYPE_CONTACT, connector.Item(params))
		if err != nil {
			return nil, err
		}
		return connector.Item{"contact": map[string]any(item)}, nil

	case model.ACTION_ADD_LABEL:
		ownerId := stringParam(params, "owner_id")
		label := stringParam(params, "label")
		if ownerId == "" || label == "" {
			return nil, fmt.Errorf("add_label requires owner_id and label")
		}
		if err := conn.SetLabel(ctx, ownerId, label); err != nil {
			return nil, err
		}
		return connector.Item{"labeled": true}, nil

	case model.ACTION_UPLOAD_ATTACHMENT:
		ownerId := stringParam(params, "owner_id")
		if ownerId == "" {
			return nil, fmt.Errorf("upload_attachment requires owner_id")
		}
		blob := connector.Attachment{Filename: stringParam(params, "filename")}
		if content, ok := params["content"].([]byte); ok {
			blob.Content = content
		} else if content, ok := data["content"].([]byte); ok {
			// fall back to the file a prior download_document action staged
			blob.Content = content
			if blob.Filename == "" {
				blob.Filename, _ = data["filename"].(string)
			}
		}
		item, err := conn.UploadAttachment(ctx, ownerId, blob)
		if err != nil {
			return nil, err
		}
		return connector.Item{"attachment": map[string]any(item)}, nil

	case model.ACTION_UPDATE_FIELD:
		ownerId := stringParam(params, "owner_id")
		field := stringParam(params, "field")
		if ownerId == "" || field == "" {
			return nil, fmt.Errorf("update_field requires owner_id and field")
		}
		if err := conn.SetField(ctx, ownerId, field, params["value"]); err != nil {
			return nil, err
		}
		return connector.Item{"updated": true}, nil

	case model.ACTION_DOWNLOAD_DOCUMENT:
		documentId := stringParam(params, "document_id")
		if documentId == "" {
			return nil, fmt.Errorf("download_document requires document_id")
		}
		return conn.Fetch(ctx, connector.ITEM_TYPE_DOCUMENT_FILE, documentId)
	}
	return nil, fmt.Errorf("unknown action type %s", action.Type)
}

// withRunContent copies staged file content into a document create payload
// when the definition did not set one explicitly.
func withRunContent(params map[string]any, data map[string]any) connector.Item {
	payload := connector.Item(params)
	if _, ok := payload["content"]; !ok {
		if content, ok := data["content"].([]byte); ok {
			payload["content"] = content
		}
		if _, ok := payload["filename"]; !ok {
			if filename, ok := data["filename"].(string); ok {
				payload["filename"] = filename
			}
		}
	}
	return payload
}

func stringParam(params map[string]any, key string) string {
	v, ok := params[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

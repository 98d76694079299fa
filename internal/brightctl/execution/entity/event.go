package entity

import (
	"bytes"

	"github.com/kiosk404/brightchat/pkg/utils/json"
)

// EventType identifies the kind of an execution event on the wire.
type EventType string

const (
	// EventPlan carries the agent's plan for the run.
	EventPlan EventType = "plan"

	// EventSubtaskStatus reports a subtask transition; "completed" advances the plan.
	EventSubtaskStatus EventType = "subtask_status"

	// EventStart marks the beginning of server-side execution.
	EventStart EventType = "start"

	// EventStep reports a graph node step, optionally with provisional output.
	EventStep EventType = "step"

	// EventToolCall reports one finished tool invocation.
	EventToolCall EventType = "tool_call"

	// EventComplete is the successful terminal event.
	EventComplete EventType = "complete"

	// EventError is the failed terminal event.
	EventError EventType = "error"
)

// IsTerminal returns true for the two event types that end an execution.
func (t EventType) IsTerminal() bool {
	return t == EventComplete || t == EventError
}

// Event is one decoded execution event.
//
// The implementations in this package form a closed set; code that folds
// events switches over the concrete types and treats *UnknownEvent as the
// forward-compatible catch-all.
type Event interface {
	// Type returns the wire discriminator.
	Type() EventType

	isEvent()
}

// PlanEvent replaces the current plan.
type PlanEvent struct {
	Plan
}

// SubtaskStatusEvent reports the status of the current subtask.
type SubtaskStatusEvent struct {
	Status    SubtaskStatus `json:"status"`
	SubtaskID string        `json:"subtask_id,omitempty"`
}

// StartEvent marks the start of the server-side execution.
type StartEvent struct {
	ExecutionID string `json:"execution_id"`
}

// StepEvent reports progress of one graph node.
type StepEvent struct {
	Node  string         `json:"node"`
	Step  int            `json:"step"`
	State map[string]any `json:"state,omitempty"`
}

// Output returns state.output when it is present and a string.
func (e *StepEvent) Output() (string, bool) {
	if e.State == nil {
		return "", false
	}
	out, ok := e.State["output"].(string)
	return out, ok
}

// ToolCallEvent reports a tool invocation together with its result.
type ToolCallEvent struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Result     any            `json:"result,omitempty"`
}

// CompleteEvent carries the authoritative final output.
type CompleteEvent struct {
	Output string `json:"output"`
}

// ErrorEvent carries the server-side failure message.
type ErrorEvent struct {
	Message string `json:"error"`
}

// UnknownEvent is any event whose type is not recognized. Raw holds the
// original payload so it can be shown in the execution history.
type UnknownEvent struct {
	Kind string
	Raw  json.RawMessage
}

func (*PlanEvent) Type() EventType          { return EventPlan }
func (*SubtaskStatusEvent) Type() EventType { return EventSubtaskStatus }
func (*StartEvent) Type() EventType         { return EventStart }
func (*StepEvent) Type() EventType          { return EventStep }
func (*ToolCallEvent) Type() EventType      { return EventToolCall }
func (*CompleteEvent) Type() EventType      { return EventComplete }
func (*ErrorEvent) Type() EventType         { return EventError }
func (e *UnknownEvent) Type() EventType     { return EventType(e.Kind) }

func (*PlanEvent) isEvent()          {}
func (*SubtaskStatusEvent) isEvent() {}
func (*StartEvent) isEvent()         {}
func (*StepEvent) isEvent()          {}
func (*ToolCallEvent) isEvent()      {}
func (*CompleteEvent) isEvent()      {}
func (*ErrorEvent) isEvent()         {}
func (*UnknownEvent) isEvent()       {}

// The MarshalJSON methods put the discriminator back so that an events log
// serializes to the same shape it was received in.

func (e *PlanEvent) MarshalJSON() ([]byte, error) {
	type alias PlanEvent
	return marshalTagged(EventPlan, (*alias)(e))
}

func (e *SubtaskStatusEvent) MarshalJSON() ([]byte, error) {
	type alias SubtaskStatusEvent
	return marshalTagged(EventSubtaskStatus, (*alias)(e))
}

func (e *StartEvent) MarshalJSON() ([]byte, error) {
	type alias StartEvent
	return marshalTagged(EventStart, (*alias)(e))
}

func (e *StepEvent) MarshalJSON() ([]byte, error) {
	type alias StepEvent
	return marshalTagged(EventStep, (*alias)(e))
}

func (e *ToolCallEvent) MarshalJSON() ([]byte, error) {
	type alias ToolCallEvent
	return marshalTagged(EventToolCall, (*alias)(e))
}

func (e *CompleteEvent) MarshalJSON() ([]byte, error) {
	type alias CompleteEvent
	return marshalTagged(EventComplete, (*alias)(e))
}

func (e *ErrorEvent) MarshalJSON() ([]byte, error) {
	type alias ErrorEvent
	return marshalTagged(EventError, (*alias)(e))
}

func (e *UnknownEvent) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	return marshalTagged(EventType(e.Kind), struct{}{})
}

func marshalTagged(t EventType, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(string(t))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(tag) + 9)
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

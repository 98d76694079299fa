package entity

import (
	"time"
)

// OutputTier ranks the source of the displayed output. A higher tier always
// wins over a lower one, and TierFinal can never be replaced.
type OutputTier int

const (
	// TierNone means nothing has been shown yet.
	TierNone OutputTier = iota
	// TierProvisional is text from the most recent step event.
	TierProvisional
	// TierFinal is the complete output or the formatted error.
	TierFinal
)

// ExecutionState is the aggregated view of one agent invocation.
//
// Values are treated as immutable snapshots: the reducer never modifies a
// state it was given, it returns a new one. Slices are shared between
// snapshots only up to their length, so appending in a later snapshot never
// changes an earlier one.
type ExecutionState struct {
	// MessageID is the chat message this execution produces.
	MessageID string `json:"message_id"`

	// ExecutionID is the server-side id announced by the start event.
	ExecutionID string `json:"execution_id,omitempty"`

	// Events is the full replay log, in arrival order.
	Events []Event `json:"events"`

	// ToolCalls is the append-only tool call log.
	ToolCalls []ToolCallRecord `json:"tool_calls"`

	// Plan is the most recent plan, nil until a plan event arrives.
	Plan *Plan `json:"plan,omitempty"`

	// CurrentSubtaskIndex counts completed subtasks of the current plan.
	CurrentSubtaskIndex int `json:"current_subtask_index"`

	// StartTime is when the user submitted the message.
	StartTime time.Time `json:"start_time"`

	// EndTime is set by the terminal event.
	EndTime *time.Time `json:"end_time,omitempty"`

	// IsComplete becomes true at the terminal event; the state is frozen afterwards.
	IsComplete bool `json:"is_complete"`

	// Failed is true when the terminal event was an error.
	Failed bool `json:"failed,omitempty"`

	// DisplayedOutput is the text currently shown as the answer.
	DisplayedOutput string `json:"displayed_output"`

	// OutputTier records where DisplayedOutput came from.
	OutputTier OutputTier `json:"output_tier"`
}

// NewExecutionState creates the state for a freshly submitted message.
func NewExecutionState(messageID string, startTime time.Time) *ExecutionState {
	return &ExecutionState{
		MessageID: messageID,
		StartTime: startTime,
	}
}

// ActivePlan returns the plan that live progress views should display.
// It is nil before any plan arrives and after the execution is complete.
func (s *ExecutionState) ActivePlan() *Plan {
	if s.IsComplete {
		return nil
	}
	return s.Plan
}

// Duration returns the elapsed time of the execution, measured up to now
// while it is still running.
func (s *ExecutionState) Duration(now time.Time) time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}

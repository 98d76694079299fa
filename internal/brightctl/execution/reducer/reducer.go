// Package reducer folds execution events into ExecutionState snapshots.
//
// Reduce is the only place where execution state changes. It is a pure
// function of the previous snapshot, the event and the arrival time, so the
// whole transition table can be exercised without a transport or a terminal.
package reducer

import (
	"slices"
	"time"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/pkg"
	"github.com/kiosk404/brightchat/pkg/logger"
)

// Reduce applies ev to prev and returns the next snapshot. prev is not modified.
//
// Once prev is complete it is returned as is: a terminal state never changes.
// An error event produces a final snapshot and an *entity.ExecutionError; the
// caller must publish the snapshot before acting on the error.
func Reduce(prev *entity.ExecutionState, ev entity.Event, at time.Time) (*entity.ExecutionState, error) {
	if prev.IsComplete {
		logger.DebugX(pkg.ModuleName, "[Reducer] message %s is complete, ignoring %s event", prev.MessageID, ev.Type())
		return prev, nil
	}

	next := *prev
	// Snapshots never share a backing array, so every append copies the log:
	// a stream of n events costs O(n²) element copies in total.
	next.Events = append(slices.Clip(prev.Events), ev)

	switch e := ev.(type) {
	case *entity.PlanEvent:
		plan := e.Plan
		plan.Subtasks = slices.Clone(e.Subtasks)
		next.Plan = &plan
		next.CurrentSubtaskIndex = 0

	case *entity.SubtaskStatusEvent:
		if e.Status == entity.SubtaskCompleted {
			next.CurrentSubtaskIndex = prev.CurrentSubtaskIndex + 1
		}

	case *entity.StartEvent:
		next.ExecutionID = e.ExecutionID

	case *entity.StepEvent:
		if out, ok := e.Output(); ok {
			next.OutputTier, next.DisplayedOutput = ResolveOutput(prev.OutputTier, prev.DisplayedOutput, entity.TierProvisional, out)
		}

	case *entity.ToolCallEvent:
		next.ToolCalls = append(slices.Clip(prev.ToolCalls), entity.ToolCallRecord{
			Tool:       e.Tool,
			Parameters: e.Parameters,
			Result:     e.Result,
			Timestamp:  at,
		})

	case *entity.CompleteEvent:
		next.OutputTier, next.DisplayedOutput = ResolveOutput(prev.OutputTier, prev.DisplayedOutput, entity.TierFinal, e.Output)
		finish(&next, at)

	case *entity.ErrorEvent:
		next.OutputTier, next.DisplayedOutput = ResolveOutput(prev.OutputTier, prev.DisplayedOutput, entity.TierFinal, FormatError(e.Message))
		next.Failed = true
		finish(&next, at)
		return &next, &entity.ExecutionError{
			MessageID:   next.MessageID,
			ExecutionID: next.ExecutionID,
			Message:     e.Message,
		}

	case *entity.UnknownEvent:
		logger.DebugX(pkg.ModuleName, "[Reducer] unknown event type %q recorded in history only", e.Kind)
	}

	return &next, nil
}

// Fold reduces events in order starting from initial. It stops at the first
// error event and returns the snapshot produced by it together with the error.
func Fold(initial *entity.ExecutionState, events []entity.Event, clock func() time.Time) (*entity.ExecutionState, error) {
	if clock == nil {
		clock = time.Now
	}
	state := initial
	for _, ev := range events {
		next, err := Reduce(state, ev, clock())
		state = next
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

func finish(s *entity.ExecutionState, at time.Time) {
	end := at
	s.EndTime = &end
	s.IsComplete = true
}

package reducer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/pkg/errno"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// tick returns a clock that advances one second per call.
func tick() func() time.Time {
	now := t0
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newState() *entity.ExecutionState {
	return entity.NewExecutionState("msg-1", t0)
}

func twoSubtaskPlan() *entity.PlanEvent {
	return &entity.PlanEvent{Plan: entity.Plan{
		Complexity: entity.ComplexityComplex,
		Confidence: 0.9,
		Subtasks: []entity.SubTask{
			{ID: "a", Description: "first", Priority: entity.PriorityHigh},
			{ID: "b", Description: "second", Priority: entity.PriorityLow},
		},
	}}
}

func completed() *entity.SubtaskStatusEvent {
	return &entity.SubtaskStatusEvent{Status: entity.SubtaskCompleted}
}

func step(out string) *entity.StepEvent {
	return &entity.StepEvent{Node: "n", Step: 1, State: map[string]any{"output": out}}
}

func TestFold_ScenarioA_PlanToolsComplete(t *testing.T) {
	events := []entity.Event{
		twoSubtaskPlan(),
		completed(),
		step("partial"),
		&entity.ToolCallEvent{Tool: "calculator", Parameters: map[string]any{"expression": "123+456"}, Result: 579.0},
		completed(),
		&entity.CompleteEvent{Output: "579"},
	}

	final, err := Fold(newState(), events, tick())
	require.NoError(t, err)

	assert.Equal(t, "579", final.DisplayedOutput)
	assert.Equal(t, entity.TierFinal, final.OutputTier)
	assert.Equal(t, 2, final.CurrentSubtaskIndex)
	require.Len(t, final.ToolCalls, 1)
	assert.Equal(t, "calculator", final.ToolCalls[0].Tool)
	assert.Equal(t, t0.Add(4*time.Second), final.ToolCalls[0].Timestamp)
	assert.True(t, final.IsComplete)
	assert.False(t, final.Failed)
	require.NotNil(t, final.EndTime)
	assert.Equal(t, t0.Add(6*time.Second), *final.EndTime)
	assert.Len(t, final.Events, 6)
	assert.Nil(t, final.ActivePlan(), "a finished execution shows no live plan")
	assert.NotNil(t, final.Plan, "the plan stays available for the details view")
}

func TestFold_ScenarioB_ErrorAfterStep(t *testing.T) {
	events := []entity.Event{step("42"), &entity.ErrorEvent{Message: "timeout"}}

	final, err := Fold(newState(), events, tick())
	require.Error(t, err)

	assert.Contains(t, final.DisplayedOutput, "timeout")
	assert.Equal(t, "Execution failed: timeout", final.DisplayedOutput)
	assert.True(t, final.IsComplete)
	assert.True(t, final.Failed)

	var execErr *entity.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "msg-1", execErr.MessageID)
	assert.Equal(t, "timeout", execErr.Message)
	assert.ErrorIs(t, err, errno.ErrExecutionFailed)
}

func TestFold_ScenarioD_UnknownEventOnlyGrowsLog(t *testing.T) {
	before, err := Fold(newState(), []entity.Event{twoSubtaskPlan(), step("x")}, tick())
	require.NoError(t, err)

	after, err := Reduce(before, &entity.UnknownEvent{Kind: "heartbeat"}, t0.Add(time.Hour))
	require.NoError(t, err)

	assert.Len(t, after.Events, len(before.Events)+1)
	expected := *before
	expected.Events = after.Events
	assert.Equal(t, &expected, after)
}

func TestReduce_TerminalStateIsFrozen(t *testing.T) {
	terminals := map[string]entity.Event{
		"complete": &entity.CompleteEvent{Output: "done"},
		"error":    &entity.ErrorEvent{Message: "boom"},
	}
	late := []entity.Event{
		step("late"),
		&entity.ToolCallEvent{Tool: "web_search"},
		completed(),
		twoSubtaskPlan(),
		&entity.CompleteEvent{Output: "again"},
		&entity.ErrorEvent{Message: "again"},
		&entity.UnknownEvent{Kind: "heartbeat"},
	}

	for name, terminal := range terminals {
		t.Run(name, func(t *testing.T) {
			final, _ := Fold(newState(), []entity.Event{step("p"), terminal}, tick())
			require.True(t, final.IsComplete)

			for _, ev := range late {
				next, err := Reduce(final, ev, t0.Add(time.Hour))
				require.NoError(t, err)
				assert.Same(t, final, next)
			}
		})
	}
}

func TestReduce_SubtaskIndexIsMonotonic(t *testing.T) {
	events := []entity.Event{
		twoSubtaskPlan(),
		&entity.SubtaskStatusEvent{Status: entity.SubtaskActive},
		completed(),
		&entity.SubtaskStatusEvent{Status: entity.SubtaskPending},
		&entity.SubtaskStatusEvent{Status: entity.SubtaskActive},
		completed(),
		completed(),
		step("x"),
	}

	state := newState()
	prev := state.CurrentSubtaskIndex
	for i, ev := range events {
		next, err := Reduce(state, ev, t0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, next.CurrentSubtaskIndex, prev, "event %d", i)
		prev = next.CurrentSubtaskIndex
		state = next
	}
	assert.Equal(t, 3, state.CurrentSubtaskIndex)

	done, total := Progress(state.Plan, state.CurrentSubtaskIndex)
	assert.Equal(t, 2, done, "progress is clamped to the plan size")
	assert.Equal(t, 2, total)
}

func TestReduce_NewPlanResetsIndex(t *testing.T) {
	state, err := Fold(newState(), []entity.Event{twoSubtaskPlan(), completed()}, tick())
	require.NoError(t, err)
	require.Equal(t, 1, state.CurrentSubtaskIndex)

	next, err := Reduce(state, twoSubtaskPlan(), t0)
	require.NoError(t, err)
	assert.Zero(t, next.CurrentSubtaskIndex)
}

func TestReduce_ToolLogMatchesEvents(t *testing.T) {
	names := []string{"web_search", "calculator", "web_search", "file_reader", "mystery"}
	events := make([]entity.Event, 0, len(names)+2)
	events = append(events, step("a"))
	for _, n := range names {
		events = append(events, &entity.ToolCallEvent{Tool: n})
	}
	events = append(events, &entity.UnknownEvent{Kind: "noise"})

	final, err := Fold(newState(), events, tick())
	require.NoError(t, err)
	require.Len(t, final.ToolCalls, len(names))
	for i, n := range names {
		assert.Equal(t, n, final.ToolCalls[i].Tool)
	}
}

func TestReduce_SnapshotsAreIndependent(t *testing.T) {
	base, err := Fold(newState(), []entity.Event{&entity.ToolCallEvent{Tool: "a"}}, tick())
	require.NoError(t, err)

	left, err := Reduce(base, &entity.ToolCallEvent{Tool: "left"}, t0)
	require.NoError(t, err)
	right, err := Reduce(base, &entity.ToolCallEvent{Tool: "right"}, t0)
	require.NoError(t, err)

	assert.Len(t, base.ToolCalls, 1)
	assert.Len(t, base.Events, 1)
	assert.Equal(t, "left", left.ToolCalls[1].Tool)
	assert.Equal(t, "right", right.ToolCalls[1].Tool)
}

func TestReduce_PlanIsCopied(t *testing.T) {
	ev := twoSubtaskPlan()
	state, err := Reduce(newState(), ev, t0)
	require.NoError(t, err)

	ev.Subtasks[0].Description = "mutated"
	assert.Equal(t, "first", state.Plan.Subtasks[0].Description)
}

func TestReduce_StartSetsExecutionID(t *testing.T) {
	state, err := Fold(newState(), []entity.Event{
		&entity.StartEvent{ExecutionID: "exec-9"},
		&entity.ErrorEvent{Message: "x"},
	}, tick())

	var execErr *entity.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "exec-9", state.ExecutionID)
	assert.Equal(t, "exec-9", execErr.ExecutionID)
	assert.Equal(t, "execution exec-9 failed: x", err.Error())
}

func TestReduce_StepWithoutOutputKeepsText(t *testing.T) {
	state, err := Fold(newState(), []entity.Event{
		step("first"),
		&entity.StepEvent{Node: "n", Step: 2, State: map[string]any{"tokens": 3}},
		&entity.StepEvent{Node: "n", Step: 3},
	}, tick())
	require.NoError(t, err)
	assert.Equal(t, "first", state.DisplayedOutput)
	assert.Equal(t, entity.TierProvisional, state.OutputTier)
	assert.False(t, state.IsComplete)
}

func TestFold_DoesNotModifyInitial(t *testing.T) {
	initial := newState()
	_, err := Fold(initial, []entity.Event{twoSubtaskPlan(), step("x"), &entity.CompleteEvent{Output: "y"}}, tick())
	require.NoError(t, err)
	assert.Equal(t, newState(), initial)
}

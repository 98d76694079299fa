package reducer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
)

func TestStatusAt(t *testing.T) {
	tests := []struct {
		i, current int
		want       entity.SubtaskStatus
	}{
		{0, 0, entity.SubtaskActive},
		{1, 0, entity.SubtaskPending},
		{0, 1, entity.SubtaskCompleted},
		{1, 1, entity.SubtaskActive},
		{2, 1, entity.SubtaskPending},
		{1, 2, entity.SubtaskCompleted},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusAt(tt.i, tt.current), "StatusAt(%d, %d)", tt.i, tt.current)
	}
}

func TestSubtasks_AllCompletedAtEnd(t *testing.T) {
	plan := &twoSubtaskPlan().Plan

	for _, current := range []int{2, 3, 10} {
		views := Subtasks(plan, current)
		if assert.Len(t, views, 2) {
			for _, v := range views {
				assert.Equal(t, entity.SubtaskCompleted, v.Status, "current=%d index=%d", current, v.Index)
			}
		}
		_, ok := ActiveSubtask(plan, current)
		assert.False(t, ok, "no active subtask once every subtask is done")
	}
}

func TestSubtasks_Progression(t *testing.T) {
	plan := &twoSubtaskPlan().Plan

	views := Subtasks(plan, 1)
	assert.Equal(t, []SubtaskView{
		{Index: 0, SubTask: plan.Subtasks[0], Status: entity.SubtaskCompleted},
		{Index: 1, SubTask: plan.Subtasks[1], Status: entity.SubtaskActive},
	}, views)

	active, ok := ActiveSubtask(plan, 1)
	assert.True(t, ok)
	assert.Equal(t, "b", active.ID)
}

func TestPlanTracker_NilPlan(t *testing.T) {
	assert.Nil(t, Subtasks(nil, 0))
	_, ok := ActiveSubtask(nil, 0)
	assert.False(t, ok)
	done, total := Progress(nil, 3)
	assert.Zero(t, done)
	assert.Zero(t, total)
}

func TestPlanTracker_EmptyPlan(t *testing.T) {
	plan := &entity.Plan{Complexity: entity.ComplexitySimple}
	assert.Empty(t, Subtasks(plan, 0))
	_, ok := ActiveSubtask(plan, 0)
	assert.False(t, ok)
	done, total := Progress(plan, 0)
	assert.Zero(t, done)
	assert.Zero(t, total)
}

func TestProgress_NegativeIndex(t *testing.T) {
	done, total := Progress(&twoSubtaskPlan().Plan, -1)
	assert.Zero(t, done)
	assert.Equal(t, 2, total)
}

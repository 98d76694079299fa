package reducer

import (
	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
)

// SubtaskView pairs a subtask with its derived status.
type SubtaskView struct {
	Index   int
	SubTask entity.SubTask
	Status  entity.SubtaskStatus
}

// StatusAt derives the status of the subtask at position i from the current
// subtask index. Once current reaches the number of subtasks every subtask is
// completed and none is active.
func StatusAt(i, current int) entity.SubtaskStatus {
	switch {
	case i < current:
		return entity.SubtaskCompleted
	case i == current:
		return entity.SubtaskActive
	default:
		return entity.SubtaskPending
	}
}

// Subtasks returns every subtask of plan with its derived status.
func Subtasks(plan *entity.Plan, current int) []SubtaskView {
	if plan == nil {
		return nil
	}
	views := make([]SubtaskView, len(plan.Subtasks))
	for i, st := range plan.Subtasks {
		views[i] = SubtaskView{Index: i, SubTask: st, Status: StatusAt(i, current)}
	}
	return views
}

// ActiveSubtask returns the subtask currently being worked on, if any.
func ActiveSubtask(plan *entity.Plan, current int) (entity.SubTask, bool) {
	if plan == nil || current < 0 || current >= len(plan.Subtasks) {
		return entity.SubTask{}, false
	}
	return plan.Subtasks[current], true
}

// Progress returns how many subtasks are completed out of the total.
func Progress(plan *entity.Plan, current int) (done, total int) {
	if plan == nil {
		return 0, 0
	}
	total = len(plan.Subtasks)
	return min(max(current, 0), total), total
}

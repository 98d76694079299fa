package view

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/reducer"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/tools"
)

const detailsColWidth = 60

// WriteDetails prints the execution details view: status, plan with derived
// subtask statuses and the tool call log.
func WriteDetails(w io.Writer, s *entity.ExecutionState, registry *tools.Registry, now time.Time) {
	if s == nil {
		return
	}
	if registry == nil {
		registry = tools.NewRegistry()
	}

	status := "running"
	switch {
	case s.Failed:
		status = color.RedString("failed")
	case s.IsComplete:
		status = color.GreenString("complete")
	}

	head := uitable.New()
	head.AddRow("Message:", s.MessageID)
	if s.ExecutionID != "" {
		head.AddRow("Execution:", s.ExecutionID)
	}
	head.AddRow("Status:", status)
	head.AddRow("Duration:", s.Duration(now).Round(time.Millisecond))
	head.AddRow("Events:", len(s.Events))
	fmt.Fprintln(w, head)

	if s.Plan != nil {
		done, total := reducer.Progress(s.Plan, s.CurrentSubtaskIndex)
		fmt.Fprintf(w, "\nPlan (%s, %.0f%% confident, %d/%d done):\n", s.Plan.Complexity, s.Plan.Confidence*100, done, total)
		t := uitable.New()
		t.MaxColWidth = detailsColWidth
		t.Wrap = true
		t.AddRow("#", "STATUS", "PRIORITY", "SUBTASK", "OBJECTIVE")
		for _, v := range reducer.Subtasks(s.Plan, s.CurrentSubtaskIndex) {
			t.AddRow(v.Index+1, statusMark(v.Status)+" "+string(v.Status), v.SubTask.Priority, v.SubTask.Description, v.SubTask.Objective)
		}
		fmt.Fprintln(w, t)
	}

	if len(s.ToolCalls) > 0 {
		fmt.Fprintf(w, "\nTool calls (%d):\n", len(s.ToolCalls))
		t := uitable.New()
		t.MaxColWidth = detailsColWidth
		t.Wrap = true
		t.AddRow("#", "AT", "TOOL", "PARAMETERS", "RESULT")
		for i, c := range s.ToolCalls {
			d := registry.Lookup(c.Tool)
			t.AddRow(i+1, "+"+c.Timestamp.Sub(s.StartTime).Round(time.Millisecond).String(),
				d.Icon+" "+d.DisplayName, inlineJSON(c.Parameters), inlineJSON(c.Result))
		}
		fmt.Fprintln(w, t)
	}
}

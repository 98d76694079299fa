package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/fatih/color"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/tools"
	"github.com/kiosk404/brightchat/pkg/utils/json"
)

const maxInlineJSON = 80

var (
	planColor     = color.New(color.FgHiYellow, color.Bold)
	doneColor     = color.New(color.FgGreen)
	toolColor     = color.New(color.FgCyan)
	progressColor = color.New(color.FgHiBlack)
)

// PlainPrinter writes execution progress as append-only lines, for output
// that is not a terminal or for users who prefer a log.
//
// It diffs consecutive snapshots so each plan, completed subtask, tool call
// and provisional output change is printed once.
type PlainPrinter struct {
	out      io.Writer
	registry *tools.Registry

	plan        *entity.Plan
	subtasks    int
	toolCalls   int
	output      string
	executionID string
}

// NewPlainPrinter creates a PlainPrinter writing to out.
func NewPlainPrinter(out io.Writer, registry *tools.Registry) *PlainPrinter {
	if registry == nil {
		registry = tools.NewRegistry()
	}
	return &PlainPrinter{out: out, registry: registry}
}

// OnSnapshot prints what changed since the previous snapshot.
func (p *PlainPrinter) OnSnapshot(s *entity.ExecutionState) {
	if s == nil {
		return
	}

	if s.ExecutionID != "" && s.ExecutionID != p.executionID {
		p.executionID = s.ExecutionID
		progressColor.Fprintf(p.out, "· execution %s\n", s.ExecutionID)
	}

	if s.Plan != nil && s.Plan != p.plan {
		p.plan = s.Plan
		p.subtasks = 0
		planColor.Fprintf(p.out, "Plan: %d subtasks (%s, %.0f%% confident, ~%.0fs)\n",
			len(s.Plan.Subtasks), s.Plan.Complexity, s.Plan.Confidence*100, s.Plan.EstimatedDuration)
		for i, st := range s.Plan.Subtasks {
			fmt.Fprintf(p.out, "  %d. %s", i+1, st.Description)
			if st.Priority != "" {
				progressColor.Fprintf(p.out, " [%s]", st.Priority)
			}
			fmt.Fprintln(p.out)
		}
	}
	if p.plan != nil {
		for ; p.subtasks < s.CurrentSubtaskIndex && p.subtasks < len(p.plan.Subtasks); p.subtasks++ {
			doneColor.Fprintf(p.out, "  ✓ %s\n", p.plan.Subtasks[p.subtasks].Description)
		}
	}

	for ; p.toolCalls < len(s.ToolCalls); p.toolCalls++ {
		c := s.ToolCalls[p.toolCalls]
		d := p.registry.Lookup(c.Tool)
		toolColor.Fprintf(p.out, "  %s %s", d.Icon, d.DisplayName)
		if len(c.Parameters) > 0 {
			fmt.Fprintf(p.out, " %s", inlineJSON(c.Parameters))
		}
		if c.Result != nil {
			progressColor.Fprintf(p.out, " → %s", inlineJSON(c.Result))
		}
		fmt.Fprintln(p.out)
	}

	if s.OutputTier == entity.TierProvisional && s.DisplayedOutput != p.output {
		p.output = s.DisplayedOutput
		progressColor.Fprintf(p.out, "  … %s\n", firstLine(s.DisplayedOutput))
	}
}

// Follow prints every snapshot of sr and returns the last one with the error
// that ended the stream, nil at io.EOF. The caller closes sr.
func (p *PlainPrinter) Follow(sr *schema.StreamReader[*entity.ExecutionState]) (*entity.ExecutionState, error) {
	return Drain(sr, p.OnSnapshot)
}

func inlineJSON(v any) string {
	data, err := json.MarshalString(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return truncate(data, maxInlineJSON)
}

func firstLine(s string) string {
	line, _, cut := strings.Cut(strings.TrimSpace(s), "\n")
	if cut {
		line += " …"
	}
	return truncate(line, maxInlineJSON)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

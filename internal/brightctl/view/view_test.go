package view

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cloudwego/eino/schema"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/reducer"
)

var t0 = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func init() {
	color.NoColor = true
}

func plan() *entity.PlanEvent {
	return &entity.PlanEvent{Plan: entity.Plan{
		Complexity: "complex",
		Confidence: 0.9,
		Subtasks: []entity.SubTask{
			{ID: "a", Description: "Parse", Priority: "high"},
			{ID: "b", Description: "Compute"},
		},
	}}
}

func fold(t *testing.T, events ...entity.Event) []*entity.ExecutionState {
	t.Helper()
	state := entity.NewExecutionState("m1", t0)
	var out []*entity.ExecutionState
	for i, ev := range events {
		next, err := reducer.Reduce(state, ev, t0.Add(time.Duration(i+1)*time.Second))
		require.NoError(t, err)
		state = next
		out = append(out, state)
	}
	return out
}

func TestPlainPrinter(t *testing.T) {
	states := fold(t,
		&entity.StartEvent{ExecutionID: "exec-1"},
		plan(),
		&entity.SubtaskStatusEvent{Status: entity.SubtaskCompleted},
		&entity.StepEvent{State: map[string]any{"output": "thinking\nmore"}},
		&entity.ToolCallEvent{Tool: "calculator", Parameters: map[string]any{"expression": "1+2"}, Result: 3},
		&entity.StepEvent{State: map[string]any{"output": "thinking\nmore"}},
		&entity.SubtaskStatusEvent{Status: entity.SubtaskCompleted},
		&entity.CompleteEvent{Output: "3"},
	)

	var buf bytes.Buffer
	p := NewPlainPrinter(&buf, nil)
	for _, s := range states {
		p.OnSnapshot(s)
		p.OnSnapshot(s)
	}
	p.OnSnapshot(nil)

	assert.Equal(t, strings.Join([]string{
		"· execution exec-1",
		"Plan: 2 subtasks (complex, 90% confident, ~0s)",
		"  1. Parse [high]",
		"  2. Compute",
		"  ✓ Parse",
		"  … thinking …",
		`  🧮 Calculator {"expression":"1+2"} → 3`,
		"  ✓ Compute",
		"",
	}, "\n"), buf.String())
}

func TestTruncateAndFirstLine(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "héll…", truncate("héllo wörld", 5))
	assert.Equal(t, "one …", firstLine("  one\ntwo"))
	assert.Equal(t, "solo", firstLine("solo"))
}

func TestLastLines(t *testing.T) {
	assert.Equal(t, "c\nd", lastLines("a\nb\nc\nd\n", 0, 2))
	assert.Equal(t, "a", lastLines("a", 80, 3))
	got := lastLines("one two three four", 9, 2)
	assert.Equal(t, "three\nfour", got)
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("**123 + 456 = 579**", 40, false)
	assert.Contains(t, out, "123 + 456 = 579")
	assert.NotContains(t, out, "\x1b[")
}

func TestWriteDetails(t *testing.T) {
	states := fold(t,
		&entity.StartEvent{ExecutionID: "exec-1"},
		plan(),
		&entity.SubtaskStatusEvent{Status: entity.SubtaskCompleted},
		&entity.ToolCallEvent{Tool: "fetch_url", Parameters: map[string]any{"url": "https://example.com"}},
		&entity.CompleteEvent{Output: "done"},
	)
	final := states[len(states)-1]

	var buf bytes.Buffer
	WriteDetails(&buf, final, nil, t0.Add(time.Hour))
	out := buf.String()

	assert.Contains(t, out, "exec-1")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "5s")
	assert.Contains(t, out, "1/2 done")
	assert.Contains(t, out, "Parse")
	assert.Contains(t, out, "Fetch Url")
	assert.Contains(t, out, "+4s")

	buf.Reset()
	WriteDetails(&buf, nil, nil, t0)
	assert.Empty(t, buf.String())
}

func TestLiveModel(t *testing.T) {
	m := NewLiveModel("calculator", nil, func() time.Time { return t0 })
	assert.Contains(t, m.View(), "waiting for the agent")

	states := fold(t,
		plan(),
		&entity.SubtaskStatusEvent{Status: entity.SubtaskCompleted},
		&entity.ToolCallEvent{Tool: "a"},
		&entity.ToolCallEvent{Tool: "b"},
		&entity.ToolCallEvent{Tool: "c"},
		&entity.ToolCallEvent{Tool: "d"},
		&entity.StepEvent{State: map[string]any{"output": "partial"}},
	)

	var model tea.Model = m
	model, _ = model.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	model, _ = model.Update(SnapshotMsg{State: states[len(states)-1]})
	view := model.View()
	assert.Contains(t, view, "plan 1/2")
	assert.Contains(t, view, "now: Compute")
	assert.Contains(t, view, "Compute")
	assert.Contains(t, view, "1 earlier tool calls")
	assert.NotContains(t, view, "  🔧 A\n")
	assert.Contains(t, view, "D")
	assert.Contains(t, view, "partial")

	model, cmd := model.Update(DoneMsg{Err: errors.New("x")})
	assert.NotNil(t, cmd)
	assert.Empty(t, model.View())
	assert.False(t, model.(LiveModel).Canceled())

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, model.(LiveModel).Canceled())
}

func TestPlainPrinter_Follow(t *testing.T) {
	states := fold(t,
		&entity.StartEvent{ExecutionID: "exec-1"},
		&entity.CompleteEvent{Output: "3"},
	)
	sr, sw := schema.Pipe[*entity.ExecutionState](len(states))
	for _, s := range states {
		sw.Send(s, nil)
	}
	sw.Close()
	defer sr.Close()

	var buf bytes.Buffer
	last, err := NewPlainPrinter(&buf, nil).Follow(sr)
	require.NoError(t, err)
	assert.Same(t, states[1], last)
	assert.Equal(t, "· execution exec-1\n", buf.String())
}

func TestDrain_StreamError(t *testing.T) {
	states := fold(t, &entity.StartEvent{ExecutionID: "exec-1"})
	broken := errors.New("stream read failed")

	sr, sw := schema.Pipe[*entity.ExecutionState](2)
	sw.Send(states[0], nil)
	sw.Send(nil, broken)
	sw.Close()
	defer sr.Close()

	var seen int
	last, err := Drain(sr, func(*entity.ExecutionState) { seen++ })
	assert.ErrorIs(t, err, broken)
	assert.Same(t, states[0], last)
	assert.Equal(t, 1, seen)
}

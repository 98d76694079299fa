package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/reducer"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/tools"
)

const (
	liveOutputLines = 6
	liveToolLines   = 3
)

// SnapshotMsg carries a new ExecutionState into the live view.
type SnapshotMsg struct {
	State *entity.ExecutionState
}

// DoneMsg ends the live view.
type DoneMsg struct {
	Err error
}

// LiveModel is the bubbletea model showing a running execution: spinner,
// plan progress, recent tool calls and the provisional output.
type LiveModel struct {
	label    string
	spinner  spinner.Model
	registry *tools.Registry
	now      func() time.Time
	started  time.Time

	state    *entity.ExecutionState
	width    int
	done     bool
	canceled bool
	err      error
}

// NewLiveModel creates a LiveModel. label names what is running.
func NewLiveModel(label string, registry *tools.Registry, now func() time.Time) LiveModel {
	if now == nil {
		now = time.Now
	}
	if registry == nil {
		registry = tools.NewRegistry()
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = activeStyle
	return LiveModel{
		label:    label,
		spinner:  s,
		registry: registry,
		now:      now,
		started:  now(),
		width:    80,
	}
}

// Canceled reports whether the user interrupted the execution.
func (m LiveModel) Canceled() bool { return m.canceled }

// State returns the last snapshot seen.
func (m LiveModel) State() *entity.ExecutionState { return m.state }

func (m LiveModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case SnapshotMsg:
		m.state = msg.State
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m LiveModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	elapsed := m.now().Sub(m.started).Round(100 * time.Millisecond)
	fmt.Fprintf(&b, "%s %s %s\n", m.spinner.View(), titleStyle.Render(m.label), dimStyle.Render(elapsed.String()))

	s := m.state
	if s == nil {
		b.WriteString(dimStyle.Render("  waiting for the agent…"))
		b.WriteString("\n")
		return b.String()
	}

	if plan := s.ActivePlan(); plan != nil {
		done, total := reducer.Progress(plan, s.CurrentSubtaskIndex)
		header := fmt.Sprintf("plan %d/%d · %s · %.0f%% confident", done, total, plan.Complexity, plan.Confidence*100)
		if st, ok := reducer.ActiveSubtask(plan, s.CurrentSubtaskIndex); ok {
			header += " · now: " + st.Description
		}
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(header))
		for _, v := range reducer.Subtasks(plan, s.CurrentSubtaskIndex) {
			style := statusStyle(v.Status)
			fmt.Fprintf(&b, "  %s %s\n", style.Render(statusMark(v.Status)), style.Render(v.SubTask.Description))
		}
	}

	calls := s.ToolCalls
	if n := len(calls); n > 0 {
		if n > liveToolLines {
			fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("… %d earlier tool calls", n-liveToolLines)))
			calls = calls[n-liveToolLines:]
		}
		for _, c := range calls {
			d := m.registry.Lookup(c.Tool)
			fmt.Fprintf(&b, "  %s %s\n", d.Icon, d.DisplayName)
		}
	}

	if s.DisplayedOutput != "" {
		b.WriteString("\n")
		b.WriteString(outputStyle.Render(lastLines(s.DisplayedOutput, m.width-4, liveOutputLines)))
		b.WriteString("\n")
	}
	return b.String()
}

// StartFunc starts an execution and returns its snapshots.
type StartFunc func(ctx context.Context) (*schema.StreamReader[*entity.ExecutionState], error)

// Drain receives snapshots from sr until the stream ends, passing each one to
// fn when fn is not nil. It returns the last snapshot received and the error
// that ended the stream, nil at io.EOF. The caller closes sr.
func Drain(sr *schema.StreamReader[*entity.ExecutionState], fn func(*entity.ExecutionState)) (*entity.ExecutionState, error) {
	var last *entity.ExecutionState
	for {
		s, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			return last, nil
		}
		if err != nil {
			return last, err
		}
		last = s
		if fn != nil {
			fn(s)
		}
	}
}

// RunLive shows model while the execution started by start runs.
// Interrupting the view cancels the context passed to start. It returns
// start's error, the error that ended the snapshot stream, or
// context.Canceled when the user interrupted the execution.
func RunLive(ctx context.Context, in io.Reader, out io.Writer, model LiveModel, start StartFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sr, err := start(ctx)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithInput(in), tea.WithOutput(out))

	result := make(chan error, 1)
	go func() {
		_, err := Drain(sr, func(s *entity.ExecutionState) {
			p.Send(SnapshotMsg{State: s})
		})
		result <- err
		p.Send(DoneMsg{Err: err})
	}()

	final, perr := p.Run()
	if lm, ok := final.(LiveModel); perr != nil || (ok && lm.canceled) {
		cancel()
		err := <-result
		if perr != nil {
			return fmt.Errorf("live view: %w", perr)
		}
		if err != nil {
			return err
		}
		return context.Canceled
	}
	return <-result
}

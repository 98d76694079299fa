package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kiosk404/brightchat/internal/brightctl/cmd/util"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/reducer"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/tools"
	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/domain/service"
	"github.com/kiosk404/brightchat/internal/brightctl/view"
	"github.com/kiosk404/brightchat/pkg/cli/genericclioptions"
	"github.com/kiosk404/brightchat/pkg/utils/json"
)

const (
	OutputAuto  = "auto"
	OutputLive  = "live"
	OutputPlain = "plain"
	OutputJSON  = "json"
)

var chatExample = heredoc.Doc(`
	# Interactive chat with an agent
	brightctl chat --agent research

	# Single question, then exit
	brightctl chat --agent calculator "What is 123 + 456?"

	# Continue a stored session and show execution details after the answer
	brightctl chat --agent research --session 6f1c... --details "And in 2023?"

	# Search two knowledge bases, print the final state as JSON
	brightctl chat --agent research --kb docs --kb wiki -o json "What is SSE?"`)

// ChatOptions holds the flags of the chat command.
type ChatOptions struct {
	Agent            string
	Session          string
	KnowledgeBaseIDs []string
	Output           string
	Details          bool
	ToolsFile        string
	MCPConfig        string

	svc      service.ChatService
	registry *tools.Registry
	last     *service.TurnResult
	now      func() time.Time

	factory util.Factory
	genericclioptions.IOStreams
}

// NewChatOptions returns ChatOptions with default values.
func NewChatOptions(f util.Factory, ioStreams genericclioptions.IOStreams) *ChatOptions {
	return &ChatOptions{
		Output:    OutputAuto,
		now:       time.Now,
		factory:   f,
		IOStreams: ioStreams,
	}
}

// NewCmdChat creates the chat command.
func NewCmdChat(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewChatOptions(f, ioStreams)

	cmd := &cobra.Command{
		Use:                   "chat [question]",
		DisableFlagsInUseLine: true,
		Short:                 "Chat with an agent",
		Long: heredoc.Doc(`
			Send questions to an agent and follow its execution.

			Without a question argument chat reads questions line by line.
			Lines starting with '/' are commands: /details shows the last
			execution, /session prints the session id, /quit exits.`),
		Example: chatExample,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Complete(cmd, args))
			util.CheckErr(o.Validate())
			util.CheckErr(o.Run(cmd.Context(), args))
		},
	}

	cmd.Flags().StringVarP(&o.Agent, "agent", "a", o.Agent, "Agent to talk to. May be omitted when the server has exactly one agent.")
	cmd.Flags().StringVarP(&o.Session, "session", "s", o.Session, "Session to continue. A new session is started when empty.")
	cmd.Flags().StringSliceVar(&o.KnowledgeBaseIDs, "kb", o.KnowledgeBaseIDs, "Knowledge base the agent may search, repeatable.")
	cmd.Flags().StringVarP(&o.Output, "output", "o", o.Output, "Progress display: auto, live, plain or json.")
	cmd.Flags().BoolVar(&o.Details, "details", o.Details, "Print the execution details after every answer.")
	cmd.Flags().StringVar(&o.ToolsFile, "tools-file", o.ToolsFile, "JSON tools/list result with extra tool display names.")
	cmd.Flags().StringVar(&o.MCPConfig, "mcp-config", o.MCPConfig, "mcp.json whose servers provide extra tool display names.")

	return cmd
}

// Complete resolves the output mode and, when needed, the agent.
func (o *ChatOptions) Complete(cmd *cobra.Command, args []string) error {
	if o.Output == OutputAuto || o.Output == "" {
		o.Output = OutputPlain
		if util.IsTerminal(o.Out) {
			o.Output = OutputLive
		}
	}
	if o.Agent != "" {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	agents, err := o.factory.Client().ListAgents(ctx)
	if err != nil {
		return err
	}
	switch len(agents) {
	case 0:
		return fmt.Errorf("the server has no agents")
	case 1:
		o.Agent = agents[0].ID
		return nil
	default:
		ids := make([]string, len(agents))
		for i, a := range agents {
			ids[i] = a.ID
		}
		return fmt.Errorf("--agent is required, available agents: %s", strings.Join(ids, ", "))
	}
}

func (o *ChatOptions) Validate() error {
	switch o.Output {
	case OutputLive, OutputPlain, OutputJSON:
		return nil
	default:
		return fmt.Errorf("--output must be one of auto, live, plain or json, got %q", o.Output)
	}
}

// Run answers the question in args, or every line of the input when args is empty.
func (o *ChatOptions) Run(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	module, err := o.factory.ChatModule(ctx)
	if err != nil {
		return err
	}
	defer module.Close()
	o.svc = module.Service

	o.registry, err = o.factory.ToolRegistry(ctx, o.ToolsFile, o.MCPConfig)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		return o.turn(ctx, strings.Join(args, " "))
	}
	return o.interactive(ctx)
}

func (o *ChatOptions) interactive(ctx context.Context) error {
	prompt := color.New(color.FgHiYellow, color.Bold).Sprint("> ")
	scanner := bufio.NewScanner(o.In)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	fmt.Fprintf(o.ErrOut, "Chatting with %s. /quit to exit.\n", o.Agent)
	for {
		fmt.Fprint(o.ErrOut, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(o.ErrOut)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/session":
			fmt.Fprintln(o.Out, o.Session)
			continue
		case line == "/details":
			o.printDetails()
			continue
		case strings.HasPrefix(line, "/"):
			fmt.Fprintf(o.ErrOut, "unknown command %q\n", line)
			continue
		}

		// A failed turn is already on screen; the conversation goes on.
		_ = o.turn(ctx, line)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (o *ChatOptions) turn(ctx context.Context, query string) error {
	req := &service.TurnRequest{
		SessionID:        o.Session,
		AgentID:          o.Agent,
		Query:            query,
		KnowledgeBaseIDs: o.KnowledgeBaseIDs,
	}

	var (
		res *service.TurnResult
		err error
	)
	switch o.Output {
	case OutputLive:
		res, err = o.liveTurn(ctx, req)
	case OutputPlain:
		var turn *service.Turn
		if turn, err = o.svc.Start(ctx, req); err == nil {
			_, _ = view.NewPlainPrinter(o.ErrOut, o.registry).Follow(turn.Snapshots)
			res, err = turn.Wait()
		}
	default:
		res, err = o.svc.Send(ctx, req, nil)
	}

	if res != nil {
		o.last = res
		if res.UserMessage != nil {
			o.Session = res.UserMessage.SessionID
		}
	}
	return o.report(res, err)
}

func (o *ChatOptions) liveTurn(ctx context.Context, req *service.TurnRequest) (*service.TurnResult, error) {
	var turn *service.Turn
	model := view.NewLiveModel(o.Agent, o.registry, o.now)
	liveErr := view.RunLive(ctx, o.In, o.ErrOut, model, func(ctx context.Context) (*schema.StreamReader[*entity.ExecutionState], error) {
		t, err := o.svc.Start(ctx, req)
		if err != nil {
			return nil, err
		}
		turn = t
		return t.Snapshots, nil
	})
	if turn == nil {
		return nil, liveErr
	}

	res, err := turn.Wait()
	if err == nil && liveErr != nil && !errors.Is(liveErr, context.Canceled) {
		err = liveErr
	}
	return res, err
}

// report prints the outcome of a turn. An error replaces any partial output
// of the broken stream.
func (o *ChatOptions) report(res *service.TurnResult, err error) error {
	if o.Output == OutputJSON {
		return o.writeJSON(res, err)
	}

	if res != nil && res.State != nil {
		if err != nil && !res.State.Failed {
			fmt.Fprintln(o.Out, color.RedString(reducer.FormatError(err.Error())))
		} else {
			o.writeAnswer(res.State)
		}
		if o.Details {
			o.printDetails()
		}
	}

	if err != nil {
		fmt.Fprintf(o.ErrOut, "%s %v\n", color.RedString("error:"), err)
		return util.ErrExit
	}
	return nil
}

func (o *ChatOptions) writeAnswer(s *entity.ExecutionState) {
	if s.DisplayedOutput == "" {
		fmt.Fprintln(o.ErrOut, color.HiBlackString("(no answer)"))
		return
	}
	if s.Failed {
		fmt.Fprintln(o.Out, color.RedString(s.DisplayedOutput))
		return
	}
	tty := util.IsTerminal(o.Out)
	fmt.Fprintln(o.Out, view.RenderMarkdown(s.DisplayedOutput, util.TerminalWidth(o.Out, 80)-4, tty))
	if !s.IsComplete {
		fmt.Fprintln(o.ErrOut, color.YellowString("warning: the stream ended before the agent finished, the answer may be partial"))
	}
}

func (o *ChatOptions) printDetails() {
	if o.last == nil || o.last.State == nil {
		fmt.Fprintln(o.ErrOut, "no execution yet")
		return
	}
	state, err := o.svc.Execution(o.last.State.MessageID)
	if err != nil {
		state = o.last.State
	}
	view.WriteDetails(o.Out, state, o.registry, o.now())
}

type turnJSON struct {
	SessionID string                 `json:"session_id,omitempty"`
	State     *entity.ExecutionState `json:"state,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

func (o *ChatOptions) writeJSON(res *service.TurnResult, err error) error {
	out := turnJSON{SessionID: o.Session}
	if res != nil {
		out.State = res.State
	}
	if err != nil {
		out.Error = err.Error()
	}
	data, merr := json.MarshalIndent(out, "", "  ")
	if merr != nil {
		return merr
	}
	fmt.Fprintln(o.Out, string(data))
	if err != nil {
		return util.ErrExit
	}
	return nil
}

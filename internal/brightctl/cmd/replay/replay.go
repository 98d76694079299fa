package replay

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kiosk404/brightchat/internal/brightctl/cmd/util"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/view"
	"github.com/kiosk404/brightchat/pkg/cli/genericclioptions"
	"github.com/kiosk404/brightchat/pkg/utils/json"
)

// ReplayOptions holds the flags of the replay command.
type ReplayOptions struct {
	File      string
	JSON      bool
	Details   bool
	ToolsFile string

	now func() time.Time

	factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdReplay creates the replay command.
func NewCmdReplay(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &ReplayOptions{now: time.Now, factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Fold a captured execution stream without a server",
		Long: heredoc.Doc(`
			Read a captured text/event-stream body from FILE, or stdin when FILE
			is '-', and fold it exactly like a live chat turn would.

			A capture can be taken with:
			  curl -N -X POST -d '{"query":"hi","stream":true}' \
			    http://127.0.0.1:8000/api/v1/agents/research/chat > research.sse`),
		Example: heredoc.Doc(`
			brightctl replay research.sse --details
			brightctl replay - --json < research.sse
			brightctl replay research.sse --client.chunk-size 3`),
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			o.File = args[0]
			util.CheckErr(o.Run(cmd.Context()))
		},
	}
	cmd.Flags().BoolVar(&o.JSON, "json", o.JSON, "Print the final execution state as JSON.")
	cmd.Flags().BoolVar(&o.Details, "details", o.Details, "Print the execution details.")
	cmd.Flags().StringVar(&o.ToolsFile, "tools-file", o.ToolsFile, "JSON tools/list result with extra tool display names.")
	return cmd
}

func (o *ReplayOptions) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var body io.Reader = o.In
	if o.File != "-" {
		f, err := os.Open(o.File)
		if err != nil {
			return err
		}
		defer f.Close()
		body = f
	}

	registry, err := o.factory.ToolRegistry(ctx, o.ToolsFile, "")
	if err != nil {
		return err
	}

	initial := entity.NewExecutionState(uuid.NewString(), o.now())
	// The wrapper keeps Stream from closing stdin.
	sr := o.factory.Runner().Stream(ctx, struct{ io.Reader }{body}, initial)
	defer sr.Close()

	var (
		state  *entity.ExecutionState
		runErr error
	)
	if o.JSON {
		state, runErr = view.Drain(sr, nil)
	} else {
		state, runErr = view.NewPlainPrinter(o.ErrOut, registry).Follow(sr)
	}
	if state == nil {
		state = initial
	}

	if o.JSON {
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(o.Out, string(data))
		return runErr
	}

	if state != nil {
		if state.DisplayedOutput != "" {
			fmt.Fprintln(o.Out, view.RenderMarkdown(state.DisplayedOutput, util.TerminalWidth(o.Out, 80)-4, util.IsTerminal(o.Out)))
		}
		if !state.IsComplete {
			fmt.Fprintln(o.ErrOut, color.YellowString("warning: the capture has no terminal event"))
		}
		if o.Details {
			view.WriteDetails(o.Out, state, registry, o.now())
		}
	}
	return runErr
}

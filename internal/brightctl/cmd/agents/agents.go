package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kiosk404/brightchat/internal/brightctl/cmd/util"
	"github.com/kiosk404/brightchat/pkg/cli/genericclioptions"
	"github.com/kiosk404/brightchat/pkg/utils/json"
)

// AgentsOptions holds the flags of the agents command.
type AgentsOptions struct {
	JSON bool

	factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdAgents creates the agents command.
func NewCmdAgents(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &AgentsOptions{factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List the agents offered by the server",
		Example: heredoc.Doc(`
			brightctl agents
			brightctl agents --json`),
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Run(cmd.Context()))
		},
	}
	cmd.Flags().BoolVar(&o.JSON, "json", o.JSON, "Print the agents as JSON.")
	return cmd
}

func (o *AgentsOptions) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	agents, err := o.factory.Client().ListAgents(ctx)
	if err != nil {
		return err
	}

	if o.JSON {
		data, err := json.MarshalIndent(agents, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(o.Out, string(data))
		return nil
	}

	if len(agents) == 0 {
		fmt.Fprintln(o.ErrOut, "No agents found.")
		return nil
	}
	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow("ID", "NAME", "TOOLS", "DESCRIPTION")
	for _, a := range agents {
		table.AddRow(a.ID, a.Name, strings.Join(a.Tools, ","), a.Description)
	}
	fmt.Fprintln(o.Out, table)
	return nil
}

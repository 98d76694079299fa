package tools

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kiosk404/brightchat/internal/brightctl/cmd/util"
	"github.com/kiosk404/brightchat/pkg/cli/genericclioptions"
)

// ToolsOptions holds the flags of the tools command.
type ToolsOptions struct {
	ToolsFile string
	MCPConfig string

	factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdTools creates the tools command.
func NewCmdTools(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &ToolsOptions{factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tool names brightctl can display",
		Long: heredoc.Doc(`
			List the tool descriptors used to label tool calls: the built-in
			tools plus those from --tools-file and the servers of --mcp-config.
			Unknown tools are still shown, with a name derived from the tool id.`),
		Example: heredoc.Doc(`
			brightctl tools
			brightctl tools --mcp-config ~/.brightchat/mcp.json`),
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Run(cmd.Context()))
		},
	}
	cmd.Flags().StringVar(&o.ToolsFile, "tools-file", o.ToolsFile, "JSON tools/list result with extra tool display names.")
	cmd.Flags().StringVar(&o.MCPConfig, "mcp-config", o.MCPConfig, "mcp.json whose servers provide extra tool display names.")
	return cmd
}

func (o *ToolsOptions) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	registry, err := o.factory.ToolRegistry(ctx, o.ToolsFile, o.MCPConfig)
	if err != nil {
		return err
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow("", "NAME", "DISPLAY NAME", "CATEGORY", "DESCRIPTION")
	for _, d := range registry.List() {
		table.AddRow(d.Icon, d.Name, d.DisplayName, d.Category, d.Description)
	}
	fmt.Fprintln(o.Out, table)
	return nil
}

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiosk404/brightchat/internal/brightctl/cmd/agents"
	"github.com/kiosk404/brightchat/internal/brightctl/cmd/chat"
	"github.com/kiosk404/brightchat/internal/brightctl/cmd/history"
	"github.com/kiosk404/brightchat/internal/brightctl/cmd/replay"
	"github.com/kiosk404/brightchat/internal/brightctl/cmd/tools"
	cmdutil "github.com/kiosk404/brightchat/internal/brightctl/cmd/util"
	"github.com/kiosk404/brightchat/internal/brightctl/cmd/version"
	"github.com/kiosk404/brightchat/pkg/app"
	"github.com/kiosk404/brightchat/pkg/cli/genericclioptions"
	"github.com/kiosk404/brightchat/pkg/logger"
	"github.com/kiosk404/brightchat/pkg/utils/cliflag"
)

const (
	groupBasic = "basic"
	groupDebug = "debug"
)

// NewDefaultBrightCtlCommand creates the `brightctl` command with default arguments.
func NewDefaultBrightCtlCommand() *cobra.Command {
	return NewBrightCtlCommand(os.Stdin, os.Stdout, os.Stderr)
}

// NewBrightCtlCommand creates the `brightctl` command and its subcommands.
func NewBrightCtlCommand(in io.Reader, out, err io.Writer) *cobra.Command {
	opts := cmdutil.NewOptions()

	cmds := &cobra.Command{
		Use:   "brightctl",
		Short: "brightctl talks to Bright-Chat agents",
		Long: fmt.Sprintf("%s\n%s", Banner(), heredoc.Doc(`
			brightctl is the terminal client of Bright-Chat.

			It sends questions to an agent, follows the agent's execution stream
			live (plan, tool calls, provisional answer) and stores the finished
			conversation locally.`)),
		Run:           runHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initOptions(opts)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logger.FlushLog()
		},
	}
	cmds.SetIn(in)
	cmds.SetOut(out)
	cmds.SetErr(err)

	flags := cmds.PersistentFlags()
	flags.SetNormalizeFunc(cliflag.WarnWordSepNormalizeFunc) // Warn for "_" flags

	// Normalize all flags that are coming from other packages or pre-configurations
	flags.SetNormalizeFunc(cliflag.WordSepNormalizeFunc)

	addGlobalFlags(flags)
	opts.AddFlags(flags)
	_ = viper.BindPFlags(flags)

	ioStreams := genericclioptions.IOStreams{In: in, Out: out, ErrOut: err}
	f := cmdutil.NewDefaultFactory(opts)

	cmds.AddGroup(
		&cobra.Group{ID: groupBasic, Title: "Basic Commands:"},
		&cobra.Group{ID: groupDebug, Title: "Troubleshooting Commands:"},
	)
	for _, c := range []*cobra.Command{
		chat.NewCmdChat(f, ioStreams),
		agents.NewCmdAgents(f, ioStreams),
		history.NewCmdHistory(f, ioStreams),
	} {
		c.GroupID = groupBasic
		cmds.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		replay.NewCmdReplay(f, ioStreams),
		tools.NewCmdTools(f, ioStreams),
	} {
		c.GroupID = groupDebug
		cmds.AddCommand(c)
	}
	cmds.AddCommand(version.NewCmdVersion(ioStreams))

	return cmds
}

// initOptions layers the config file and environment over the flag
// defaults, then completes and validates the result.
func initOptions(opts *cmdutil.Options) error {
	if err := app.LoadConfig(globalConfigFile, "brightctl"); err != nil {
		return err
	}
	if err := viper.Unmarshal(opts); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	if err := opts.Complete(); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := opts.LogOptions.Apply(); err != nil {
		return err
	}
	logger.Debug("[brightctl] options: %s", opts.String())
	return nil
}

func runHelp(cmd *cobra.Command, args []string) {
	_ = cmd.Help()
}

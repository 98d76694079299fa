package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiosk404/brightchat/internal/brightctl/cmd/util"
	"github.com/kiosk404/brightchat/pkg/cli/genericclioptions"
	"github.com/kiosk404/brightchat/pkg/utils/json"
	"github.com/kiosk404/brightchat/pkg/version"
)

// NewCmdVersion creates the version command.
func NewCmdVersion(ioStreams genericclioptions.IOStreams) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			if !asJSON {
				fmt.Fprintln(ioStreams.Out, info.String())
				return
			}
			data, err := json.MarshalIndent(info, "", "  ")
			util.CheckErr(err)
			fmt.Fprintln(ioStreams.Out, string(data))
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", asJSON, "Print version information as JSON.")
	return cmd
}

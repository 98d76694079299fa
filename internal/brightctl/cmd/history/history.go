package history

import (
	"context"
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kiosk404/brightchat/internal/brightctl/cmd/util"
	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/domain/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/pkg/errno"
	"github.com/kiosk404/brightchat/internal/brightctl/view"
	"github.com/kiosk404/brightchat/pkg/cli/genericclioptions"
)

// HistoryOptions holds the flags of the history command.
type HistoryOptions struct {
	Session string
	Delete  bool

	factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdHistory creates the history command.
func NewCmdHistory(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &HistoryOptions{factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:   "history [--session ID]",
		Short: "Show stored conversations",
		Long: heredoc.Doc(`
			Without --session, list the stored sessions. With --session, print
			the messages of that session in order.`),
		Example: heredoc.Doc(`
			brightctl history
			brightctl history --session 6f1c2a
			brightctl history --session 6f1c2a --delete`),
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Validate())
			util.CheckErr(o.Run(cmd.Context()))
		},
	}
	cmd.Flags().StringVarP(&o.Session, "session", "s", o.Session, "Session to print.")
	cmd.Flags().BoolVar(&o.Delete, "delete", o.Delete, "Delete the session instead of printing it.")
	return cmd
}

func (o *HistoryOptions) Validate() error {
	if o.Delete && o.Session == "" {
		return fmt.Errorf("--delete requires --session")
	}
	return nil
}

func (o *HistoryOptions) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	messages, closer, err := o.factory.MessageRepository()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	if o.Session == "" {
		sessions, err := messages.ListSessions(ctx)
		if err != nil {
			return err
		}
		return o.writeSessions(sessions)
	}

	msgs, err := messages.ListBySession(ctx, o.Session)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return fmt.Errorf("session %q: %w", o.Session, errno.ErrSessionNotFound)
	}
	if o.Delete {
		if err := messages.DeleteSession(ctx, o.Session); err != nil {
			return err
		}
		fmt.Fprintf(o.Out, "Deleted session %s (%d messages).\n", o.Session, len(msgs))
		return nil
	}
	o.writeMessages(msgs)
	return nil
}

func (o *HistoryOptions) writeSessions(sessions []*entity.Session) error {
	if len(sessions) == 0 {
		fmt.Fprintln(o.ErrOut, "No sessions stored.")
		return nil
	}
	table := uitable.New()
	table.AddRow("SESSION", "MESSAGES", "LAST ACTIVE")
	for _, s := range sessions {
		table.AddRow(s.ID, s.MessageCount, s.LastActiveAt.Local().Format(time.DateTime))
	}
	fmt.Fprintln(o.Out, table)
	return nil
}

func (o *HistoryOptions) writeMessages(msgs []*entity.Message) {
	tty := util.IsTerminal(o.Out)
	width := util.TerminalWidth(o.Out, 80) - 4
	for _, m := range msgs {
		ts := m.CreatedAt.Local().Format(time.DateTime)
		switch m.Role {
		case entity.RoleUser:
			fmt.Fprintf(o.Out, "%s %s\n%s\n\n", color.HiBlueString("you"), color.HiBlackString(ts), m.Content)
		default:
			meta := fmt.Sprintf("%s · %s", ts, m.Duration.Round(time.Millisecond))
			if m.ToolCallCount > 0 {
				meta += fmt.Sprintf(" · %d tool calls", m.ToolCallCount)
			}
			fmt.Fprintf(o.Out, "%s %s\n%s\n\n", color.HiMagentaString(m.AgentID), color.HiBlackString(meta),
				view.RenderMarkdown(m.Content, width, tty))
		}
	}
}

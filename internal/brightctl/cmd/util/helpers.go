package util

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/moby/term"

	"github.com/kiosk404/brightchat/pkg/errorx"
)

// DefaultErrorExitCode is the exit code for a failed command.
const DefaultErrorExitCode = 1

var fatalErrHandler = fatal

// BehaviorOnFatal replaces the exit behavior of CheckErr, for tests.
func BehaviorOnFatal(f func(string, int)) {
	fatalErrHandler = f
}

// DefaultBehaviorOnFatal restores the exit behavior of CheckErr.
func DefaultBehaviorOnFatal() {
	fatalErrHandler = fatal
}

func fatal(msg string, code int) {
	if len(msg) > 0 {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(code)
}

// ErrExit ends a command with a failure exit code and no further message.
var ErrExit = errors.New("exit")

// CheckErr prints a user friendly error and exits with a non-zero code.
// Coded errors print their registered message followed by the detail.
func CheckErr(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrExit) {
		fatalErrHandler("", DefaultErrorExitCode)
		return
	}
	msg := err.Error()
	if coder := errorx.ParseCoder(err); coder != nil && coder.Code() != errorx.UnknownCode {
		msg = fmt.Sprintf("%s (%d)\n  %s", coder.String(), coder.Code(), err.Error())
	}
	fatalErrHandler(fmt.Sprintf("%s %s", color.RedString("error:"), msg), DefaultErrorExitCode)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	_, ok := term.GetFdInfo(w)
	return ok
}

// TerminalWidth returns the width of w, or fallback when w is not a terminal.
func TerminalWidth(w io.Writer, fallback int) int {
	fd, ok := term.GetFdInfo(w)
	if !ok {
		return fallback
	}
	ws, err := term.GetWinsize(fd)
	if err != nil || ws.Width == 0 {
		return fallback
	}
	return int(ws.Width)
}

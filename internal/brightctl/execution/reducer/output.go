package reducer

import (
	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
)

const errorOutputPrefix = "Execution failed: "

// ResolveOutput decides which text is displayed after a candidate arrives.
//
// Precedence, low to high: nothing, the latest provisional step output, the
// final output. A candidate replaces the current text when its tier is at
// least the current tier, except that a final text is never replaced.
func ResolveOutput(curTier entity.OutputTier, curText string, tier entity.OutputTier, text string) (entity.OutputTier, string) {
	if curTier == entity.TierFinal {
		return curTier, curText
	}
	if tier < curTier {
		return curTier, curText
	}
	return tier, text
}

// FormatError renders a server error message as displayed output.
func FormatError(msg string) string {
	if msg == "" {
		msg = "unknown error"
	}
	return errorOutputPrefix + msg
}

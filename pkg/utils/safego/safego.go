// Package safego starts goroutines that cannot take the process down with a panic.
package safego

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/kiosk404/brightchat/pkg/logger"
)

// Go runs fn on a new goroutine. A panic inside fn is recovered and logged.
func Go(ctx context.Context, fn func()) {
	go func() {
		defer Recover(ctx)
		fn()
	}()
}

// Recover logs a recovered panic. It must be called directly by a deferred statement.
func Recover(_ context.Context) {
	if r := recover(); r != nil {
		logger.Error("[safego] goroutine panic: %v\n%s", fmt.Sprint(r), debug.Stack())
	}
}

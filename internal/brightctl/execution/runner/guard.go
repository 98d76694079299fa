package runner

import (
	"context"
	"sync"
	"time"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/pkg"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/pkg/errno"
	"github.com/kiosk404/brightchat/pkg/logger"
)

// streamGuard owns the lifetime of one read loop.
//
// The loop ends when the parent context is done or when no bytes arrive
// within the idle timeout. Touch must be called whenever a chunk is read.
type streamGuard struct {
	ctx       context.Context
	cancel    context.CancelCauseFunc
	idle      time.Duration
	timer     *time.Timer
	messageID string

	mu   sync.Mutex
	down bool
}

func newStreamGuard(parent context.Context, messageID string, idle time.Duration) *streamGuard {
	ctx, cancel := context.WithCancelCause(parent)
	g := &streamGuard{
		ctx:       ctx,
		cancel:    cancel,
		idle:      idle,
		messageID: messageID,
	}
	if idle > 0 {
		g.timer = time.AfterFunc(idle, func() {
			g.abort(errno.ErrStreamIdle)
		})
	}
	return g
}

// Context is canceled when the loop must stop.
func (g *streamGuard) Context() context.Context {
	return g.ctx
}

// Touch pushes the idle deadline forward.
func (g *streamGuard) Touch() {
	if g.timer != nil {
		g.timer.Reset(g.idle)
	}
}

// Err returns nil while the loop may continue, otherwise the reason it must stop.
func (g *streamGuard) Err() error {
	if g.ctx.Err() == nil {
		return nil
	}
	return context.Cause(g.ctx)
}

func (g *streamGuard) abort(cause error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.down {
		return
	}
	g.down = true
	g.cancel(cause)
	logger.WarnX(pkg.ModuleName, "[StreamGuard] abort stream for message %s: %v", g.messageID, cause)
}

// Stop releases the timer and the derived context.
func (g *streamGuard) Stop() {
	if g.timer != nil {
		g.timer.Stop()
	}
	g.mu.Lock()
	g.down = true
	g.mu.Unlock()
	g.cancel(nil)
}

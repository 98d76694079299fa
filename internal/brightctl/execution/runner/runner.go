// Package runner drives one agent execution stream from raw bytes to state snapshots.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/framer"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/parser"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/pkg"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/pkg/errno"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/reducer"
	"github.com/kiosk404/brightchat/pkg/logger"
	"github.com/kiosk404/brightchat/pkg/utils/safego"
)

const (
	defaultChunkSize = 4096
	snapshotBuffer   = 16
)

// SnapshotFunc receives every new ExecutionState, in order. Snapshots are
// immutable and may be retained.
type SnapshotFunc func(state *entity.ExecutionState)

// Config configures a Runner.
type Config struct {
	// ChunkSize is the read buffer size. Zero means 4 KiB.
	ChunkSize int
	// IdleTimeout ends the stream when no bytes arrive for this long. Zero disables it.
	IdleTimeout time.Duration
	// Clock stamps tool calls and terminal events. Nil means time.Now.
	Clock func() time.Time
}

// Runner is the single sequential read loop of an execution. It holds no
// per-stream state and can be shared.
type Runner struct {
	chunkSize int
	idle      time.Duration
	now       func() time.Time
}

// New creates a Runner.
func New(cfg Config) *Runner {
	r := &Runner{
		chunkSize: cfg.ChunkSize,
		idle:      cfg.IdleTimeout,
		now:       cfg.Clock,
	}
	if r.chunkSize <= 0 {
		r.chunkSize = defaultChunkSize
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Run consumes body until EOF and returns the last snapshot.
//
// Malformed frames are logged and skipped. An error event ends the loop with
// an *entity.ExecutionError after its snapshot has been published. Read
// failures, cancellation and idle timeouts end the loop with an error and
// leave the state incomplete. A clean EOF without a terminal event returns
// the incomplete state and no error.
//
// When body is an io.Closer it is closed as soon as ctx is canceled so that a
// blocked read returns.
func (r *Runner) Run(ctx context.Context, body io.Reader, initial *entity.ExecutionState, onSnapshot SnapshotFunc) (*entity.ExecutionState, error) {
	guard := newStreamGuard(ctx, initial.MessageID, r.idle)
	defer guard.Stop()

	if c, ok := body.(io.Closer); ok {
		stop := context.AfterFunc(guard.Context(), func() {
			_ = c.Close()
		})
		defer stop()
	}

	publish := func(s *entity.ExecutionState) {
		if onSnapshot != nil {
			onSnapshot(s)
		}
	}

	var (
		state  = initial
		dec    = framer.NewDecoder()
		buf    = make([]byte, r.chunkSize)
		frames int
	)
	for {
		if err := guard.Err(); err != nil {
			return state, stopReason(err)
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			guard.Touch()
			for _, payload := range dec.Feed(buf[:n]) {
				frames++
				ev, err := parser.Parse(payload)
				if err != nil {
					logger.WarnX(pkg.ModuleName, "[StreamRunner] drop malformed frame #%d of message %s: %v", frames, state.MessageID, err)
					continue
				}

				next, protoErr := reducer.Reduce(state, ev, r.now())
				if next != state {
					state = next
					publish(state)
				}
				if protoErr != nil {
					logger.WarnX(pkg.ModuleName, "[StreamRunner] message %s: %v", state.MessageID, protoErr)
					return state, protoErr
				}
			}
		}

		if readErr == nil {
			continue
		}
		if err := guard.Err(); err != nil {
			return state, stopReason(err)
		}
		if !errors.Is(readErr, io.EOF) {
			return state, fmt.Errorf("%w: %w", errno.ErrStreamRead, readErr)
		}

		if dropped := dec.Flush(); dropped > 0 {
			logger.DebugX(pkg.ModuleName, "[StreamRunner] discard %d bytes of unterminated trailing frame", dropped)
		}
		if !state.IsComplete {
			logger.WarnX(pkg.ModuleName, "[StreamRunner] stream for message %s ended without a terminal event", state.MessageID)
		}
		return state, nil
	}
}

// Stream runs the loop on its own goroutine and delivers snapshots through
// the returned reader. The loop's error, if any, is the last Recv error;
// a successful run ends with io.EOF. Closing the reader early stops the loop.
// Stream takes ownership of body and closes it, if it is an io.Closer, when
// the loop ends.
func (r *Runner) Stream(ctx context.Context, body io.Reader, initial *entity.ExecutionState) *schema.StreamReader[*entity.ExecutionState] {
	sr, sw := schema.Pipe[*entity.ExecutionState](snapshotBuffer)
	runCtx, cancel := context.WithCancelCause(ctx)

	safego.Go(runCtx, func() {
		defer cancel(nil)
		defer sw.Close()
		if c, ok := body.(io.Closer); ok {
			defer c.Close()
		}

		_, err := r.Run(runCtx, body, initial, func(s *entity.ExecutionState) {
			if closed := sw.Send(s, nil); closed {
				cancel(errno.ErrStreamClosed)
			}
		})
		if err != nil && !errors.Is(err, errno.ErrStreamClosed) {
			sw.Send(nil, err)
		}
	})
	return sr
}

func stopReason(cause error) error {
	if errors.Is(cause, errno.ErrStreamIdle) || errors.Is(cause, errno.ErrStreamClosed) {
		return cause
	}
	return fmt.Errorf("%w: %w", errno.ErrStreamCanceled, cause)
}

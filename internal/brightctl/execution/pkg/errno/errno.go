package errno

import (
	"errors"
)

var (
	ErrMalformedPayload = errors.New("malformed event payload")
	ErrExecutionFailed  = errors.New("agent execution failed")
	ErrStreamIdle       = errors.New("stream idle timeout")
	ErrStreamRead       = errors.New("stream read failed")
	ErrStreamClosed     = errors.New("snapshot stream closed by consumer")
	ErrStreamCanceled   = errors.New("stream canceled")
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

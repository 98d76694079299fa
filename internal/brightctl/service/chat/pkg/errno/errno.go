package errno

import (
	"errors"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrEmptyQuery        = errors.New("query must not be empty")
	ErrNoAgent           = errors.New("no agent selected")
	ErrTurnInProgress    = errors.New("a turn is already in progress for this session")
	ErrExecutionNotFound = errors.New("no execution recorded for message")
	ErrNoAnswer          = errors.New("the stream ended without any output")
)

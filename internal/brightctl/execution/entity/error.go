package entity

import (
	"fmt"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/pkg/errno"
)

// ExecutionError is returned when the server ends an execution with an error event.
type ExecutionError struct {
	MessageID   string
	ExecutionID string
	Message     string
}

func (e *ExecutionError) Error() string {
	if e.ExecutionID != "" {
		return fmt.Sprintf("execution %s failed: %s", e.ExecutionID, e.Message)
	}
	return fmt.Sprintf("execution failed: %s", e.Message)
}

// Unwrap lets callers match with errors.Is(err, errno.ErrExecutionFailed).
func (e *ExecutionError) Unwrap() error {
	return errno.ErrExecutionFailed
}

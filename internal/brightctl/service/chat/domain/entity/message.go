package entity

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a permanent chat message.
//
// An assistant message holds only the final displayed output of its
// execution; the execution itself is not persisted.
type Message struct {
	// ID is the message id. For an assistant message it equals the
	// ExecutionState.MessageID of the execution that produced it.
	ID string `json:"id"`

	// SessionID groups the messages of one conversation.
	SessionID string `json:"session_id"`

	// AgentID is the agent that answered, empty for user messages.
	AgentID string `json:"agent_id,omitempty"`

	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ExecutionID is the server-side execution id, if one was announced.
	ExecutionID string `json:"execution_id,omitempty"`

	// ToolCallCount is how many tools the execution called.
	ToolCallCount int `json:"tool_call_count,omitempty"`

	// Duration is how long the execution took.
	Duration time.Duration `json:"duration,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Session summarizes one stored conversation.
type Session struct {
	ID           string    `json:"id"`
	MessageCount int       `json:"message_count"`
	LastActiveAt time.Time `json:"last_active_at"`
}

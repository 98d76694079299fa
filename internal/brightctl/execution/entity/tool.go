package entity

import (
	"time"
)

// ToolCallRecord is one entry of the append-only tool call log.
type ToolCallRecord struct {
	// Tool is the tool name as sent by the server.
	Tool string `json:"tool"`
	// Parameters are the arguments the agent passed to the tool.
	Parameters map[string]any `json:"parameters,omitempty"`
	// Result is the tool's return value, any JSON shape.
	Result any `json:"result,omitempty"`
	// Timestamp is when the client received the tool_call event.
	Timestamp time.Time `json:"timestamp"`
}

// ToolCategory groups tools for display.
type ToolCategory string

const (
	ToolCategoryCompute   ToolCategory = "compute"
	ToolCategorySearch    ToolCategory = "search"
	ToolCategoryKnowledge ToolCategory = "knowledge"
	ToolCategoryFile      ToolCategory = "file"
	ToolCategoryNetwork   ToolCategory = "network"
	ToolCategoryMCP       ToolCategory = "mcp"
	ToolCategoryGeneric   ToolCategory = "generic"
)

// ToolDescriptor is presentation metadata for a tool, looked up by name.
type ToolDescriptor struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Category    ToolCategory `json:"category"`
	Icon        string       `json:"icon"`
	Description string       `json:"description"`
}

package entity

// Complexity is the planner's estimate of how hard a request is.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityComplex Complexity = "complex"
)

// Priority of a subtask within a plan.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SubtaskStatus is the display status of a subtask.
//
// It is never stored on a SubTask; it is derived from the position of the
// subtask and the execution's current subtask index.
type SubtaskStatus string

const (
	SubtaskPending   SubtaskStatus = "pending"
	SubtaskActive    SubtaskStatus = "active"
	SubtaskCompleted SubtaskStatus = "completed"
)

// SubTask is one planned unit of work. It is immutable once received.
type SubTask struct {
	ID             string   `json:"id"`
	Description    string   `json:"description"`
	Objective      string   `json:"objective,omitempty"`
	Priority       Priority `json:"priority,omitempty"`
	EstimatedSteps int      `json:"estimated_steps,omitempty"`
}

// Plan is the agent's decomposition of a request into subtasks.
type Plan struct {
	Complexity        Complexity `json:"complexity"`
	Confidence        float64    `json:"confidence"`
	EstimatedDuration float64    `json:"estimated_duration"`
	Subtasks          []SubTask  `json:"subtasks"`
}

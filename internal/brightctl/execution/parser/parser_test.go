package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/pkg/errno"
)

func TestParse_KnownTypes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    entity.Event
	}{
		{
			name:    "plan",
			payload: `{"type":"plan","complexity":"complex","confidence":0.9,"estimated_duration":12.5,"subtasks":[{"id":"s1","description":"Search","objective":"find","priority":"high","estimated_steps":2}]}`,
			want: &entity.PlanEvent{Plan: entity.Plan{
				Complexity:        entity.ComplexityComplex,
				Confidence:        0.9,
				EstimatedDuration: 12.5,
				Subtasks: []entity.SubTask{{
					ID: "s1", Description: "Search", Objective: "find",
					Priority: entity.PriorityHigh, EstimatedSteps: 2,
				}},
			}},
		},
		{
			name:    "subtask_status",
			payload: `{"type":"subtask_status","status":"completed","subtask_id":"s1"}`,
			want:    &entity.SubtaskStatusEvent{Status: entity.SubtaskCompleted, SubtaskID: "s1"},
		},
		{
			name:    "start",
			payload: `{"type":"start","execution_id":"exec-1"}`,
			want:    &entity.StartEvent{ExecutionID: "exec-1"},
		},
		{
			name:    "step",
			payload: `{"type":"step","node":"reasoner","step":3,"state":{"output":"partial","tokens":5}}`,
			want: &entity.StepEvent{Node: "reasoner", Step: 3, State: map[string]any{
				"output": "partial",
				"tokens": float64(5),
			}},
		},
		{
			name:    "tool_call",
			payload: `{"type":"tool_call","tool":"calculator","parameters":{"expression":"1+1"},"result":2}`,
			want: &entity.ToolCallEvent{
				Tool:       "calculator",
				Parameters: map[string]any{"expression": "1+1"},
				Result:     float64(2),
			},
		},
		{
			name:    "complete",
			payload: `{"type":"complete","output":"579"}`,
			want:    &entity.CompleteEvent{Output: "579"},
		},
		{
			name:    "error",
			payload: `{"type":"error","error":"timeout"}`,
			want:    &entity.ErrorEvent{Message: "timeout"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, entity.EventType(tt.name), got.Type())
		})
	}
}

func TestParse_UnknownTypeIsNotAnError(t *testing.T) {
	got, err := Parse(` {"type":"heartbeat","ts":1} `)
	require.NoError(t, err)

	unknown, ok := got.(*entity.UnknownEvent)
	require.True(t, ok)
	assert.Equal(t, "heartbeat", unknown.Kind)
	assert.Equal(t, entity.EventType("heartbeat"), unknown.Type())
	assert.JSONEq(t, `{"type":"heartbeat","ts":1}`, string(unknown.Raw))
}

func TestParse_MissingTypeIsUnknown(t *testing.T) {
	got, err := Parse(`{"output":"x"}`)
	require.NoError(t, err)
	assert.IsType(t, &entity.UnknownEvent{}, got)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"truncated", `{"type":"complete","output":`},
		{"not json", `{not json`},
		{"array", `[1,2]`},
		{"string", `"complete"`},
		{"empty", ``},
		{"wrong field type", `{"type":"complete","output":42}`},
		{"wrong subtasks type", `{"type":"plan","subtasks":"none"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.payload)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, errno.ErrMalformedPayload)
		})
	}
}

func TestStepEvent_Output(t *testing.T) {
	ev, err := Parse(`{"type":"step","node":"n","step":1,"state":{"output":7}}`)
	require.NoError(t, err)
	_, ok := ev.(*entity.StepEvent).Output()
	assert.False(t, ok, "non-string output is ignored")

	ev, err = Parse(`{"type":"step","node":"n","step":1}`)
	require.NoError(t, err)
	_, ok = ev.(*entity.StepEvent).Output()
	assert.False(t, ok)
}

// Package parser decodes data frames into typed execution events.
package parser

import (
	"bytes"
	"fmt"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/pkg/errno"
	"github.com/kiosk404/brightchat/pkg/utils/json"
)

type envelope struct {
	Type string `json:"type"`
}

// Parse decodes one data payload.
//
// A payload that is not a JSON object, or whose body does not fit the shape
// of its declared type, yields an error wrapping errno.ErrMalformedPayload.
// An unrecognized type is not an error: it yields an *entity.UnknownEvent.
func Parse(payload string) (entity.Event, error) {
	return ParseBytes([]byte(payload))
}

// ParseBytes is Parse for a byte slice. The slice is not retained.
func ParseBytes(raw []byte) (entity.Event, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: payload is not a JSON object", errno.ErrMalformedPayload)
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrMalformedPayload, err)
	}

	ev := newEvent(entity.EventType(env.Type))
	if ev == nil {
		return &entity.UnknownEvent{
			Kind: env.Type,
			Raw:  append(json.RawMessage(nil), trimmed...),
		}, nil
	}

	if err := json.Unmarshal(trimmed, ev); err != nil {
		return nil, fmt.Errorf("%w: decode %s event: %v", errno.ErrMalformedPayload, env.Type, err)
	}
	return ev, nil
}

func newEvent(t entity.EventType) entity.Event {
	switch t {
	case entity.EventPlan:
		return &entity.PlanEvent{}
	case entity.EventSubtaskStatus:
		return &entity.SubtaskStatusEvent{}
	case entity.EventStart:
		return &entity.StartEvent{}
	case entity.EventStep:
		return &entity.StepEvent{}
	case entity.EventToolCall:
		return &entity.ToolCallEvent{}
	case entity.EventComplete:
		return &entity.CompleteEvent{}
	case entity.EventError:
		return &entity.ErrorEvent{}
	default:
		return nil
	}
}

// Package scenario holds the scripted execution streams replayed by brightstub.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kiosk404/brightchat/pkg/utils/json"
)

// Scenario is one scripted agent. Each frame is either a JSON object, sent as
// a single data record, or a JSON string, written to the stream verbatim
// followed by a newline. Strings make it possible to script heartbeats,
// comments and malformed lines.
type Scenario struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Tools       []string          `json:"tools,omitempty"`
	Frames      []json.RawMessage `json:"frames"`

	// DelayMS pauses between frames.
	DelayMS int `json:"delay_ms,omitempty"`
	// SplitBytes, when positive, writes every frame in pieces of this many
	// bytes, flushing after each piece.
	SplitBytes int `json:"split_bytes,omitempty"`
	// SkipDone omits the trailing [DONE] record.
	SkipDone bool `json:"skip_done,omitempty"`

	// Source is the file the scenario was loaded from.
	Source string `json:"-"`
}

// Delay returns the pause between frames.
func (s *Scenario) Delay() time.Duration {
	return time.Duration(s.DelayMS) * time.Millisecond
}

// Frame is one rendered piece of the stream.
type Frame struct {
	// Raw is true when Text must be written as is.
	Raw bool
	// Text is the compact JSON payload, or the raw line without its newline.
	Text string
}

// Render converts the scripted frames into writable frames.
func (s *Scenario) Render() ([]Frame, error) {
	frames := make([]Frame, 0, len(s.Frames))
	for i, raw := range s.Frames {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			return nil, fmt.Errorf("frame %d is empty", i)
		}
		switch trimmed[0] {
		case '"':
			var line string
			if err := json.Unmarshal(trimmed, &line); err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			frames = append(frames, Frame{Raw: true, Text: line})
		case '{':
			var buf bytes.Buffer
			if err := json.Compact(&buf, trimmed); err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			frames = append(frames, Frame{Text: buf.String()})
		default:
			return nil, fmt.Errorf("frame %d must be an object or a string", i)
		}
	}
	return frames, nil
}

// Validate reports whether the scenario can be served.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("id is required")
	}
	if strings.ContainsAny(s.ID, "/ ") {
		return fmt.Errorf("id %q must not contain '/' or spaces", s.ID)
	}
	if s.DelayMS < 0 || s.SplitBytes < 0 {
		return fmt.Errorf("delay_ms and split_bytes must not be negative")
	}
	_, err := s.Render()
	return err
}

// LoadFile reads one scenario file. A missing id defaults to the file name
// without extension.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %q: %w", path, err)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %q: %w", path, err)
	}
	if s.ID == "" {
		s.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	s.Source = path
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", path, err)
	}
	return &s, nil
}

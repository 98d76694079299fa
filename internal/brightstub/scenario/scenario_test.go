package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/brightchat/pkg/utils/json"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRender(t *testing.T) {
	s := &Scenario{ID: "x", Frames: []json.RawMessage{
		json.RawMessage(`{ "type" : "complete",
			"output": "ok" }`),
		json.RawMessage(`": keep-alive"`),
		json.RawMessage(`""`),
	}}

	frames, err := s.Render()
	require.NoError(t, err)
	assert.Equal(t, []Frame{
		{Text: `{"type":"complete","output":"ok"}`},
		{Raw: true, Text: ": keep-alive"},
		{Raw: true, Text: ""},
	}, frames)
}

func TestRender_Rejects(t *testing.T) {
	for _, raw := range []string{`42`, `[1,2]`, `{"broken":`, ` `} {
		s := &Scenario{ID: "x", Frames: []json.RawMessage{json.RawMessage(raw)}}
		_, err := s.Render()
		assert.Error(t, err, raw)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Scenario
		wantErr bool
	}{
		{name: "ok", s: Scenario{ID: "calc"}},
		{name: "no id", s: Scenario{}, wantErr: true},
		{name: "slash", s: Scenario{ID: "a/b"}, wantErr: true},
		{name: "space", s: Scenario{ID: "a b"}, wantErr: true},
		{name: "negative delay", s: Scenario{ID: "a", DelayMS: -1}, wantErr: true},
		{name: "negative split", s: Scenario{ID: "a", SplitBytes: -3}, wantErr: true},
		{name: "bad frame", s: Scenario{ID: "a", Frames: []json.RawMessage{json.RawMessage(`true`)}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFile_Defaults(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "echo.json", `{"delay_ms": 20, "frames": [{"type":"complete","output":"hi"}]}`)

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "echo", s.ID)
	assert.Equal(t, "echo", s.Name)
	assert.Equal(t, path, s.Source)
	assert.Equal(t, int64(20), s.Delay().Milliseconds())
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = LoadFile(writeScenario(t, dir, "bad.json", `{"frames": [`))
	assert.Error(t, err)

	_, err = LoadFile(writeScenario(t, dir, "invalid.json", `{"id": "has space"}`))
	assert.Error(t, err)
}

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/pkg/utils/json"
)

const calculatorStream = `data: {"type":"start","execution_id":"exec-1"}

data: {"type":"step","node":"n","step":1,"state":{"output":"partial"}}

data: {"type":"tool_call","tool":"calculator","parameters":{"expression":"123 + 456"},"result":579}

data: {"type":"complete","output":"123 + 456 = 579"}

data: [DONE]

`

func init() {
	color.NoColor = true
}

func execute(t *testing.T, stdin string, args ...string) (string, string) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewBrightCtlCommand(strings.NewReader(stdin), out, errOut)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()), errOut.String())
	return out.String(), errOut.String()
}

func newAgentServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"calculator","name":"Calculator","description":"adds numbers","tools":["calculator"]}]}`)
	})
	mux.HandleFunc("POST /api/v1/agents/calculator/chat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, calculatorStream)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calc.sse")
	require.NoError(t, os.WriteFile(path, []byte(calculatorStream), 0o600))

	out, errOut := execute(t, "", "replay", path, "--store.type", "inmemory")
	assert.Contains(t, out, "579")
	assert.Contains(t, errOut, "execution exec-1")
	assert.Contains(t, errOut, "Calculator")
	assert.NotContains(t, errOut, "no terminal event")

	out, _ = execute(t, calculatorStream, "replay", "-", "--json", "--client.chunk-size", "3", "--store.type", "inmemory")
	var state entity.ExecutionState
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.True(t, state.IsComplete)
	assert.Equal(t, "123 + 456 = 579", state.DisplayedOutput)
	assert.Len(t, state.ToolCalls, 1)
}

func TestChat_Plain(t *testing.T) {
	srv := newAgentServer(t)

	out, errOut := execute(t, "",
		"chat", "--output", "plain", "--details",
		"--client.server-addr", srv.URL+"/api/v1", "--store.type", "inmemory",
		"what", "is", "123 + 456")

	assert.Contains(t, out, "123 + 456 = 579")
	assert.Contains(t, out, "exec-1", "details view")
	assert.Contains(t, errOut, "Calculator")
	assert.Contains(t, errOut, "… partial")
}

func TestChat_JSON(t *testing.T) {
	srv := newAgentServer(t)

	out, _ := execute(t, "",
		"chat", "-a", "calculator", "-o", "json", "-s", "session-1",
		"--client.server-addr", srv.URL+"/api/v1", "--store.type", "inmemory",
		"123 + 456")

	var got struct {
		SessionID string                 `json:"session_id"`
		State     *entity.ExecutionState `json:"state"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "session-1", got.SessionID)
	require.NotNil(t, got.State)
	assert.Equal(t, "exec-1", got.State.ExecutionID)
}

func TestChat_Interactive(t *testing.T) {
	srv := newAgentServer(t)

	out, errOut := execute(t, "first\n/session\n/bogus\nsecond\n/quit\n",
		"chat", "-a", "calculator", "-o", "plain",
		"--client.server-addr", srv.URL+"/api/v1", "--store.type", "inmemory")

	assert.Equal(t, 2, strings.Count(out, "123 + 456 = 579"))
	assert.Contains(t, errOut, `unknown command "/bogus"`)
}

func TestAgents_JSON(t *testing.T) {
	srv := newAgentServer(t)

	out, _ := execute(t, "", "agents", "--json", "--client.server-addr", srv.URL+"/api/v1", "--store.type", "inmemory")
	assert.Contains(t, out, `"calculator"`)
	assert.Contains(t, out, "adds numbers")
}

func TestHistory(t *testing.T) {
	srv := newAgentServer(t)
	db := filepath.Join(t.TempDir(), "chat.db")

	execute(t, "",
		"chat", "-a", "calculator", "-o", "json", "-s", "persisted",
		"--client.server-addr", srv.URL+"/api/v1", "--store.type", "boltdb", "--store.path", db,
		"123 + 456")

	out, _ := execute(t, "", "history", "--store.type", "boltdb", "--store.path", db)
	assert.Contains(t, out, "persisted")

	out, _ = execute(t, "", "history", "--session", "persisted", "--store.type", "boltdb", "--store.path", db)
	assert.Contains(t, out, "123 + 456 = 579")
}

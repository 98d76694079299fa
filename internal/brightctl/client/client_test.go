package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/pkg/errno"
	"github.com/kiosk404/brightchat/pkg/errorx"
	"github.com/kiosk404/brightchat/pkg/utils/json"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{ServerAddr: srv.URL + "/", Token: "secret", Timeout: 5 * time.Second})
}

func writeSSE(w http.ResponseWriter, payloads ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	for _, p := range payloads {
		fmt.Fprintf(w, "data: %s\n\n", p)
		w.(http.Flusher).Flush()
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func TestNewChatRequest(t *testing.T) {
	req := NewChatRequest("hi", "", nil)
	assert.Nil(t, req.SessionID)
	assert.True(t, req.Stream)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"hi","stream":true}`, string(data))

	req = NewChatRequest("hi", "s-1", []string{"kb"})
	require.NotNil(t, req.SessionID)
	assert.Equal(t, "s-1", *req.SessionID)
}

func TestListAgents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/agents", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"data":[{"id":"calc","name":"Calculator","description":"adds","tools":["calculator"]},{"id":"r","name":"Research"}]}`)
	})

	agents, err := c.ListAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, &Agent{ID: "calc", Name: "Calculator", Description: "adds", Tools: []string{"calculator"}}, agents[0])
	assert.Equal(t, "Research", agents[1].Name)
}

func TestListAgents_BadBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>`)
	})
	_, err := c.ListAgents(context.Background())
	assert.True(t, errorx.IsCode(err, ErrResponseDecode))
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		code   int
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrAgentNotFound},
		{http.StatusInternalServerError, ErrUnexpectedStatus},
		{http.StatusBadRequest, ErrUnexpectedStatus},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			})
			_, err := c.OpenAgentStream(context.Background(), "calc", NewChatRequest("q", "", nil))
			require.Error(t, err)
			assert.True(t, errorx.IsCode(err, tt.code))
			assert.ErrorIs(t, err, errno.ErrUnexpectedStatus)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestOpenAgentStream_Request(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/agents/my%20agent/chat", r.URL.EscapedPath())
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"query":"2+2","session_id":"s","stream":true,"knowledge_base_ids":["kb1"]}`, string(body))
		writeSSE(w, `{"type":"complete","output":"4"}`)
	})

	body, err := c.OpenAgentStream(context.Background(), "my agent", NewChatRequest("2+2", "s", []string{"kb1"}))
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"output":"4"`)
}

func TestChatWithAgent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w,
			`{"type":"start","execution_id":"exec-9"}`,
			`{"type":"tool_call","tool":"calculator","parameters":{"expression":"123+456"},"result":579}`,
			`{"type":"complete","output":"579"}`,
		)
	})

	var snapshots int
	state := entity.NewExecutionState("m", time.Now())
	final, err := c.ChatWithAgent(context.Background(), "calc", NewChatRequest("q", "", nil), state, func(*entity.ExecutionState) {
		snapshots++
	})
	require.NoError(t, err)
	assert.Equal(t, 3, snapshots)
	assert.Equal(t, "exec-9", final.ExecutionID)
	assert.Equal(t, "579", final.DisplayedOutput)
	assert.True(t, final.IsComplete)
}

func TestChatWithAgent_ProtocolError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, `{"type":"error","error":"timeout"}`)
	})

	final, err := c.ChatWithAgent(context.Background(), "calc", NewChatRequest("q", "", nil), entity.NewExecutionState("m", time.Now()), nil)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, ErrAgentFailed))

	var execErr *entity.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "timeout", execErr.Message)
	assert.True(t, final.Failed)
}

func TestChatWithAgent_StatusErrorKeepsInitialState(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown agent", http.StatusNotFound)
	})

	state := entity.NewExecutionState("m", time.Now())
	final, err := c.ChatWithAgent(context.Background(), "ghost", NewChatRequest("q", "", nil), state, nil)
	assert.True(t, errorx.IsCode(err, ErrAgentNotFound))
	assert.Same(t, state, final)
}

func TestStreamAgent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, `{"type":"complete","output":"ok"}`)
	})

	sr, err := c.StreamAgent(context.Background(), "calc", NewChatRequest("q", "", nil), entity.NewExecutionState("m", time.Now()))
	require.NoError(t, err)
	defer sr.Close()

	s, err := sr.Recv()
	require.NoError(t, err)
	assert.Equal(t, "ok", s.DisplayedOutput)

	_, err = sr.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamAgent_ProtocolErrorIsCoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, `{"type":"error","error":"timeout"}`)
	})

	sr, err := c.StreamAgent(context.Background(), "calc", NewChatRequest("q", "", nil), entity.NewExecutionState("m", time.Now()))
	require.NoError(t, err)
	defer sr.Close()

	s, err := sr.Recv()
	require.NoError(t, err)
	assert.True(t, s.Failed)

	_, err = sr.Recv()
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, ErrAgentFailed))
}

// Package client talks to the Bright-Chat agent API.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/gg/gptr"
	"github.com/cloudwego/eino/schema"
	"github.com/jinzhu/copier"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/pkg/errno"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/runner"
	"github.com/kiosk404/brightchat/pkg/errorx"
	"github.com/kiosk404/brightchat/pkg/logger"
	"github.com/kiosk404/brightchat/pkg/utils/json"
)

const maxErrorBody = 4 << 10

// Config holds everything needed to build a Client.
type Config struct {
	// ServerAddr is the API base URL, e.g. http://localhost:8000/api/v1.
	ServerAddr string
	// Token is sent as a bearer token when not empty.
	Token string
	// Timeout bounds non-streaming requests. Streams are bounded by the runner's idle timeout.
	Timeout time.Duration
	// HTTPClient overrides the default transport.
	HTTPClient *http.Client
	// Runner folds the execution stream. Nil means a runner with default settings.
	Runner *runner.Runner
}

// Client is the HTTP client for the agent API.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
	runner  *runner.Runner
}

// New creates a Client.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No client-wide timeout: it would cut long-running streams.
		httpClient = &http.Client{}
	}
	r := cfg.Runner
	if r == nil {
		r = runner.New(runner.Config{})
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.ServerAddr, "/"),
		token:   cfg.Token,
		timeout: cfg.Timeout,
		http:    httpClient,
		runner:  r,
	}
}

// ChatRequest is the body of POST /agents/{id}/chat.
type ChatRequest struct {
	Query            string   `json:"query"`
	SessionID        *string  `json:"session_id,omitempty"`
	Stream           bool     `json:"stream"`
	KnowledgeBaseIDs []string `json:"knowledge_base_ids,omitempty"`
}

// NewChatRequest builds a streaming chat request. Empty sessionID is omitted.
func NewChatRequest(query, sessionID string, knowledgeBaseIDs []string) *ChatRequest {
	req := &ChatRequest{
		Query:            query,
		Stream:           true,
		KnowledgeBaseIDs: knowledgeBaseIDs,
	}
	if sessionID != "" {
		req.SessionID = gptr.Of(sessionID)
	}
	return req
}

// Agent is an agent the server can run.
type Agent struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tools       []string `json:"tools,omitempty"`
}

type agentDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tools       []string `json:"tools,omitempty"`
}

type agentListResponse struct {
	Data []agentDTO `json:"data"`
}

// ListAgents returns the agents available on the server.
func (c *Client) ListAgents(ctx context.Context) ([]*Agent, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/agents", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errorx.WrapC(err, ErrRequestSend, "list agents")
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "list agents"); err != nil {
		return nil, err
	}

	var body agentListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errorx.WrapC(err, ErrResponseDecode, "decode agent list")
	}

	agents := make([]*Agent, 0, len(body.Data))
	for i := range body.Data {
		a := &Agent{}
		if err := copier.Copy(a, &body.Data[i]); err != nil {
			return nil, errorx.WrapC(err, ErrResponseDecode, "convert agent %q", body.Data[i].ID)
		}
		agents = append(agents, a)
	}
	return agents, nil
}

// OpenAgentStream starts an execution and returns the event stream body.
// A non-2xx response is returned as a coded error carrying the response text;
// the caller must close the returned body.
func (c *Client) OpenAgentStream(ctx context.Context, agentID string, chatReq *ChatRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, errorx.WrapC(err, ErrRequestBuild, "marshal chat request")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/agents/"+url.PathEscape(agentID)+"/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errorx.WrapC(err, ErrRequestSend, "open stream for agent %q", agentID)
	}
	if err := checkStatus(resp, fmt.Sprintf("chat with agent %q", agentID)); err != nil {
		resp.Body.Close()
		return nil, err
	}

	logger.Debug("[AgentClient] stream opened for agent %s, content-type %q", agentID, resp.Header.Get("Content-Type"))
	return resp.Body, nil
}

// ChatWithAgent runs one execution to its end, calling onSnapshot for every
// state change. The returned state is the last snapshot even when an error is
// returned. A protocol error keeps its *entity.ExecutionError in the chain.
func (c *Client) ChatWithAgent(ctx context.Context, agentID string, chatReq *ChatRequest, state *entity.ExecutionState, onSnapshot runner.SnapshotFunc) (*entity.ExecutionState, error) {
	body, err := c.OpenAgentStream(ctx, agentID, chatReq)
	if err != nil {
		return state, err
	}
	defer body.Close()

	final, err := c.runner.Run(ctx, body, state, onSnapshot)
	if err != nil {
		return final, classify(err, agentID)
	}
	return final, nil
}

// StreamAgent is ChatWithAgent with snapshots delivered through a StreamReader.
// The last Recv error carries the same codes ChatWithAgent returns.
func (c *Client) StreamAgent(ctx context.Context, agentID string, chatReq *ChatRequest, state *entity.ExecutionState) (*schema.StreamReader[*entity.ExecutionState], error) {
	body, err := c.OpenAgentStream(ctx, agentID, chatReq)
	if err != nil {
		return nil, err
	}
	sr := c.runner.Stream(ctx, body, state)
	return schema.StreamReaderWithConvert(sr,
		func(s *entity.ExecutionState) (*entity.ExecutionState, error) { return s, nil },
		schema.WithErrWrapper(func(err error) error { return classify(err, agentID) }),
	), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errorx.WrapC(err, ErrRequestBuild, "create %s %s request", method, path)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	cause := fmt.Errorf("%w: %d %s", errno.ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(text)))

	code := ErrUnexpectedStatus
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = ErrUnauthorized
	case http.StatusNotFound:
		code = ErrAgentNotFound
	}
	return errorx.WrapC(cause, code, "%s", op)
}

func classify(err error, agentID string) error {
	var execErr *entity.ExecutionError
	switch {
	case errors.As(err, &execErr):
		return errorx.WrapC(err, ErrAgentFailed, "agent %q", agentID)
	case errors.Is(err, errno.ErrStreamRead):
		return errorx.WrapC(err, ErrStreamBroken, "agent %q", agentID)
	default:
		return err
	}
}

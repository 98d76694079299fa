package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/kiosk404/brightchat/internal/brightctl/client"
	execEntity "github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/runner"
	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/domain/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/domain/repo"
	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/pkg"
	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/pkg/errno"
	"github.com/kiosk404/brightchat/pkg/logger"
	"github.com/kiosk404/brightchat/pkg/utils/safego"
)

const turnSnapshotBuffer = 32

// AgentStreamer starts agent executions and delivers their snapshots.
// *client.Client implements it.
type AgentStreamer interface {
	StreamAgent(ctx context.Context, agentID string, req *client.ChatRequest, state *execEntity.ExecutionState) (*schema.StreamReader[*execEntity.ExecutionState], error)
}

var _ AgentStreamer = (*client.Client)(nil)

// Options tune a chatService.
type Options struct {
	// MaxExecutions bounds how many execution records are kept for the details view.
	MaxExecutions int
	// Clock stamps messages. Nil means time.Now.
	Clock func() time.Time
}

type chatService struct {
	messages repo.MessageRepository
	agents   AgentStreamer
	now      func() time.Time

	turnMu sync.Mutex
	active map[string]struct{}

	execMu        sync.RWMutex
	executions    map[string]*execEntity.ExecutionState
	execOrder     []string
	maxExecutions int
}

// NewChatService creates the default ChatService.
func NewChatService(messages repo.MessageRepository, agents AgentStreamer, opts Options) ChatService {
	if opts.MaxExecutions <= 0 {
		opts.MaxExecutions = 256
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &chatService{
		messages:      messages,
		agents:        agents,
		now:           opts.Clock,
		active:        make(map[string]struct{}),
		executions:    make(map[string]*execEntity.ExecutionState),
		maxExecutions: opts.MaxExecutions,
	}
}

func (s *chatService) Start(ctx context.Context, req *TurnRequest) (*Turn, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, errno.ErrEmptyQuery
	}
	if req.AgentID == "" {
		return nil, errno.ErrNoAgent
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if !s.beginTurn(sessionID) {
		return nil, fmt.Errorf("session %q: %w", sessionID, errno.ErrTurnInProgress)
	}

	submitted := s.now()
	user := &entity.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      entity.RoleUser,
		Content:   query,
		CreatedAt: submitted,
	}
	state := execEntity.NewExecutionState(uuid.NewString(), submitted)
	logger.InfoX(pkg.ModuleName, "[ChatService] session %s: turn %s started with agent %s", sessionID, state.MessageID, req.AgentID)

	sr, sw := schema.Pipe[*execEntity.ExecutionState](turnSnapshotBuffer)
	turn := &Turn{Snapshots: sr, done: make(chan struct{})}
	chatReq := client.NewChatRequest(query, sessionID, req.KnowledgeBaseIDs)

	safego.Go(ctx, func() {
		defer sw.Close()
		defer close(turn.done)
		defer s.endTurn(sessionID)

		final, err := s.follow(ctx, req.AgentID, chatReq, state, sw)
		turn.result, turn.err = s.finish(ctx, req.AgentID, user, final, err)
	})
	return turn, nil
}

func (s *chatService) Send(ctx context.Context, req *TurnRequest, onSnapshot runner.SnapshotFunc) (*TurnResult, error) {
	turn, err := s.Start(ctx, req)
	if err != nil {
		return nil, err
	}
	for {
		state, err := turn.Snapshots.Recv()
		if err != nil {
			break
		}
		if onSnapshot != nil {
			onSnapshot(state)
		}
	}
	return turn.Wait()
}

// follow receives the agent's snapshots and forwards them to sw until the
// execution ends. It returns the last snapshot. Forwarding stops when the
// reader of sw is closed, receiving does not.
func (s *chatService) follow(ctx context.Context, agentID string, chatReq *client.ChatRequest, state *execEntity.ExecutionState, sw *schema.StreamWriter[*execEntity.ExecutionState]) (*execEntity.ExecutionState, error) {
	sr, err := s.agents.StreamAgent(ctx, agentID, chatReq, state)
	if err != nil {
		return state, err
	}
	defer sr.Close()

	forward := true
	for {
		next, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			return state, nil
		}
		if err != nil {
			return state, err
		}
		state = next
		if forward && sw.Send(next, nil) {
			forward = false
		}
	}
}

// finish records the execution and persists the turn when it has an answer.
func (s *chatService) finish(ctx context.Context, agentID string, user *entity.Message, final *execEntity.ExecutionState, err error) (*TurnResult, error) {
	sessionID := user.SessionID
	s.recordExecution(final)

	result := &TurnResult{UserMessage: user, State: final}
	if err != nil {
		logger.WarnX(pkg.ModuleName, "[ChatService] session %s: turn %s failed: %v", sessionID, final.MessageID, err)
		return result, err
	}
	if final.DisplayedOutput == "" {
		logger.WarnX(pkg.ModuleName, "[ChatService] session %s: turn %s ended without output, nothing persisted", sessionID, final.MessageID)
		return result, fmt.Errorf("message %s: %w", final.MessageID, errno.ErrNoAnswer)
	}
	if !final.IsComplete {
		logger.WarnX(pkg.ModuleName, "[ChatService] session %s: turn %s ended without a final answer, keeping provisional output", sessionID, final.MessageID)
	}

	finished := s.now()
	if final.EndTime != nil {
		finished = *final.EndTime
	}
	assistant := &entity.Message{
		ID:            final.MessageID,
		SessionID:     sessionID,
		AgentID:       agentID,
		Role:          entity.RoleAssistant,
		Content:       final.DisplayedOutput,
		ExecutionID:   final.ExecutionID,
		ToolCallCount: len(final.ToolCalls),
		Duration:      final.Duration(finished),
		CreatedAt:     finished,
	}
	if !assistant.CreatedAt.After(user.CreatedAt) {
		assistant.CreatedAt = user.CreatedAt.Add(time.Nanosecond)
	}

	for _, msg := range []*entity.Message{user, assistant} {
		if err := s.messages.Save(ctx, msg); err != nil {
			return result, fmt.Errorf("save %s message: %w", msg.Role, err)
		}
	}
	result.AssistantMessage = assistant

	logger.InfoX(pkg.ModuleName, "[ChatService] session %s: turn %s done in %s (%d events, %d tool calls)",
		sessionID, final.MessageID, assistant.Duration.Round(time.Millisecond), len(final.Events), len(final.ToolCalls))
	return result, nil
}

func (s *chatService) Execution(messageID string) (*execEntity.ExecutionState, error) {
	s.execMu.RLock()
	defer s.execMu.RUnlock()
	state, ok := s.executions[messageID]
	if !ok {
		return nil, fmt.Errorf("message %q: %w", messageID, errno.ErrExecutionNotFound)
	}
	return state, nil
}

func (s *chatService) History(ctx context.Context, sessionID string) ([]*entity.Message, error) {
	msgs, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("session %q: %w", sessionID, errno.ErrSessionNotFound)
	}
	return msgs, nil
}

func (s *chatService) Sessions(ctx context.Context) ([]*entity.Session, error) {
	return s.messages.ListSessions(ctx)
}

func (s *chatService) DeleteSession(ctx context.Context, sessionID string) error {
	msgs, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return fmt.Errorf("session %q: %w", sessionID, errno.ErrSessionNotFound)
	}
	if err := s.messages.DeleteSession(ctx, sessionID); err != nil {
		return err
	}

	s.execMu.Lock()
	for _, m := range msgs {
		delete(s.executions, m.ID)
	}
	s.execMu.Unlock()
	return nil
}

func (s *chatService) beginTurn(sessionID string) bool {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	if _, busy := s.active[sessionID]; busy {
		return false
	}
	s.active[sessionID] = struct{}{}
	return true
}

func (s *chatService) endTurn(sessionID string) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	delete(s.active, sessionID)
}

func (s *chatService) recordExecution(state *execEntity.ExecutionState) {
	if state == nil {
		return
	}
	s.execMu.Lock()
	defer s.execMu.Unlock()

	if _, ok := s.executions[state.MessageID]; !ok {
		s.execOrder = append(s.execOrder, state.MessageID)
	}
	s.executions[state.MessageID] = state

	for len(s.execOrder) > s.maxExecutions {
		oldest := s.execOrder[0]
		s.execOrder = s.execOrder[1:]
		delete(s.executions, oldest)
	}
}

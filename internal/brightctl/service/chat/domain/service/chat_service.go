package service

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"

	execEntity "github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/runner"
	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/domain/entity"
)

// TurnRequest is one user submission to an agent.
type TurnRequest struct {
	SessionID        string
	AgentID          string
	Query            string
	KnowledgeBaseIDs []string
}

// TurnResult is the outcome of one turn. State is always set once the
// execution was started, even when the turn also ends with an error.
type TurnResult struct {
	UserMessage      *entity.Message
	AssistantMessage *entity.Message
	State            *execEntity.ExecutionState
}

// Turn is a running turn. Snapshots yields every intermediate ExecutionState
// and ends with io.EOF once the execution is over.
type Turn struct {
	Snapshots *schema.StreamReader[*execEntity.ExecutionState]

	closeOnce sync.Once
	done      chan struct{}
	result    *TurnResult
	err       error
}

// Wait stops receiving snapshots and blocks until the turn has been
// persisted. Snapshots not received yet are discarded; the execution itself
// runs to its end.
func (t *Turn) Wait() (*TurnResult, error) {
	t.closeOnce.Do(t.Snapshots.Close)
	<-t.done
	return t.result, t.err
}

// ChatService is the application-level service for chat turns and history.
//
// It provides:
// - Turn execution against an agent, serialized per session
// - Message history backed by a MessageRepository
// - In-memory execution records for the details view
type ChatService interface {
	// --- Turns ---

	// Start begins one turn. Validation errors and ErrTurnInProgress are
	// returned at once; every other failure is reported by Turn.Wait.
	// Messages are persisted only when the execution produced an answer.
	Start(ctx context.Context, req *TurnRequest) (*Turn, error)

	// Send runs one turn to its end. onSnapshot sees every intermediate ExecutionState.
	Send(ctx context.Context, req *TurnRequest, onSnapshot runner.SnapshotFunc) (*TurnResult, error)

	// Execution returns the last ExecutionState recorded for an assistant message.
	Execution(messageID string) (*execEntity.ExecutionState, error)

	// --- History ---

	History(ctx context.Context, sessionID string) ([]*entity.Message, error)
	Sessions(ctx context.Context) ([]*entity.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/domain/entity"
)

// MessageStore implements the MessageRepository interface on SQLite.
type MessageStore struct {
	db *sql.DB
}

// NewMessageStore creates a new MessageStore instance.
func NewMessageStore(db *DB) *MessageStore {
	return &MessageStore{db: db.SQL()}
}

func (s *MessageStore) Save(ctx context.Context, msg *entity.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO `+TableMessages+`
			(id, session_id, agent_id, role, content, execution_id, tool_call_count, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, msg.AgentID, string(msg.Role), msg.Content, msg.ExecutionID,
		msg.ToolCallCount, int64(msg.Duration), msg.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save message %q: %w", msg.ID, err)
	}
	return nil
}

func (s *MessageStore) ListBySession(ctx context.Context, sessionID string) ([]*entity.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, agent_id, role, content, execution_id, tool_call_count, duration_ns, created_at
		FROM `+TableMessages+` WHERE session_id = ? ORDER BY created_at, rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages of session %q: %w", sessionID, err)
	}
	defer rows.Close()

	var msgs []*entity.Message
	for rows.Next() {
		var (
			msg       entity.Message
			role      string
			duration  int64
			createdAt int64
		)
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.AgentID, &role, &msg.Content, &msg.ExecutionID,
			&msg.ToolCallCount, &duration, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = entity.Role(role)
		msg.Duration = time.Duration(duration)
		msg.CreatedAt = time.Unix(0, createdAt)
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

func (s *MessageStore) ListSessions(ctx context.Context) ([]*entity.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, COUNT(*), MAX(created_at) AS last_active
		FROM `+TableMessages+` GROUP BY session_id ORDER BY last_active DESC, session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*entity.Session
	for rows.Next() {
		var (
			sess entity.Session
			last int64
		)
		if err := rows.Scan(&sess.ID, &sess.MessageCount, &last); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.LastActiveAt = time.Unix(0, last)
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

func (s *MessageStore) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+TableMessages+` WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %q: %w", sessionID, err)
	}
	return nil
}

package repo

import (
	"context"

	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/domain/entity"
)

// MessageRepository defines the persistence interface for chat messages.
type MessageRepository interface {
	// Save stores a message. Saving an existing id overwrites it.
	Save(ctx context.Context, msg *entity.Message) error
	// ListBySession returns the messages of a session ordered by creation time.
	ListBySession(ctx context.Context, sessionID string) ([]*entity.Message, error)
	// ListSessions returns every session that has at least one message,
	// most recently active first.
	ListSessions(ctx context.Context) ([]*entity.Session, error)
	// DeleteSession removes all messages of a session.
	DeleteSession(ctx context.Context, sessionID string) error
}

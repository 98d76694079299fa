package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/domain/entity"
)

// MessageStore is an in-memory implementation of the MessageRepository interface.
type MessageStore struct {
	mu       sync.RWMutex
	sessions map[string][]*entity.Message
}

// NewMessageStore creates a new instance of the MessageStore.
func NewMessageStore() *MessageStore {
	return &MessageStore{
		sessions: make(map[string][]*entity.Message),
	}
}

func (s *MessageStore) Save(_ context.Context, msg *entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *msg
	msgs := s.sessions[msg.SessionID]
	if i := slices.IndexFunc(msgs, func(m *entity.Message) bool { return m.ID == msg.ID }); i >= 0 {
		msgs[i] = &cp
	} else {
		msgs = append(msgs, &cp)
	}
	slices.SortStableFunc(msgs, func(a, b *entity.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	s.sessions[msg.SessionID] = msgs
	return nil
}

func (s *MessageStore) ListBySession(_ context.Context, sessionID string) ([]*entity.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.sessions[sessionID]
	out := make([]*entity.Message, len(msgs))
	for i, m := range msgs {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}

func (s *MessageStore) ListSessions(_ context.Context) ([]*entity.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*entity.Session, 0, len(s.sessions))
	for id, msgs := range s.sessions {
		if len(msgs) == 0 {
			continue
		}
		sessions = append(sessions, &entity.Session{
			ID:           id,
			MessageCount: len(msgs),
			LastActiveAt: msgs[len(msgs)-1].CreatedAt,
		})
	}
	sortSessions(sessions)
	return sessions, nil
}

func (s *MessageStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func sortSessions(sessions []*entity.Session) {
	slices.SortFunc(sessions, func(a, b *entity.Session) int {
		if c := b.LastActiveAt.Compare(a.LastActiveAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}

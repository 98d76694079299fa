package boltdb

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/boltdb/bolt"

	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/domain/entity"
	"github.com/kiosk404/brightchat/pkg/utils/json"
)

// keySep never occurs in session ids produced by the CLI and sorts before
// every printable byte, so all keys of a session are contiguous.
const keySep = 0x00

// MessageStore implements the MessageRepository interface using BoltDB.
//
// Messages live in the "messages" bucket under session\x00createdAt\x00id,
// so a cursor seek on the session prefix yields them in creation order. The
// "message_index" bucket maps a message id to its current key.
type MessageStore struct {
	boltDB *bolt.DB
}

// NewMessageStore creates a new MessageStore instance.
func NewMessageStore(boltDB *DB) *MessageStore {
	return &MessageStore{boltDB: boltDB.Bolt()}
}

func (s *MessageStore) Save(_ context.Context, msg *entity.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	key := messageKey(msg)

	return s.boltDB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		idx := tx.Bucket(bucketMessageIndex)

		if old := idx.Get([]byte(msg.ID)); old != nil && !bytes.Equal(old, key) {
			if err := b.Delete(old); err != nil {
				return fmt.Errorf("failed to delete previous version of %q: %w", msg.ID, err)
			}
		}
		if err := b.Put(key, data); err != nil {
			return fmt.Errorf("failed to put message %q: %w", msg.ID, err)
		}
		return idx.Put([]byte(msg.ID), key)
	})
}

func (s *MessageStore) ListBySession(_ context.Context, sessionID string) ([]*entity.Message, error) {
	var msgs []*entity.Message
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		prefix := sessionPrefix(sessionID)
		c := tx.Bucket(bucketMessages).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var msg entity.Message
			if err := json.Unmarshal(v, &msg); err != nil {
				return fmt.Errorf("failed to unmarshal message: %w", err)
			}
			msgs = append(msgs, &msg)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages of session %q: %w", sessionID, err)
	}
	return msgs, nil
}

func (s *MessageStore) ListSessions(_ context.Context) ([]*entity.Session, error) {
	bySession := make(map[string]*entity.Session)
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMessages).ForEach(func(k, v []byte) error {
			i := bytes.IndexByte(k, keySep)
			if i < 0 {
				return nil
			}
			id := string(k[:i])
			var msg entity.Message
			if err := json.Unmarshal(v, &msg); err != nil {
				return fmt.Errorf("failed to unmarshal message: %w", err)
			}
			sess, ok := bySession[id]
			if !ok {
				sess = &entity.Session{ID: id}
				bySession[id] = sess
			}
			sess.MessageCount++
			if msg.CreatedAt.After(sess.LastActiveAt) {
				sess.LastActiveAt = msg.CreatedAt
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*entity.Session, 0, len(bySession))
	for _, sess := range bySession {
		sessions = append(sessions, sess)
	}
	slices.SortFunc(sessions, func(a, b *entity.Session) int {
		if c := b.LastActiveAt.Compare(a.LastActiveAt); c != 0 {
			return c
		}
		return bytes.Compare([]byte(a.ID), []byte(b.ID))
	})
	return sessions, nil
}

func (s *MessageStore) DeleteSession(_ context.Context, sessionID string) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		idx := tx.Bucket(bucketMessageIndex)
		prefix := sessionPrefix(sessionID)

		var keys [][]byte
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var msg entity.Message
			if err := json.Unmarshal(v, &msg); err == nil {
				if err := idx.Delete([]byte(msg.ID)); err != nil {
					return err
				}
			}
			keys = append(keys, slices.Clone(k))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return fmt.Errorf("failed to delete message: %w", err)
			}
		}
		return nil
	})
}

func sessionPrefix(sessionID string) []byte {
	return append([]byte(sessionID), keySep)
}

func messageKey(msg *entity.Message) []byte {
	key := sessionPrefix(msg.SessionID)
	key = fmt.Appendf(key, "%020d", msg.CreatedAt.UnixNano())
	key = append(key, keySep)
	return append(key, msg.ID...)
}

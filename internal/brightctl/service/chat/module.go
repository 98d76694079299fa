package chat

import (
	"context"
	"fmt"
	"io"

	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/domain/repo"
	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/domain/service"
	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/pkg"
	boltdbStore "github.com/kiosk404/brightchat/internal/brightctl/service/chat/store/boltdb"
	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/store/inmemory"
	sqliteStore "github.com/kiosk404/brightchat/internal/brightctl/service/chat/store/sqlite"
	"github.com/kiosk404/brightchat/pkg/logger"
)

const (
	StoreInMemory = "inmemory"
	StoreBoltDB   = "boltdb"
	StoreSQLite   = "sqlite"
)

// Config holds the configuration for the Chat module.
// Follows K8S-style: Config → Complete() → New(ctx, deps).
type Config struct {
	// StoreType selects the persistence backend: "inmemory", "boltdb" or "sqlite".
	// Default: "inmemory".
	StoreType string `json:"store_type,omitempty"`

	// StorePath is the database file for the boltdb and sqlite backends.
	// Default: "data/brightchat.db".
	StorePath string `json:"store_path,omitempty"`

	// MaxExecutions bounds the execution records kept for the details view.
	// Default: 256.
	MaxExecutions int `json:"max_executions,omitempty"`
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.StoreType == "" {
		c.StoreType = StoreInMemory
	}
	if c.StorePath == "" {
		c.StorePath = "data/brightchat.db"
	}
	if c.MaxExecutions <= 0 {
		c.MaxExecutions = 256
	}
	return CompletedConfig{c}
}

// Dependencies holds the external modules required by the Chat module.
type Dependencies struct {
	Agents service.AgentStreamer
}

// Module is the top-level Chat module.
type Module struct {
	Service service.ChatService
	closer  io.Closer // nil for the in-memory store
}

// Close releases the store handle.
func (m *Module) Close() error {
	if m.closer != nil {
		return m.closer.Close()
	}
	return nil
}

// New creates the Chat module from a completed config.
func (c CompletedConfig) New(_ context.Context, deps Dependencies) (*Module, error) {
	if deps.Agents == nil {
		return nil, fmt.Errorf("agent streamer dependency is required")
	}

	messages, closer, err := c.openStore()
	if err != nil {
		return nil, err
	}

	svc := service.NewChatService(messages, deps.Agents, service.Options{MaxExecutions: c.MaxExecutions})
	logger.InfoX(pkg.ModuleName, "[Chat] module initialized (store=%s)", c.StoreType)

	return &Module{Service: svc, closer: closer}, nil
}

// OpenRepository opens only the message store, for commands that never run a turn.
func (c CompletedConfig) OpenRepository() (repo.MessageRepository, io.Closer, error) {
	return c.openStore()
}

func (c CompletedConfig) openStore() (repo.MessageRepository, io.Closer, error) {
	switch c.StoreType {
	case StoreBoltDB:
		db, err := boltdbStore.Open(c.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open boltdb at %s: %w", c.StorePath, err)
		}
		logger.DebugX(pkg.ModuleName, "[Chat] using BoltDB store at %s", c.StorePath)
		return boltdbStore.NewMessageStore(db), db, nil
	case StoreSQLite:
		db, err := sqliteStore.Open(c.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite at %s: %w", c.StorePath, err)
		}
		logger.DebugX(pkg.ModuleName, "[Chat] using SQLite store at %s", c.StorePath)
		return sqliteStore.NewMessageStore(db), db, nil
	case StoreInMemory:
		logger.DebugX(pkg.ModuleName, "[Chat] using in-memory store")
		return inmemory.NewMessageStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type %q", c.StoreType)
	}
}

package util

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/kiosk404/brightchat/internal/brightctl/client"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/runner"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/tools"
	"github.com/kiosk404/brightchat/internal/brightctl/service/chat"
	"github.com/kiosk404/brightchat/internal/brightctl/service/chat/domain/repo"
	"github.com/kiosk404/brightchat/pkg/logger"
)

// Factory provides the shared dependencies of brightctl commands. Commands
// only ever talk to the Factory, so tests can hand them a fake one.
type Factory interface {
	// Options returns the completed global options.
	Options() *Options
	// Runner returns the stream runner configured from the client options.
	Runner() *runner.Runner
	// Client returns the agent API client.
	Client() *client.Client
	// ChatModule opens the message store and wires the chat service.
	ChatModule(ctx context.Context) (*chat.Module, error)
	// MessageRepository opens only the message store.
	MessageRepository() (repo.MessageRepository, io.Closer, error)
	// ToolRegistry returns the built-in tools extended by a tools file and MCP servers.
	ToolRegistry(ctx context.Context, toolsFile, mcpConfig string) (*tools.Registry, error)
}

type defaultFactory struct {
	opts *Options

	once   sync.Once
	runner *runner.Runner
	client *client.Client
}

// NewDefaultFactory creates a Factory over opts. opts is read lazily, after
// flags and config have been applied.
func NewDefaultFactory(opts *Options) Factory {
	return &defaultFactory{opts: opts}
}

func (f *defaultFactory) Options() *Options {
	return f.opts
}

func (f *defaultFactory) init() {
	f.once.Do(func() {
		co := f.opts.ClientOptions
		f.runner = runner.New(runner.Config{
			ChunkSize:   co.ChunkSize,
			IdleTimeout: co.IdleTimeout,
		})
		f.client = client.New(client.Config{
			ServerAddr: co.ServerAddr,
			Token:      co.Token,
			Timeout:    co.Timeout,
			Runner:     f.runner,
		})
	})
}

func (f *defaultFactory) Runner() *runner.Runner {
	f.init()
	return f.runner
}

func (f *defaultFactory) Client() *client.Client {
	f.init()
	return f.client
}

func (f *defaultFactory) chatConfig() chat.CompletedConfig {
	cfg := &chat.Config{
		StoreType: f.opts.StoreOptions.Type,
		StorePath: f.opts.StoreOptions.Path,
	}
	return cfg.Complete()
}

func (f *defaultFactory) ChatModule(ctx context.Context) (*chat.Module, error) {
	return f.chatConfig().New(ctx, chat.Dependencies{Agents: f.Client()})
}

func (f *defaultFactory) MessageRepository() (repo.MessageRepository, io.Closer, error) {
	return f.chatConfig().OpenRepository()
}

func (f *defaultFactory) ToolRegistry(ctx context.Context, toolsFile, mcpConfig string) (*tools.Registry, error) {
	reg := tools.NewRegistry()
	if toolsFile != "" {
		n, err := reg.ImportToolsFile(toolsFile)
		if err != nil {
			return nil, err
		}
		logger.Debug("[Factory] imported %d tools from %s", n, toolsFile)
	}
	if mcpConfig != "" {
		cfg, err := tools.LoadMCPConfig(mcpConfig)
		if err != nil {
			return nil, err
		}
		if errs := cfg.Validate(); len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		// Unreachable servers only cost display names; built-ins still work.
		if n, err := reg.Discover(ctx, cfg); err != nil {
			logger.Warn("[Factory] mcp discovery: %v", err)
		} else {
			logger.Debug("[Factory] discovered %d MCP tools", n)
		}
	}
	return reg, nil
}

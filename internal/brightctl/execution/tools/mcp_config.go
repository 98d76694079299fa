package tools

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/kiosk404/brightchat/pkg/utils/json"
)

const (
	transportStdio = "stdio"
	transportSSE   = "sse"
)

// MCPConfig is an mcp.json file as written for Claude Desktop. brightctl
// only reads it to learn tool names, it never calls the tools.
//
//	{
//	  "mcpServers": {
//	    "filesystem": {"command": "npx", "args": ["-y", "@modelcontextprotocol/server-filesystem", "/tmp"]},
//	    "search":     {"transport": "sse", "url": "http://localhost:8080/sse"}
//	  }
//	}
type MCPConfig struct {
	MCPServers map[string]*MCPServerConfig `json:"mcpServers"`
}

// MCPServerConfig is one entry of mcpServers.
type MCPServerConfig struct {
	// Transport is stdio when empty.
	Transport string `json:"transport,omitempty"`

	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
	Env     []string `json:"env,omitempty"`

	URL string `json:"url,omitempty"`

	// ToolFilter keeps only the named tools.
	ToolFilter []string `json:"toolFilter,omitempty"`
}

// LoadMCPConfig reads path. A file that does not exist yields an empty config.
func LoadMCPConfig(path string) (*MCPConfig, error) {
	cfg := &MCPConfig{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read mcp config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse mcp config %s: %w", path, err)
		}
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]*MCPServerConfig)
	}
	return cfg, nil
}

// Validate defaults the transport of every server and returns one error per
// unusable server, in server name order.
func (c *MCPConfig) Validate() []error {
	names := make([]string, 0, len(c.MCPServers))
	for name := range c.MCPServers {
		names = append(names, name)
	}
	slices.Sort(names)

	var errs []error
	for _, name := range names {
		if err := c.MCPServers[name].validate(); err != nil {
			errs = append(errs, fmt.Errorf("mcpServers.%s: %w", name, err))
		}
	}
	return errs
}

func (s *MCPServerConfig) validate() error {
	if s.Transport == "" {
		s.Transport = transportStdio
	}
	switch s.Transport {
	case transportStdio:
		if s.Command == "" {
			return errors.New("stdio transport needs a command")
		}
	case transportSSE:
		if s.URL == "" {
			return errors.New("sse transport needs a url")
		}
	default:
		return fmt.Errorf("unsupported transport %q", s.Transport)
	}
	return nil
}

package tools

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
	"github.com/kiosk404/brightchat/internal/brightctl/execution/pkg"
	"github.com/kiosk404/brightchat/pkg/logger"
	"github.com/kiosk404/brightchat/pkg/utils/json"
	"github.com/kiosk404/brightchat/pkg/version"
)

// RegisterMCPTools adds one descriptor per MCP tool. server, when non-empty,
// is appended to the description so the details view shows where it came from.
func (r *Registry) RegisterMCPTools(server string, list []mcp.Tool) int {
	n := 0
	for _, t := range list {
		if t.Name == "" {
			continue
		}
		desc := t.Description
		if server != "" {
			desc = fmt.Sprintf("%s (mcp: %s)", desc, server)
		}
		r.Register(entity.ToolDescriptor{
			Name:        t.Name,
			DisplayName: t.Annotations.Title,
			Category:    entity.ToolCategoryMCP,
			Icon:        "🔌",
			Description: desc,
		})
		n++
	}
	return n
}

// ImportToolsFile registers the tools of a saved tools/list response. The file
// holds either a ListToolsResult object ({"tools": [...]}) or a bare array.
func (r *Registry) ImportToolsFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read tools file %q: %w", path, err)
	}

	var list []mcp.Tool
	var result mcp.ListToolsResult
	if err := json.Unmarshal(data, &result); err == nil && result.Tools != nil {
		list = result.Tools
	} else if err := json.Unmarshal(data, &list); err != nil {
		return 0, fmt.Errorf("parse tools file %q: %w", path, err)
	}

	n := r.RegisterMCPTools("", list)
	logger.InfoX(pkg.ModuleName, "[Tools] imported %d tools from %s", n, path)
	return n, nil
}

// Discover connects to every configured MCP server concurrently, lists its
// tools and registers them. A server that fails is logged and skipped; an
// error is returned only when every server failed.
func (r *Registry) Discover(ctx context.Context, cfg *MCPConfig) (int, error) {
	if cfg == nil || len(cfg.MCPServers) == 0 {
		return 0, nil
	}

	names := make([]string, 0, len(cfg.MCPServers))
	for name := range cfg.MCPServers {
		names = append(names, name)
	}
	slices.Sort(names)

	type found struct {
		server string
		tools  []mcp.Tool
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []found
		failed  int
	)
	for _, name := range names {
		wg.Add(1)
		go func(name string, srv *MCPServerConfig) {
			defer wg.Done()
			list, err := listServerTools(ctx, srv)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				logger.WarnX(pkg.ModuleName, "[Tools] mcp server %q: %v", name, err)
				return
			}
			results = append(results, found{server: name, tools: filterTools(list, srv.ToolFilter)})
		}(name, cfg.MCPServers[name])
	}
	wg.Wait()

	if failed == len(names) {
		return 0, fmt.Errorf("all %d mcp servers failed", failed)
	}

	slices.SortFunc(results, func(a, b found) int {
		return strings.Compare(a.server, b.server)
	})

	total := 0
	for _, f := range results {
		total += r.RegisterMCPTools(f.server, f.tools)
	}
	logger.InfoX(pkg.ModuleName, "[Tools] discovered %d tools from %d/%d mcp servers", total, len(names)-failed, len(names))
	return total, nil
}

func listServerTools(ctx context.Context, srv *MCPServerConfig) ([]mcp.Tool, error) {
	cli, err := newMCPClient(ctx, srv)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cli.Close(); err != nil {
			logger.DebugX(pkg.ModuleName, "[Tools] close mcp client: %v", err)
		}
	}()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "brightctl",
		Version: version.Get().GitVersion,
	}
	if _, err := cli.Initialize(ctx, initReq); err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}

	res, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return res.Tools, nil
}

func newMCPClient(ctx context.Context, srv *MCPServerConfig) (*client.Client, error) {
	switch srv.Transport {
	case "", transportStdio:
		return client.NewStdioMCPClient(srv.Command, srv.Env, srv.Args...)
	case transportSSE:
		cli, err := client.NewSSEMCPClient(srv.URL)
		if err != nil {
			return nil, err
		}
		if err := cli.Start(ctx); err != nil {
			return nil, fmt.Errorf("start sse transport: %w", err)
		}
		return cli, nil
	default:
		return nil, fmt.Errorf("unknown transport: %s", srv.Transport)
	}
}

func filterTools(list []mcp.Tool, allow []string) []mcp.Tool {
	if len(allow) == 0 {
		return list
	}
	out := make([]mcp.Tool, 0, len(list))
	for _, t := range list {
		if slices.Contains(allow, t.Name) {
			out = append(out, t)
		}
	}
	return out
}

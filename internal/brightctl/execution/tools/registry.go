// Package tools maps tool names reported in tool_call events to display metadata.
package tools

import (
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/kiosk404/brightchat/internal/brightctl/execution/entity"
)

const genericIcon = "🔧"

var builtins = []entity.ToolDescriptor{
	{Name: "calculator", DisplayName: "Calculator", Category: entity.ToolCategoryCompute, Icon: "🧮", Description: "Evaluates arithmetic expressions"},
	{Name: "web_search", DisplayName: "Web Search", Category: entity.ToolCategorySearch, Icon: "🔍", Description: "Searches the web"},
	{Name: "knowledge_search", DisplayName: "Knowledge Search", Category: entity.ToolCategoryKnowledge, Icon: "📚", Description: "Searches the selected knowledge bases"},
	{Name: "code_interpreter", DisplayName: "Code Interpreter", Category: entity.ToolCategoryCompute, Icon: "💻", Description: "Runs code in a sandbox"},
	{Name: "file_reader", DisplayName: "File Reader", Category: entity.ToolCategoryFile, Icon: "📄", Description: "Reads uploaded files"},
	{Name: "http_request", DisplayName: "HTTP Request", Category: entity.ToolCategoryNetwork, Icon: "🌐", Description: "Calls an HTTP endpoint"},
}

// Registry is a name-indexed set of tool descriptors. Lookups never fail:
// an unknown name gets a generic descriptor derived from the name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]entity.ToolDescriptor
}

// NewRegistry returns a registry preloaded with the built-in tools.
func NewRegistry() *Registry {
	r := &Registry{tools: make(map[string]entity.ToolDescriptor, len(builtins))}
	for _, d := range builtins {
		r.tools[d.Name] = d
	}
	return r
}

// Register adds or replaces a descriptor. Missing display fields are filled in.
func (r *Registry) Register(d entity.ToolDescriptor) {
	if d.Name == "" {
		return
	}
	if d.DisplayName == "" {
		d.DisplayName = humanize(d.Name)
	}
	if d.Category == "" {
		d.Category = entity.ToolCategoryGeneric
	}
	if d.Icon == "" {
		d.Icon = genericIcon
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[d.Name] = d
}

// Lookup returns the descriptor for name, or a generic one.
func (r *Registry) Lookup(name string) entity.ToolDescriptor {
	r.mu.RLock()
	d, ok := r.tools[name]
	r.mu.RUnlock()
	if ok {
		return d
	}
	return entity.ToolDescriptor{
		Name:        name,
		DisplayName: humanize(name),
		Category:    entity.ToolCategoryGeneric,
		Icon:        genericIcon,
	}
}

// Known reports whether name has a registered descriptor.
func (r *Registry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// List returns all registered descriptors sorted by name.
func (r *Registry) List() []entity.ToolDescriptor {
	r.mu.RLock()
	out := make([]entity.ToolDescriptor, 0, len(r.tools))
	for _, d := range r.tools {
		out = append(out, d)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b entity.ToolDescriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// humanize turns "web_search" or "fetch-url" into "Web Search" / "Fetch Url".
func humanize(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})
	if len(fields) == 0 {
		return "Tool"
	}
	for i, f := range fields {
		r, size := utf8.DecodeRuneInString(f)
		fields[i] = string(unicode.ToUpper(r)) + f[size:]
	}
	return strings.Join(fields, " ")
}

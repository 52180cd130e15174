package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/infoboard/internal/config"
	"github.com/hpungsan/infoboard/internal/store"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"server_list": {
		def:     serverListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleServerList },
	},
	"section_list": {
		def:     sectionListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSectionList },
	},
	"section_show": {
		def:     sectionShowToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSectionShow },
	},
	"section_render": {
		def:     sectionRenderToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSectionRender },
	},
	"section_command": {
		def:     sectionCommandToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSectionCommand },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the section tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(mgr *store.Manager, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"infoboard",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(mgr)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(mgr *store.Manager, cfg *config.Config, version string) error {
	s := NewServer(mgr, cfg, version)
	return server.ServeStdio(s)
}

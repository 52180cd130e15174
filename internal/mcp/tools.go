package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var serverListToolDef = mcp.NewTool("server_list",
	mcp.WithDescription("List every known server with its section count and configured channels."),
)

var sectionListToolDef = mcp.NewTool("section_list",
	mcp.WithDescription("List a server's sections in display order."),
	mcp.WithString("server_id",
		mcp.Required(),
		mcp.Description("Server to inspect."),
	),
)

var sectionShowToolDef = mcp.NewTool("section_show",
	mcp.WithDescription("Show one section's structural payload and the command transcript that would recreate it."),
	mcp.WithString("server_id",
		mcp.Required(),
		mcp.Description("Server the section belongs to."),
	),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Section name, matched case-insensitively."),
	),
)

var sectionRenderToolDef = mcp.NewTool("section_render",
	mcp.WithDescription("Render one section into the message paragraphs publishing would send. URL sections fetch their remote document."),
	mcp.WithString("server_id",
		mcp.Required(),
		mcp.Description("Server the section belongs to."),
	),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Section name, matched case-insensitively."),
	),
)

var sectionCommandToolDef = mcp.NewTool("section_command",
	mcp.WithDescription("Run a section-scoped edit command (add, remove, swap, header, footer, ...) and return its user-facing reply. Changes persist immediately."),
	mcp.WithString("server_id",
		mcp.Required(),
		mcp.Description("Server the section belongs to."),
	),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Section name, matched case-insensitively."),
	),
	mcp.WithString("command",
		mcp.Required(),
		mcp.Description("Sub-command to run, e.g. add."),
	),
	mcp.WithArray("args",
		mcp.Description("Arguments for the sub-command, already split."),
		mcp.Items(map[string]any{"type": "string"}),
	),
)

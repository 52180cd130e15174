// Package mcp exposes the section store to MCP clients as a small set
// of inspection and edit tools over stdio.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/infoboard/internal/errors"
	"github.com/hpungsan/infoboard/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	mgr *store.Manager
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(mgr *store.Manager) *Handlers {
	return &Handlers{mgr: mgr}
}

// Request types for each tool

// SectionListRequest represents the arguments for section_list.
type SectionListRequest struct {
	ServerID string `json:"server_id"`
}

// SectionShowRequest represents the arguments for section_show and
// section_render.
type SectionShowRequest struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
}

// SectionCommandRequest represents the arguments for section_command.
type SectionCommandRequest struct {
	ServerID string   `json:"server_id"`
	Name     string   `json:"name"`
	Command  string   `json:"command"`
	Args     []string `json:"args,omitempty"`
}

// Handler implementations

// HandleServerList handles the server_list tool call.
func (h *Handlers) HandleServerList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	servers := make([]map[string]any, 0)
	for _, id := range h.mgr.ServerIDs() {
		st, ok := h.mgr.Get(id)
		if !ok {
			continue
		}
		servers = append(servers, map[string]any{
			"id":             id,
			"section_count":  len(st.Sections()),
			"command_prefix": st.CommandPrefix(),
			"info_channel":   st.InfoChannel(),
			"notes_channel":  st.NotesChannel(),
		})
	}

	return successResult(map[string]any{"servers": servers})
}

// HandleSectionList handles the section_list tool call.
func (h *Handlers) HandleSectionList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SectionListRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	st, ok := h.mgr.Get(input.ServerID)
	if !ok {
		return errorResult(errors.NewNotFound(input.ServerID)), nil
	}

	entries := st.Sections()
	sections := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		sections = append(sections, map[string]any{
			"name": entry.Name,
			"type": entry.Section.Type(),
		})
	}

	return successResult(map[string]any{"sections": sections})
}

// HandleSectionShow handles the section_show tool call.
func (h *Handlers) HandleSectionShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SectionShowRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	st, ok := h.mgr.Get(input.ServerID)
	if !ok {
		return errorResult(errors.NewNotFound(input.ServerID)), nil
	}

	sec, err := st.GetSection(input.Name)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"name":       sec.Name(),
		"type":       sec.Type(),
		"payload":    sec.ToDict(),
		"transcript": sec.Show(),
	})
}

// HandleSectionRender handles the section_render tool call.
func (h *Handlers) HandleSectionRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SectionShowRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	st, ok := h.mgr.Get(input.ServerID)
	if !ok {
		return errorResult(errors.NewNotFound(input.ServerID)), nil
	}

	sec, err := st.GetSection(input.Name)
	if err != nil {
		return errorResult(err), nil
	}

	paragraphs, err := sec.Render(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"name":       sec.Name(),
		"header":     sec.Header(),
		"paragraphs": paragraphs,
		"footer":     sec.Footer(),
	})
}

// HandleSectionCommand handles the section_command tool call.
func (h *Handlers) HandleSectionCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SectionCommandRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	if input.Command == "" {
		return errorResult(errors.NewValidation("command must not be empty")), nil
	}

	st, ok := h.mgr.Get(input.ServerID)
	if !ok {
		return errorResult(errors.NewNotFound(input.ServerID)), nil
	}

	sec, err := st.GetSection(input.Name)
	if err != nil {
		return errorResult(err), nil
	}

	cc := h.mgr.CommandContext(ctx, input.ServerID, "mcp", "mcp")
	reply := sec.ProcessCommand(ctx, input.Command, input.Args, "", cc)

	return successResult(map[string]any{"reply": reply})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if bErr, ok := err.(*errors.BoardError); ok {
		errorObj := map[string]any{
			"code":    bErr.Code,
			"message": bErr.Message,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if bErr.Code != errors.ErrInternal && bErr.Details != nil {
			errorObj["details"] = bErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/infoboard/internal/config"
	"github.com/hpungsan/infoboard/internal/errors"
	"github.com/hpungsan/infoboard/internal/repo"
	"github.com/hpungsan/infoboard/internal/section"
	"github.com/hpungsan/infoboard/internal/store"
)

// testSetup creates a manager over a temporary database with one
// seeded server.
func testSetup(t *testing.T) (*store.Manager, *config.Config) {
	t.Helper()

	database, err := repo.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	mgr := store.NewManager(repo.New(database))
	if _, err := mgr.Ensure(context.Background(), "srv-1"); err != nil {
		t.Fatalf("failed to seed server: %v", err)
	}

	return mgr, config.DefaultConfig()
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// parseResult unmarshals a successful tool result's JSON payload.
func parseResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	if result.IsError {
		t.Fatalf("unexpected error result: %s", extractErrorMessage(result))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("content is not TextContent")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal result payload: %v", err)
	}
	return payload
}

func TestHandleServerList(t *testing.T) {
	mgr, _ := testSetup(t)
	h := NewHandlers(mgr)

	result, err := h.HandleServerList(context.Background(), makeRequest(nil))
	if err != nil {
		t.Fatalf("HandleServerList failed: %v", err)
	}

	payload := parseResult(t, result)
	servers, _ := payload["servers"].([]any)
	if len(servers) != 1 {
		t.Fatalf("servers = %v", servers)
	}
	first, _ := servers[0].(map[string]any)
	if first["id"] != "srv-1" {
		t.Errorf("id = %v", first["id"])
	}
	if first["section_count"] != float64(1) {
		t.Errorf("section_count = %v", first["section_count"])
	}
}

func TestHandleSectionList(t *testing.T) {
	mgr, _ := testSetup(t)
	h := NewHandlers(mgr)
	ctx := context.Background()

	if _, err := mgr.CreateSection(ctx, "srv-1", section.TypeFAQ, "Questions"); err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	result, err := h.HandleSectionList(ctx, makeRequest(map[string]any{"server_id": "srv-1"}))
	if err != nil {
		t.Fatalf("HandleSectionList failed: %v", err)
	}

	payload := parseResult(t, result)
	sections, _ := payload["sections"].([]any)
	if len(sections) != 2 {
		t.Fatalf("sections = %v", sections)
	}
	last, _ := sections[1].(map[string]any)
	if last["name"] != "Questions" || last["type"] != "faq" {
		t.Errorf("last section = %v", last)
	}
}

func TestHandleSectionList_UnknownServer(t *testing.T) {
	mgr, _ := testSetup(t)
	h := NewHandlers(mgr)

	result, err := h.HandleSectionList(context.Background(), makeRequest(map[string]any{"server_id": "missing"}))
	if err != nil {
		t.Fatalf("HandleSectionList failed: %v", err)
	}
	assertErrorCode(t, result, string(errors.ErrNotFound))
}

func TestHandleSectionShow(t *testing.T) {
	mgr, _ := testSetup(t)
	h := NewHandlers(mgr)
	ctx := context.Background()

	result, err := h.HandleSectionShow(ctx, makeRequest(map[string]any{
		"server_id": "srv-1",
		"name":      "welcome message", // case-insensitive
	}))
	if err != nil {
		t.Fatalf("HandleSectionShow failed: %v", err)
	}

	payload := parseResult(t, result)
	if payload["name"] != "Welcome Message" || payload["type"] != "text" {
		t.Errorf("payload = %v", payload)
	}
	if _, ok := payload["payload"].(map[string]any); !ok {
		t.Error("structural payload missing")
	}
	transcript, _ := payload["transcript"].([]any)
	if len(transcript) == 0 {
		t.Error("transcript empty")
	}
}

func TestHandleSectionShow_UnknownSection(t *testing.T) {
	mgr, _ := testSetup(t)
	h := NewHandlers(mgr)

	result, err := h.HandleSectionShow(context.Background(), makeRequest(map[string]any{
		"server_id": "srv-1",
		"name":      "Nope",
	}))
	if err != nil {
		t.Fatalf("HandleSectionShow failed: %v", err)
	}
	assertErrorCode(t, result, string(errors.ErrUnknownSection))
}

func TestHandleSectionRender(t *testing.T) {
	mgr, _ := testSetup(t)
	h := NewHandlers(mgr)
	ctx := context.Background()

	result, err := h.HandleSectionRender(ctx, makeRequest(map[string]any{
		"server_id": "srv-1",
		"name":      "Welcome Message",
	}))
	if err != nil {
		t.Fatalf("HandleSectionRender failed: %v", err)
	}

	payload := parseResult(t, result)
	paragraphs, _ := payload["paragraphs"].([]any)
	if len(paragraphs) == 0 {
		t.Fatal("no paragraphs rendered")
	}
}

func TestHandleSectionCommand(t *testing.T) {
	mgr, _ := testSetup(t)
	h := NewHandlers(mgr)
	ctx := context.Background()

	if _, err := mgr.CreateSection(ctx, "srv-1", section.TypeText, "Rules"); err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	result, err := h.HandleSectionCommand(ctx, makeRequest(map[string]any{
		"server_id": "srv-1",
		"name":      "Rules",
		"command":   "add",
		"args":      []any{"Be nice"},
	}))
	if err != nil {
		t.Fatalf("HandleSectionCommand failed: %v", err)
	}

	payload := parseResult(t, result)
	if payload["reply"] != "Markdown block added" {
		t.Errorf("reply = %v", payload["reply"])
	}

	// The edit persisted
	st, _ := mgr.Get("srv-1")
	sec, err := st.GetSection("Rules")
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	paragraphs, err := sec.Render(ctx)
	if err != nil || len(paragraphs) != 1 || paragraphs[0] != "Be nice" {
		t.Errorf("render = %v, %v", paragraphs, err)
	}
}

func TestHandleSectionCommand_MissingCommand(t *testing.T) {
	mgr, _ := testSetup(t)
	h := NewHandlers(mgr)

	result, err := h.HandleSectionCommand(context.Background(), makeRequest(map[string]any{
		"server_id": "srv-1",
		"name":      "Welcome Message",
	}))
	if err != nil {
		t.Fatalf("HandleSectionCommand failed: %v", err)
	}
	assertErrorCode(t, result, string(errors.ErrValidationFailed))
}

func TestServerRegistration(t *testing.T) {
	mgr, cfg := testSetup(t)

	s := NewServer(mgr, cfg, "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	mgr, cfg := testSetup(t)
	cfg.DisabledTools = []string{"section_command"}

	s := NewServer(mgr, cfg, "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"section_list", "bogus_tool"})
	if len(unknown) != 1 || unknown[0] != "bogus_tool" {
		t.Errorf("unknown = %v", unknown)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != len(toolRegistry) {
		t.Errorf("got %d names, want %d", len(names), len(toolRegistry))
	}
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			t.Errorf("duplicate name %q", name)
		}
		seen[name] = true
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	err := errors.NewInternal(fmt.Errorf("sql: something leaked"))
	err.Details = map[string]any{"path": "/secret"}

	result := errorResult(err)
	if !result.IsError {
		t.Fatal("result not marked as error")
	}

	text := extractErrorMessage(result)
	var payload map[string]any
	if jsonErr := json.Unmarshal([]byte(text), &payload); jsonErr != nil {
		t.Fatalf("unmarshal: %v", jsonErr)
	}
	errorObj, _ := payload["error"].(map[string]any)
	if _, ok := errorObj["details"]; ok {
		t.Error("internal error leaked details")
	}
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected error result")
		return
	}
	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}

	if code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}

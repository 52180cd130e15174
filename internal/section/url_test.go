package section

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// stubFetcher returns canned bodies or errors per URL.
type stubFetcher struct {
	bodies map[string]string
	err    error
	calls  int
}

func (f *stubFetcher) Get(_ context.Context, url string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	body, ok := f.bodies[url]
	if !ok {
		return "", fmt.Errorf("unexpected status: 404 Not Found")
	}
	return body, nil
}

func TestURL_SetFetchesBeforeCommit(t *testing.T) {
	s := NewURL("Remote", "")
	s.SetFetcher(&stubFetcher{bodies: map[string]string{
		"https://example.com/rules.txt": "para one\n\npara two",
	}})
	notified := 0
	cc := notifyCounter(&notified)

	reply := s.ProcessCommand(context.Background(), "set",
		[]string{"https://example.com/rules.txt"}, "", cc)
	if !strings.Contains(reply, "URL set") {
		t.Fatalf("set reply = %q", reply)
	}
	if s.URL() != "https://example.com/rules.txt" {
		t.Errorf("URL = %q", s.URL())
	}
	if notified != 1 {
		t.Errorf("notify count = %d, want 1", notified)
	}
}

func TestURL_SetFailureLeavesStateUntouched(t *testing.T) {
	s := NewURL("Remote", "https://example.com/old.txt")
	s.SetFetcher(&stubFetcher{err: fmt.Errorf("connection refused")})
	notified := 0

	reply := s.ProcessCommand(context.Background(), "set",
		[]string{"https://example.com/new.txt"}, "", notifyCounter(&notified))
	if !strings.Contains(reply, "Failed to retrieve URL") {
		t.Fatalf("set reply = %q", reply)
	}
	if s.URL() != "https://example.com/old.txt" {
		t.Errorf("URL changed on failed set: %q", s.URL())
	}
	if notified != 0 {
		t.Error("failed set must not notify")
	}
}

func TestURL_TrimDecoration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"`https://example.com`", "https://example.com"},
		{"<https://example.com>", "https://example.com"},
		{"`<https://example.com>`", "https://example.com"},
		{"<https://example.com", "<https://example.com"},
		{"https://example.com`", "https://example.com`"},
		{"https://example.com", "https://example.com"},
	}
	for _, tt := range tests {
		if got := trimURLDecoration(tt.in); got != tt.want {
			t.Errorf("trimURLDecoration(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestURL_RenderUnset(t *testing.T) {
	s := NewURL("Remote", "")

	paragraphs, err := s.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(paragraphs) != 1 || !strings.Contains(paragraphs[0], "URL has not been set") {
		t.Errorf("paragraphs = %v", paragraphs)
	}
}

func TestURL_RenderFetchFailure(t *testing.T) {
	s := NewURL("Remote", "https://example.com/gone.txt")
	s.SetFetcher(&stubFetcher{err: fmt.Errorf("status 503")})

	paragraphs, err := s.Render(context.Background())
	if err != nil {
		t.Fatalf("Render must not fail the caller on fetch errors: %v", err)
	}
	if len(paragraphs) != 1 || !strings.Contains(paragraphs[0], "ERROR") {
		t.Errorf("paragraphs = %v", paragraphs)
	}
}

func TestURL_RenderFetchesEachTime(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{
		"https://example.com/rules.txt": "content",
	}}
	s := NewURL("Remote", "https://example.com/rules.txt")
	s.SetFetcher(fetcher)

	s.Render(context.Background())
	s.Render(context.Background())
	if fetcher.calls != 2 {
		t.Errorf("fetch calls = %d, want 2 (no single-flight cache)", fetcher.calls)
	}
}

func TestURL_RenderSplitsLongBody(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{
		"https://example.com/big.txt": strings.Repeat("x", 5000),
	}}
	s := NewURL("Remote", "https://example.com/big.txt")
	s.SetFetcher(fetcher)

	paragraphs, err := s.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(paragraphs) < 3 {
		t.Fatalf("got %d paragraphs, want >= 3", len(paragraphs))
	}
	for i, p := range paragraphs {
		if CountChars(p) >= MessageLimit {
			t.Errorf("paragraph %d length = %d, want < %d", i, CountChars(p), MessageLimit)
		}
	}
}

func TestURL_DictRoundTrip(t *testing.T) {
	s := NewURL("Remote", "https://example.com/rules.txt")
	s.SetHeader("head")

	restored := URLFromDict("Remote", s.ToDict()).(*URL)
	if restored.URL() != "https://example.com/rules.txt" {
		t.Errorf("URL = %q", restored.URL())
	}
	if restored.Header() != "head" {
		t.Errorf("header = %q", restored.Header())
	}
}

package section

import (
	"context"
	"strings"
	"testing"
)

// notifyCounter builds a command context whose notify hook counts calls.
func notifyCounter(count *int) Context {
	return Context{
		ServerID: "srv-1",
		Notify:   func() { *count++ },
	}
}

func TestText_AddRenderOrder(t *testing.T) {
	s := NewText("Welcome", nil)
	notified := 0
	cc := notifyCounter(&notified)

	for _, block := range []string{"one", "two", "three"} {
		reply := s.ProcessCommand(context.Background(), "add", []string{block}, block, cc)
		if reply != "Markdown block added" {
			t.Fatalf("add reply = %q", reply)
		}
	}
	if notified != 3 {
		t.Errorf("notify count = %d, want 3", notified)
	}

	paragraphs, err := s.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	want := []string{"one", "two", "three"}
	if len(paragraphs) != 3 {
		t.Fatalf("got %d paragraphs, want 3", len(paragraphs))
	}
	for i := range want {
		if paragraphs[i] != want[i] {
			t.Errorf("paragraph %d = %q, want %q", i, paragraphs[i], want[i])
		}
	}
}

func TestText_AddTooLong(t *testing.T) {
	s := NewText("Welcome", nil)
	notified := 0

	reply := s.ProcessCommand(context.Background(), "add",
		[]string{strings.Repeat("x", 2000)}, "", notifyCounter(&notified))
	if !strings.Contains(reply, "2000") {
		t.Errorf("expected length rejection, got %q", reply)
	}
	if notified != 0 {
		t.Error("rejected command must not notify")
	}
}

func TestText_RemoveUnknownIndex(t *testing.T) {
	s := NewText("Welcome", []string{"only"})
	notified := 0

	for _, arg := range []string{"0", "2", "-1", "abc"} {
		reply := s.ProcessCommand(context.Background(), "remove", []string{arg}, arg, notifyCounter(&notified))
		if !strings.Contains(reply, "Unknown index") {
			t.Errorf("remove %q reply = %q, want unknown index", arg, reply)
		}
	}
	if notified != 0 {
		t.Error("failed removes must not notify")
	}
}

func TestText_Swap(t *testing.T) {
	s := NewText("Welcome", []string{"a", "b", "c"})
	notified := 0

	reply := s.ProcessCommand(context.Background(), "swap", []string{"1", "3"}, "", notifyCounter(&notified))
	if !strings.Contains(reply, "swapped") {
		t.Fatalf("swap reply = %q", reply)
	}

	paragraphs, _ := s.Render(context.Background())
	if paragraphs[0] != "c" || paragraphs[2] != "a" {
		t.Errorf("after swap got %v, want [c b a]", paragraphs)
	}
	if notified != 1 {
		t.Errorf("notify count = %d, want 1", notified)
	}
}

func TestText_HeaderFooter(t *testing.T) {
	s := NewText("Welcome", nil)
	notified := 0
	cc := notifyCounter(&notified)

	s.ProcessCommand(context.Background(), "header", []string{"hello"}, "", cc)
	s.ProcessCommand(context.Background(), "footer", []string{"bye"}, "", cc)

	if s.Header() != "hello" || s.Footer() != "bye" {
		t.Errorf("header/footer = %q/%q", s.Header(), s.Footer())
	}
	if notified != 2 {
		t.Errorf("notify count = %d, want 2", notified)
	}

	reply := s.ProcessCommand(context.Background(), "header", []string{""}, "", cc)
	if reply != "Header cleared" {
		t.Errorf("clear reply = %q", reply)
	}
	if s.Header() != "" {
		t.Error("header not cleared")
	}
}

func TestText_DictRoundTrip(t *testing.T) {
	s := NewText("Welcome", []string{"one", "two"})
	s.SetHeader("head")
	s.SetFooter("foot")

	restored := TextFromDict("Welcome", s.ToDict()).(*Text)
	if restored.Header() != "head" || restored.Footer() != "foot" {
		t.Errorf("header/footer = %q/%q", restored.Header(), restored.Footer())
	}

	paragraphs, _ := restored.Render(context.Background())
	if len(paragraphs) != 2 || paragraphs[0] != "one" || paragraphs[1] != "two" {
		t.Errorf("restored blocks = %v", paragraphs)
	}
}

func TestText_ShowReplay(t *testing.T) {
	s := NewText("Rules", []string{"be nice", "no spam"})
	s.SetHeader("Read these first")

	commands := s.Show()
	if len(commands) != 3 {
		t.Fatalf("got %d commands, want 3", len(commands))
	}
	if !strings.Contains(commands[0], `add "be nice"`) {
		t.Errorf("command 0 = %q", commands[0])
	}
	if !strings.Contains(commands[2], `header "Read these first"`) {
		t.Errorf("command 2 = %q", commands[2])
	}
}

func TestText_UnknownCommand(t *testing.T) {
	s := NewText("Welcome", nil)

	reply := s.ProcessCommand(context.Background(), "explode", nil, "", Context{})
	if !strings.Contains(reply, "Unknown command") {
		t.Errorf("reply = %q", reply)
	}
}

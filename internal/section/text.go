package section

import (
	"context"
	"fmt"
	"strconv"
)

// Text is a section holding an ordered list of free-form markdown
// blocks, each published as its own message.
type Text struct {
	base
	blocks []string
}

// NewText creates a plain text section with the given initial blocks.
func NewText(name string, blocks []string) *Text {
	return &Text{
		base:   base{name: name},
		blocks: blocks,
	}
}

// TextFromDict deserializes a plain text section payload.
func TextFromDict(name string, data map[string]any) Section {
	s := NewText(name, dictStrings(data, "text"))
	s.takeCommon(data)
	return s
}

func (s *Text) Type() string { return TypeText }

// Render returns the blocks in order. Each block was validated to fit a
// single message when it was added, so no pagination is needed.
func (s *Text) Render(_ context.Context) ([]string, error) {
	out := make([]string, len(s.blocks))
	copy(out, s.blocks)
	return out, nil
}

func (s *Text) Show() []string {
	commands := make([]string, 0, len(s.blocks)+2)
	for _, block := range s.blocks {
		commands = append(commands, fmt.Sprintf("section %q add %q", s.name, block))
	}
	return s.showCommon(commands)
}

func (s *Text) ToDict() map[string]any {
	return s.putCommon(map[string]any{
		"text": s.blocks,
	})
}

func (s *Text) ProcessCommand(_ context.Context, command string, args []string, _ string, cc Context) string {
	if reply, handled := s.commonCommand(command, args, cc); handled {
		return reply
	}

	switch command {
	case "add":
		if len(args) < 1 {
			return "Usage: `add \"<text>\"`"
		}
		if args[0] == "" || CountChars(args[0]) >= MessageLimit {
			return fmt.Sprintf("Block data must be non-empty and shorter than %d characters", MessageLimit)
		}
		s.blocks = append(s.blocks, args[0])
		cc.notify()
		return "Markdown block added"
	case "remove":
		if len(args) < 1 {
			return "Usage: `remove <index>`\n\n" + indexHint
		}
		index, ok := parseIndex(args[0], len(s.blocks))
		if !ok {
			return fmt.Sprintf("Unknown index: `%s`\n\n%s", args[0], indexHint)
		}
		s.blocks = append(s.blocks[:index], s.blocks[index+1:]...)
		cc.notify()
		return fmt.Sprintf("Block at index `%s` removed", args[0])
	case "swap":
		if len(args) < 2 {
			return "Usage: `swap <index> <index>`\n\n" + indexHint
		}
		left, ok := parseIndex(args[0], len(s.blocks))
		if !ok {
			return fmt.Sprintf("Unknown index: `%s`\n\n%s", args[0], indexHint)
		}
		right, ok := parseIndex(args[1], len(s.blocks))
		if !ok {
			return fmt.Sprintf("Unknown index: `%s`\n\n%s", args[1], indexHint)
		}
		s.blocks[left], s.blocks[right] = s.blocks[right], s.blocks[left]
		cc.notify()
		return fmt.Sprintf("Blocks at indexes `%s` and `%s` swapped", args[0], args[1])
	}

	return fmt.Sprintf("Unknown command: `%s`\n\nAvailable commands: `add`, `remove`, `swap`, `header`, `footer`", command)
}

// parseIndex converts a user-supplied 1-based index to a 0-based slice
// index, reporting false for anything out of range or non-numeric.
func parseIndex(arg string, length int) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, false
	}
	index := n - 1
	if index < 0 || index >= length {
		return 0, false
	}
	return index, true
}

package section

import (
	"context"
	"fmt"
)

// ItemLimit is the maximum length of a single list item.
const ItemLimit = 200

// DefaultBulletTemplate decorates bulleted list items.
const DefaultBulletTemplate = "• {0}"

// BulletedList is a section holding ordered list items decorated by a
// single-slot template.
type BulletedList struct {
	base
	items    []string
	template string
}

// NewBulletedList creates a bulleted list section with the default
// item template.
func NewBulletedList(name string, items []string) *BulletedList {
	return &BulletedList{
		base:     base{name: name},
		items:    items,
		template: DefaultBulletTemplate,
	}
}

// BulletedListFromDict deserializes a bulleted list section payload.
func BulletedListFromDict(name string, data map[string]any) Section {
	s := NewBulletedList(name, dictStrings(data, "items"))
	if template := dictString(data, "template"); template != "" {
		s.template = template
	}
	s.takeCommon(data)
	return s
}

func (s *BulletedList) Type() string { return TypeBulletedList }

// Render expands each item through the template, then packs the lines
// into message-sized paragraphs.
func (s *BulletedList) Render(_ context.Context) ([]string, error) {
	lines := make([]string, len(s.items))
	for i, item := range s.items {
		expanded, err := expandTemplate(s.template, item)
		if err != nil {
			// Templates are validated before acceptance
			expanded = item
		}
		lines[i] = expanded
	}
	return Pack(lines, MessageLimit, false)
}

func (s *BulletedList) Show() []string {
	commands := make([]string, 0, len(s.items)+3)
	commands = append(commands, fmt.Sprintf("section %q template %q", s.name, s.template))
	for _, item := range s.items {
		commands = append(commands, fmt.Sprintf("section %q add %q", s.name, item))
	}
	return s.showCommon(commands)
}

func (s *BulletedList) ToDict() map[string]any {
	return s.putCommon(map[string]any{
		"items":    s.items,
		"template": s.template,
	})
}

func (s *BulletedList) ProcessCommand(_ context.Context, command string, args []string, _ string, cc Context) string {
	if reply, handled := s.commonCommand(command, args, cc); handled {
		return reply
	}

	switch command {
	case "add":
		if len(args) < 1 {
			return "Usage: `add \"<list item>\"`"
		}
		if args[0] == "" || CountChars(args[0]) >= ItemLimit {
			return fmt.Sprintf("List items must be non-empty and shorter than %d characters", ItemLimit)
		}
		s.items = append(s.items, args[0])
		cc.notify()
		return "List item added"
	case "remove":
		if len(args) < 1 {
			return "Usage: `remove <index>`\n\n" + indexHint
		}
		index, ok := parseIndex(args[0], len(s.items))
		if !ok {
			return fmt.Sprintf("Unknown index: `%s`\n\n%s", args[0], indexHint)
		}
		s.items = append(s.items[:index], s.items[index+1:]...)
		cc.notify()
		return fmt.Sprintf("Item at index `%s` removed", args[0])
	case "swap":
		if len(args) < 2 {
			return "Usage: `swap <index> <index>`\n\n" + indexHint
		}
		left, ok := parseIndex(args[0], len(s.items))
		if !ok {
			return fmt.Sprintf("Unknown index: `%s`\n\n%s", args[0], indexHint)
		}
		right, ok := parseIndex(args[1], len(s.items))
		if !ok {
			return fmt.Sprintf("Unknown index: `%s`\n\n%s", args[1], indexHint)
		}
		s.items[left], s.items[right] = s.items[right], s.items[left]
		cc.notify()
		return fmt.Sprintf("Items at indexes `%s` and `%s` swapped", args[0], args[1])
	case "template":
		if len(args) < 1 {
			return fmt.Sprintf("Here is the current template.\n\n```%s```", s.template)
		}
		if !validateListTemplate(args[0], 1) {
			return "Invalid template. Ensure it contains `{0}` to be replaced with the list item."
		}
		s.template = args[0]
		cc.notify()
		return "Item template has been updated"
	}

	return fmt.Sprintf("Unknown command: `%s`\n\nAvailable commands: `add`, `remove`, `swap`, `template`, `header`, `footer`", command)
}

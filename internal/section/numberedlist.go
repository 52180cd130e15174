package section

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultNumberTemplate decorates numbered list items; {0} is the
// 1-based index and {1} the item.
const DefaultNumberTemplate = "**`{0})`** {1}"

// NumberedList is a section holding ordered list items decorated by a
// two-slot template carrying the item's position.
type NumberedList struct {
	base
	items    []string
	template string
}

// NewNumberedList creates a numbered list section with the default
// item template.
func NewNumberedList(name string, items []string) *NumberedList {
	return &NumberedList{
		base:     base{name: name},
		items:    items,
		template: DefaultNumberTemplate,
	}
}

// NumberedListFromDict deserializes a numbered list section payload.
func NumberedListFromDict(name string, data map[string]any) Section {
	s := NewNumberedList(name, dictStrings(data, "items"))
	if template := dictString(data, "template"); template != "" {
		s.template = template
	}
	s.takeCommon(data)
	return s
}

func (s *NumberedList) Type() string { return TypeNumberedList }

// Render expands each item with its 1-based index, then packs the lines
// into message-sized paragraphs.
func (s *NumberedList) Render(_ context.Context) ([]string, error) {
	lines := make([]string, len(s.items))
	for i, item := range s.items {
		expanded, err := expandTemplate(s.template, strconv.Itoa(i+1), item)
		if err != nil {
			// Templates are validated before acceptance
			expanded = item
		}
		lines[i] = expanded
	}
	return Pack(lines, MessageLimit, false)
}

func (s *NumberedList) Show() []string {
	commands := make([]string, 0, len(s.items)+3)
	commands = append(commands, fmt.Sprintf("section %q template %q", s.name, s.template))
	for _, item := range s.items {
		commands = append(commands, fmt.Sprintf("section %q add %q", s.name, item))
	}
	return s.showCommon(commands)
}

func (s *NumberedList) ToDict() map[string]any {
	return s.putCommon(map[string]any{
		"items":    s.items,
		"template": s.template,
	})
}

func (s *NumberedList) ProcessCommand(_ context.Context, command string, args []string, _ string, cc Context) string {
	if reply, handled := s.commonCommand(command, args, cc); handled {
		return reply
	}

	switch command {
	case "add":
		if len(args) < 1 {
			return "Usage: `add \"<list item>\" [\"<list item>\" ...]`"
		}

		added := 0
		var tooLong []string
		for i, item := range args {
			if item == "" || CountChars(item) >= ItemLimit {
				tooLong = append(tooLong, strconv.Itoa(i+1))
				continue
			}
			s.items = append(s.items, item)
			added++
		}
		if added > 0 {
			cc.notify()
		}

		if len(args) == 1 {
			if added == 0 {
				return fmt.Sprintf("List items must be non-empty and shorter than %d characters", ItemLimit)
			}
			return "List item added"
		}

		reply := fmt.Sprintf("%d list items added", added)
		if len(tooLong) > 0 {
			reply += fmt.Sprintf(
				"\n\nList items must be non-empty and shorter than %d characters. "+
					"The following items were skipped: `%s`",
				ItemLimit, strings.Join(tooLong, ", "),
			)
		}
		return reply
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
	case "set":
		if len(args) < 2 {
			return "Usage: `set <index> \"<list item>\"`\n\n" + indexHint
		}
		index, ok := parseIndex(args[0], len(s.items))
		if !ok {
			return fmt.Sprintf("Unknown index: `%s`\n\n%s", args[0], indexHint)
		}
		if args[1] == "" || CountChars(args[1]) >= ItemLimit {
			return fmt.Sprintf("List items must be non-empty and shorter than %d characters", ItemLimit)
		}
		s.items[index] = args[1]
		cc.notify()
		return fmt.Sprintf("Item at index `%s` set to `%s`", args[0], args[1])
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
		if !validateListTemplate(args[0], 2) {
			return "Invalid template. Ensure it contains `{0}` to be replaced with the list item's index, " +
				"and `{1}` to be replaced with the list item."
		}
		s.template = args[0]
		cc.notify()
		return "Item template has been updated"
	}

	return fmt.Sprintf("Unknown command: `%s`\n\nAvailable commands: `add`, `remove`, `set`, `swap`, `template`, `header`, `footer`", command)
}

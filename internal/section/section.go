package section

import (
	"context"
	"fmt"
)

// Section is the capability set every content variant satisfies.
//
// Render produces the ordered paragraphs that publish to the channel;
// re-rendering without mutation is idempotent for every variant except
// RemoteURL, whose output depends on the live fetch.
//
// Show produces a command transcript that, replayed against an empty
// section of the same type, reconstructs equivalent content.
//
// ProcessCommand interprets a section-scoped sub-command. Validation
// failures are resolved here and returned as plain reply strings; they
// never escape as Go errors. Every successful mutation calls the notify
// hook on the command context so the owning store can persist.
type Section interface {
	Name() string
	Type() string

	Header() string
	SetHeader(header string)
	Footer() string
	SetFooter(footer string)

	Render(ctx context.Context) ([]string, error)
	Show() []string
	ToDict() map[string]any

	ProcessCommand(ctx context.Context, command string, args []string, raw string, cc Context) string
}

// Context carries the identity of a command invocation through to the
// section layer. The core performs no permission checks; the identifiers
// exist for audit text and the notify hook only.
type Context struct {
	ServerID   string
	AuthorID   string
	AuthorName string

	// Notify is invoked after every successful mutating command.
	// Read-only commands never call it.
	Notify func()
}

func (c Context) notify() {
	if c.Notify != nil {
		c.Notify()
	}
}

const indexHint = "Note that indexes start at `1`"

// base carries the identity and decoration fields shared by all variants.
type base struct {
	name   string
	header string
	footer string
}

func (b *base) Name() string   { return b.name }
func (b *base) Header() string { return b.header }
func (b *base) Footer() string { return b.footer }

func (b *base) SetHeader(header string) { b.header = header }
func (b *base) SetFooter(footer string) { b.footer = footer }

// commonCommand handles the header/footer sub-commands shared by every
// variant. The second return reports whether the command was handled.
func (b *base) commonCommand(command string, args []string, cc Context) (string, bool) {
	switch command {
	case "header":
		if len(args) < 1 {
			return "Usage: `header \"<text>\"`\n\nUse `header \"\"` to clear the header", true
		}
		if CountChars(args[0]) >= MessageLimit {
			return fmt.Sprintf("Headers must be shorter than %d characters", MessageLimit), true
		}
		b.header = args[0]
		cc.notify()
		if args[0] == "" {
			return "Header cleared", true
		}
		return "Header set", true
	case "footer":
		if len(args) < 1 {
			return "Usage: `footer \"<text>\"`\n\nUse `footer \"\"` to clear the footer", true
		}
		if CountChars(args[0]) >= MessageLimit {
			return fmt.Sprintf("Footers must be shorter than %d characters", MessageLimit), true
		}
		b.footer = args[0]
		cc.notify()
		if args[0] == "" {
			return "Footer cleared", true
		}
		return "Footer set", true
	}
	return "", false
}

// putCommon writes the shared fields into a serialized payload.
func (b *base) putCommon(d map[string]any) map[string]any {
	d["header"] = b.header
	d["footer"] = b.footer
	return d
}

// takeCommon reads the shared fields back out of a payload.
func (b *base) takeCommon(d map[string]any) {
	b.header = dictString(d, "header")
	b.footer = dictString(d, "footer")
}

// showCommon appends header/footer replay commands to a transcript.
func (b *base) showCommon(commands []string) []string {
	if b.header != "" {
		commands = append(commands, fmt.Sprintf("section %q header %q", b.name, b.header))
	}
	if b.footer != "" {
		commands = append(commands, fmt.Sprintf("section %q footer %q", b.name, b.footer))
	}
	return commands
}

// dictString reads a string field from a payload, tolerating absence.
func dictString(d map[string]any, key string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}

// dictStrings reads a string list field from a payload. Payloads that
// crossed a JSON round trip arrive as []any.
func dictStrings(d map[string]any, key string) []string {
	switch v := d[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// dictPairs reads an ordered list of string pairs from a payload.
func dictPairs(d map[string]any, key string) [][2]string {
	raw, ok := d[key].([]any)
	if !ok {
		if native, ok := d[key].([][2]string); ok {
			out := make([][2]string, len(native))
			copy(out, native)
			return out
		}
		return nil
	}

	out := make([][2]string, 0, len(raw))
	for _, item := range raw {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			continue
		}
		first, ok1 := pair[0].(string)
		second, ok2 := pair[1].(string)
		if ok1 && ok2 {
			out = append(out, [2]string{first, second})
		}
	}
	return out
}

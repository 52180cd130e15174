package discord

import (
	"regexp"
	"strings"
	"unicode"
)

var channelMention = regexp.MustCompile(`^<#(\d+)>$`)

// splitArgs tokenizes a command line. Double quotes group words into a
// single argument, so section names with spaces survive; an empty
// quoted pair yields an empty argument.
func splitArgs(s string) []string {
	var args []string
	var cur strings.Builder
	inQuote := false
	quoted := false

	flush := func() {
		if cur.Len() > 0 || quoted {
			args = append(args, cur.String())
		}
		cur.Reset()
		quoted = false
	}

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			quoted = true
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	return args
}

// parseChannelRef accepts a channel mention (<#123>) or a bare
// numeric ID and returns the channel ID.
func parseChannelRef(s string) (string, bool) {
	if m := channelMention.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if s == "" {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return s, true
}

package section

import (
	"fmt"
	"strconv"
	"strings"
)

// expandTemplate substitutes {0}, {1}, ... slots in a list template with
// the given arguments. A slot index with no matching argument is an
// error, which is how templates are test-validated before acceptance.
// Text outside the slots passes through untouched.
func expandTemplate(template string, args ...string) (string, error) {
	var out strings.Builder

	for i := 0; i < len(template); {
		open := strings.IndexByte(template[i:], '{')
		if open < 0 {
			out.WriteString(template[i:])
			break
		}
		open += i
		out.WriteString(template[i:open])

		close := strings.IndexByte(template[open:], '}')
		if close < 0 {
			out.WriteString(template[open:])
			break
		}
		close += open

		slot := template[open+1 : close]
		index, err := strconv.Atoi(slot)
		if err != nil {
			// Not a substitution slot; emit literally
			out.WriteString(template[open : close+1])
			i = close + 1
			continue
		}
		if index < 0 || index >= len(args) {
			return "", fmt.Errorf("template slot {%d} has no value", index)
		}
		out.WriteString(args[index])
		i = close + 1
	}

	return out.String(), nil
}

// validateListTemplate checks a template against its test substitution.
// Every slot up to slots-1 must be present, and no slot beyond that may
// appear. Returns false for templates that must be rejected.
func validateListTemplate(template string, slots int) bool {
	args := make([]string, slots)
	for i := range args {
		args[i] = "placeholder"
	}
	if _, err := expandTemplate(template, args...); err != nil {
		return false
	}
	for i := 0; i < slots; i++ {
		if !strings.Contains(template, fmt.Sprintf("{%d}", i)) {
			return false
		}
	}
	return true
}

package section

import (
	"context"
	"fmt"
)

// faqFormat decorates a question/answer pair for publishing.
const faqFormat = "**__%s__**\n\n%s"

// FAQ is a section holding an ordered list of question/answer pairs,
// unique by case-insensitive question.
type FAQ struct {
	base
	questions [][2]string
}

// NewFAQ creates an empty FAQ section.
func NewFAQ(name string) *FAQ {
	return &FAQ{base: base{name: name}}
}

// FAQFromDict deserializes an FAQ section payload.
func FAQFromDict(name string, data map[string]any) Section {
	s := NewFAQ(name)
	s.questions = dictPairs(data, "questions")
	s.takeCommon(data)
	return s
}

func (s *FAQ) Type() string { return TypeFAQ }

// HasQuestion reports whether a question exists, case-insensitively.
func (s *FAQ) HasQuestion(question string) bool {
	return s.indexOf(question) >= 0
}

func (s *FAQ) indexOf(question string) int {
	folded := FoldName(question)
	for i, pair := range s.questions {
		if FoldName(pair[0]) == folded {
			return i
		}
	}
	return -1
}

// Render formats each pair with the FAQ decoration, one message per
// pair. Pair lengths are validated at mutation time, so rendering never
// produces an oversized paragraph.
func (s *FAQ) Render(_ context.Context) ([]string, error) {
	paragraphs := make([]string, len(s.questions))
	for i, pair := range s.questions {
		paragraphs[i] = fmt.Sprintf(faqFormat, pair[0], pair[1])
	}
	return paragraphs, nil
}

func (s *FAQ) Show() []string {
	commands := make([]string, 0, len(s.questions)+2)
	for _, pair := range s.questions {
		commands = append(commands, fmt.Sprintf("section %q set %q %q", s.name, pair[0], pair[1]))
	}
	return s.showCommon(commands)
}

func (s *FAQ) ToDict() map[string]any {
	return s.putCommon(map[string]any{
		"questions": s.questions,
	})
}

func (s *FAQ) ProcessCommand(_ context.Context, command string, args []string, _ string, cc Context) string {
	if reply, handled := s.commonCommand(command, args, cc); handled {
		return reply
	}

	switch command {
	case "add":
		if len(args) < 2 {
			return "Usage: `add \"<question>\" \"<answer>\"`"
		}
		if s.HasQuestion(args[0]) {
			return fmt.Sprintf("Question already exists: `%s`\n\nUse `set` to replace its answer", args[0])
		}
		if reply := validatePair(args[0], args[1]); reply != "" {
			return reply
		}
		s.questions = append(s.questions, [2]string{args[0], args[1]})
		cc.notify()
		return "Question added"
	case "set":
		if len(args) < 2 {
			return "Usage: `set \"<question>\" \"<answer>\"`"
		}
		if reply := validatePair(args[0], args[1]); reply != "" {
			return reply
		}
		if i := s.indexOf(args[0]); i >= 0 {
			s.questions[i][1] = args[1]
			cc.notify()
			return "Answer replaced"
		}
		s.questions = append(s.questions, [2]string{args[0], args[1]})
		cc.notify()
		return "Question added"
	case "remove":
		if len(args) < 1 {
			return "Usage: `remove \"<question>\"`"
		}
		i := s.indexOf(args[0])
		if i < 0 {
			return fmt.Sprintf("Unknown question: `%s`", args[0])
		}
		s.questions = append(s.questions[:i], s.questions[i+1:]...)
		cc.notify()
		return "Question removed"
	case "swap":
		if len(args) < 2 {
			return "Usage: `swap \"<question>\" \"<question>\"`"
		}
		left := s.indexOf(args[0])
		if left < 0 {
			return fmt.Sprintf("Unknown question: `%s`", args[0])
		}
		right := s.indexOf(args[1])
		if right < 0 {
			return fmt.Sprintf("Unknown question: `%s`", args[1])
		}
		s.questions[left], s.questions[right] = s.questions[right], s.questions[left]
		cc.notify()
		return "Questions swapped"
	}

	return fmt.Sprintf("Unknown command: `%s`\n\nAvailable commands: `add`, `set`, `remove`, `swap`, `header`, `footer`", command)
}

// validatePair checks that a decorated question/answer pair fits a
// single message. Returns a user-facing reply for violations, empty
// string when valid.
func validatePair(question, answer string) string {
	if question == "" {
		return "Questions must not be empty"
	}
	if answer == "" {
		return "Answers must not be empty"
	}
	if CountChars(fmt.Sprintf(faqFormat, question, answer)) >= MessageLimit {
		return fmt.Sprintf("A question and its answer must stay shorter than %d characters once formatted", MessageLimit)
	}
	return ""
}

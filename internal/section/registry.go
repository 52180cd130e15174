package section

import (
	"sort"
	"strings"

	"github.com/hpungsan/infoboard/internal/errors"
)

// Type tags identify section variants in persisted payloads and in the
// `create <type>` command. The set is closed; there is no fallback
// variant for unknown tags.
const (
	TypeText         = "text"
	TypeFAQ          = "faq"
	TypeURL          = "url"
	TypeBulletedList = "bulleted_list"
	TypeNumberedList = "numbered_list"
)

// Factory constructs a variant either empty or from a persisted payload.
type Factory struct {
	New      func(name string) Section
	FromDict func(name string, data map[string]any) Section
}

var registry = map[string]Factory{
	TypeText: {
		New:      func(name string) Section { return NewText(name, nil) },
		FromDict: TextFromDict,
	},
	TypeFAQ: {
		New:      func(name string) Section { return NewFAQ(name) },
		FromDict: FAQFromDict,
	},
	TypeURL: {
		New:      func(name string) Section { return NewURL(name, "") },
		FromDict: URLFromDict,
	},
	TypeBulletedList: {
		New:      func(name string) Section { return NewBulletedList(name, nil) },
		FromDict: BulletedListFromDict,
	},
	TypeNumberedList: {
		New:      func(name string) Section { return NewNumberedList(name, nil) },
		FromDict: NumberedListFromDict,
	},
}

// Resolve looks up the factory for a type tag, case-insensitively.
func Resolve(tag string) (Factory, error) {
	factory, ok := registry[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return Factory{}, errors.NewUnknownSectionType(tag)
	}
	return factory, nil
}

// Types returns the registered type tags in sorted order, for help text
// and user-facing rejections.
func Types() []string {
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

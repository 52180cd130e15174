// Package store holds the per-server ordered section list and scalar
// configuration, and the manager that keeps every known server loaded
// and persisted through the repository.
package store

import (
	"github.com/hpungsan/infoboard/internal/errors"
	"github.com/hpungsan/infoboard/internal/section"
)

// Config keys. The channel keys are intentionally not settable through
// SetConfig; they require the dedicated setup operation so channel
// existence is always validated first.
const (
	KeyCommandPrefix = "command_prefix"
	KeyInfoChannel   = "info_channel"
	KeyNotesChannel  = "notes_channel"
)

// DefaultCommandPrefix is seeded into new server configs.
const DefaultCommandPrefix = "!"

// Entry pairs a section with its display name. The display name is the
// raw string the user typed; lookups fold it.
type Entry struct {
	Name    string
	Section section.Section
}

// Store is one server's ordered section list plus scalar config. Order
// is semantically meaningful: it is the publish order. A Store is not
// safe for concurrent mutation; the caller serializes access per server.
type Store struct {
	serverID string
	sections []Entry
	config   map[string]string
}

// New creates an empty store with default config for a server.
func New(serverID string) *Store {
	return &Store{
		serverID: serverID,
		config: map[string]string{
			KeyCommandPrefix: DefaultCommandPrefix,
			KeyInfoChannel:   "",
			KeyNotesChannel:  "",
		},
	}
}

// ServerID returns the owning server's identifier.
func (s *Store) ServerID() string { return s.serverID }

// AddSection appends a section at the end of the publish order. It
// fails with DUPLICATE_NAME if a case-insensitive match exists.
func (s *Store) AddSection(name string, sec section.Section) error {
	if s.HasSection(name) {
		return errors.NewDuplicateName(name)
	}
	s.sections = append(s.sections, Entry{Name: name, Section: sec})
	return nil
}

// RemoveSection removes a section by name, preserving the relative
// order of the rest. Missing names fail with UNKNOWN_SECTION.
func (s *Store) RemoveSection(name string) error {
	i := s.indexOf(name)
	if i < 0 {
		return errors.NewUnknownSection(name)
	}
	s.sections = append(s.sections[:i], s.sections[i+1:]...)
	return nil
}

// SwapSections exchanges the positions of two sections in place.
func (s *Store) SwapSections(nameA, nameB string) error {
	a := s.indexOf(nameA)
	if a < 0 {
		return errors.NewUnknownSection(nameA)
	}
	b := s.indexOf(nameB)
	if b < 0 {
		return errors.NewUnknownSection(nameB)
	}
	s.sections[a], s.sections[b] = s.sections[b], s.sections[a]
	return nil
}

// GetSection looks a section up by name, case-insensitively.
func (s *Store) GetSection(name string) (section.Section, error) {
	i := s.indexOf(name)
	if i < 0 {
		return nil, errors.NewUnknownSection(name)
	}
	return s.sections[i].Section, nil
}

// HasSection reports whether a section exists, case-insensitively.
func (s *Store) HasSection(name string) bool {
	return s.indexOf(name) >= 0
}

// Sections returns the entries in publish order. The slice is a copy;
// the sections themselves are shared.
func (s *Store) Sections() []Entry {
	out := make([]Entry, len(s.sections))
	copy(out, s.sections)
	return out
}

func (s *Store) indexOf(name string) int {
	folded := section.FoldName(name)
	for i, entry := range s.sections {
		if section.FoldName(entry.Name) == folded {
			return i
		}
	}
	return -1
}

// SetConfig updates a scalar config value. Unknown keys are rejected,
// as are the channel-id keys, which bypass channel validation if set
// generically.
func (s *Store) SetConfig(key, value string) error {
	switch key {
	case KeyCommandPrefix:
		if value == "" {
			return errors.NewValidation("command prefix must not be empty")
		}
		s.config[key] = value
		return nil
	case KeyInfoChannel, KeyNotesChannel:
		return errors.NewValidation("channel config requires the setup command, which validates the channel exists")
	}
	return errors.NewValidation("unknown config key: " + key)
}

// Config returns a copy of the config map.
func (s *Store) Config() map[string]string {
	out := make(map[string]string, len(s.config))
	for k, v := range s.config {
		out[k] = v
	}
	return out
}

// CommandPrefix returns the server's command prefix.
func (s *Store) CommandPrefix() string {
	if prefix := s.config[KeyCommandPrefix]; prefix != "" {
		return prefix
	}
	return DefaultCommandPrefix
}

// InfoChannel returns the target channel id, empty if setup never ran.
func (s *Store) InfoChannel() string { return s.config[KeyInfoChannel] }

// NotesChannel returns the notes channel id, empty if unset.
func (s *Store) NotesChannel() string { return s.config[KeyNotesChannel] }

// SetChannels records the validated channel ids. Only the setup
// operation calls this, after confirming the channels exist.
func (s *Store) SetChannels(infoChannelID, notesChannelID string) {
	s.config[KeyInfoChannel] = infoChannelID
	s.config[KeyNotesChannel] = notesChannelID
}

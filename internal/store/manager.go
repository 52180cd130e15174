package store

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/hpungsan/infoboard/internal/errors"
	"github.com/hpungsan/infoboard/internal/section"
)

// SectionRecord is the persisted form of one section: its display name,
// type tag, and structural payload, position-significant within a
// server's list.
type SectionRecord struct {
	Name    string
	Type    string
	Payload map[string]any
}

// Repository is the durable storage collaborator. Implementations must
// support independent per-server reads and writes; no operation spans
// servers.
type Repository interface {
	LoadServer(ctx context.Context, serverID string) (config map[string]string, sections []SectionRecord, err error)
	SaveServer(ctx context.Context, serverID string, config map[string]string, sections []SectionRecord) error
	ListServerIDs(ctx context.Context) ([]string, error)
}

// welcomeText seeds the default section on first contact with a server.
var welcomeText = []string{
	"Congratulations, your info channel has been set up correctly! Here's a few tips on getting the most out of me.\n\n" +
		"• As a first step, you should `remove` this section and set up the sections that you want. This channel " +
		"will not be updated until you run the `update` command, so ensure that you do that when you're ready. All " +
		"changes are saved immediately, however.\n" +
		"• Make sure that you name your sections how you want them to display. This section is named `Welcome " +
		"Message`, and that name is used as the title when your section is posted.\n" +
		"• Don't forget to use the `help` command if you need more information!",
}

// Manager owns the loaded store for every known server and persists a
// server's full section list and config after each mutation. It never
// batches or debounces saves. The map is guarded for concurrent access
// across servers; mutations within one server still require the
// caller's per-server serialization.
type Manager struct {
	mu      sync.RWMutex
	repo    Repository
	servers map[string]*Store
}

// NewManager creates a manager over the given repository.
func NewManager(repo Repository) *Manager {
	return &Manager{
		repo:    repo,
		servers: make(map[string]*Store),
	}
}

// LoadAll loads every known server from the repository. A server that
// fails to load is logged and skipped rather than aborting startup.
func (m *Manager) LoadAll(ctx context.Context) error {
	ids, err := m.repo.ListServerIDs(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := m.loadServer(ctx, id); err != nil {
			log.Printf("failed to load server %s: %v", id, err)
		}
	}
	return nil
}

func (m *Manager) loadServer(ctx context.Context, serverID string) error {
	config, records, err := m.repo.LoadServer(ctx, serverID)
	if err != nil {
		return err
	}

	st := New(serverID)
	for key, value := range config {
		switch key {
		case KeyCommandPrefix, KeyInfoChannel, KeyNotesChannel:
			st.config[key] = value
		}
	}

	for _, record := range records {
		factory, err := section.Resolve(record.Type)
		if err != nil {
			return err
		}
		if err := st.AddSection(record.Name, factory.FromDict(record.Name, record.Payload)); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.servers[serverID] = st
	m.mu.Unlock()
	return nil
}

// Get returns the loaded store for a server, if any.
func (m *Manager) Get(serverID string) (*Store, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.servers[serverID]
	return st, ok
}

// Ensure returns the store for a server, creating and persisting it
// with default config and the seeded welcome section on first contact.
func (m *Manager) Ensure(ctx context.Context, serverID string) (*Store, error) {
	if st, ok := m.Get(serverID); ok {
		return st, nil
	}

	st := New(serverID)
	welcome := section.NewText("Welcome Message", welcomeText)
	if err := st.AddSection("Welcome Message", welcome); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.servers[serverID] = st
	m.mu.Unlock()

	if err := m.Save(ctx, serverID); err != nil {
		return nil, err
	}
	log.Printf("added server: %s", serverID)
	return st, nil
}

// ServerIDs returns the loaded server ids in sorted order.
func (m *Manager) ServerIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.servers))
	for id := range m.servers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Save persists a server's full section list and config.
func (m *Manager) Save(ctx context.Context, serverID string) error {
	st, ok := m.Get(serverID)
	if !ok {
		return errors.NewNotFound("server " + serverID)
	}

	entries := st.Sections()
	records := make([]SectionRecord, len(entries))
	for i, entry := range entries {
		records[i] = SectionRecord{
			Name:    entry.Name,
			Type:    entry.Section.Type(),
			Payload: entry.Section.ToDict(),
		}
	}

	return m.repo.SaveServer(ctx, serverID, st.Config(), records)
}

// CreateSection adds a new empty section of the given type at the end
// of the publish order and persists.
func (m *Manager) CreateSection(ctx context.Context, serverID, typeTag, name string) (section.Section, error) {
	st, ok := m.Get(serverID)
	if !ok {
		return nil, errors.NewNotFound("server " + serverID)
	}

	factory, err := section.Resolve(typeTag)
	if err != nil {
		return nil, err
	}

	sec := factory.New(name)
	if err := st.AddSection(name, sec); err != nil {
		return nil, err
	}
	if err := m.Save(ctx, serverID); err != nil {
		return nil, err
	}
	return sec, nil
}

// RemoveSection removes a section by name and persists.
func (m *Manager) RemoveSection(ctx context.Context, serverID, name string) error {
	st, ok := m.Get(serverID)
	if !ok {
		return errors.NewNotFound("server " + serverID)
	}
	if err := st.RemoveSection(name); err != nil {
		return err
	}
	return m.Save(ctx, serverID)
}

// SwapSections swaps two sections' publish positions and persists.
func (m *Manager) SwapSections(ctx context.Context, serverID, nameA, nameB string) error {
	st, ok := m.Get(serverID)
	if !ok {
		return errors.NewNotFound("server " + serverID)
	}
	if err := st.SwapSections(nameA, nameB); err != nil {
		return err
	}
	return m.Save(ctx, serverID)
}

// SetConfig updates a scalar config value and persists.
func (m *Manager) SetConfig(ctx context.Context, serverID, key, value string) error {
	st, ok := m.Get(serverID)
	if !ok {
		return errors.NewNotFound("server " + serverID)
	}
	if err := st.SetConfig(key, value); err != nil {
		return err
	}
	return m.Save(ctx, serverID)
}

// SetChannels records validated channel ids and persists. Callers
// validate channel existence before invoking this.
func (m *Manager) SetChannels(ctx context.Context, serverID, infoChannelID, notesChannelID string) error {
	st, ok := m.Get(serverID)
	if !ok {
		return errors.NewNotFound("server " + serverID)
	}
	st.SetChannels(infoChannelID, notesChannelID)
	return m.Save(ctx, serverID)
}

// CommandContext builds the section command context for a server. The
// notify hook persists the server, which is how every successful
// mutating sub-command reaches durable storage.
func (m *Manager) CommandContext(ctx context.Context, serverID, authorID, authorName string) section.Context {
	return section.Context{
		ServerID:   serverID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Notify: func() {
			if err := m.Save(ctx, serverID); err != nil {
				log.Printf("failed to save server %s: %v", serverID, err)
			}
		},
	}
}

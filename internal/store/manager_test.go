package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/hpungsan/infoboard/internal/errors"
	"github.com/hpungsan/infoboard/internal/section"
)

// memoryRepo is an in-memory Repository that JSON round-trips payloads,
// matching what the sqlite repository does to them.
type memoryRepo struct {
	configs  map[string]map[string]string
	sections map[string][]SectionRecord
	saves    int
	failSave error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		configs:  make(map[string]map[string]string),
		sections: make(map[string][]SectionRecord),
	}
}

func (r *memoryRepo) LoadServer(_ context.Context, serverID string) (map[string]string, []SectionRecord, error) {
	config, ok := r.configs[serverID]
	if !ok {
		return nil, nil, errors.NewNotFound("server " + serverID)
	}
	return config, r.sections[serverID], nil
}

func (r *memoryRepo) SaveServer(_ context.Context, serverID string, config map[string]string, records []SectionRecord) error {
	if r.failSave != nil {
		return r.failSave
	}
	r.saves++

	// Round-trip payloads through JSON so tests catch serialization
	// assumptions the sqlite repository would break.
	stored := make([]SectionRecord, len(records))
	for i, record := range records {
		data, err := json.Marshal(record.Payload)
		if err != nil {
			return err
		}
		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		stored[i] = SectionRecord{Name: record.Name, Type: record.Type, Payload: payload}
	}

	r.configs[serverID] = config
	r.sections[serverID] = stored
	return nil
}

func (r *memoryRepo) ListServerIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.configs))
	for id := range r.configs {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestManager_EnsureSeedsWelcome(t *testing.T) {
	repo := newMemoryRepo()
	m := NewManager(repo)

	st, err := m.Ensure(context.Background(), "srv-1")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	if !st.HasSection("Welcome Message") {
		t.Error("welcome section not seeded")
	}
	if st.CommandPrefix() != DefaultCommandPrefix {
		t.Errorf("CommandPrefix = %q", st.CommandPrefix())
	}
	if repo.saves != 1 {
		t.Errorf("saves = %d, want 1", repo.saves)
	}

	// Second Ensure returns the same store without another save
	again, err := m.Ensure(context.Background(), "srv-1")
	if err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}
	if again != st {
		t.Error("Ensure created a second store for the same server")
	}
	if repo.saves != 1 {
		t.Errorf("saves = %d, want 1", repo.saves)
	}
}

func TestManager_LoadAllRoundTrip(t *testing.T) {
	repo := newMemoryRepo()
	m := NewManager(repo)
	ctx := context.Background()

	if _, err := m.Ensure(ctx, "srv-1"); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if _, err := m.CreateSection(ctx, "srv-1", section.TypeFAQ, "FAQ"); err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	st, _ := m.Get("srv-1")
	faq, _ := st.GetSection("FAQ")
	cc := m.CommandContext(ctx, "srv-1", "user-1", "alice")
	faq.ProcessCommand(ctx, "set", []string{"Q1", "A1"}, "", cc)

	// Fresh manager over the same repository
	reloaded := NewManager(repo)
	if err := reloaded.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	st2, ok := reloaded.Get("srv-1")
	if !ok {
		t.Fatal("server not reloaded")
	}

	entries := st2.Sections()
	if len(entries) != 2 {
		t.Fatalf("section count = %d, want 2", len(entries))
	}
	if entries[0].Name != "Welcome Message" || entries[1].Name != "FAQ" {
		t.Errorf("order = [%s %s]", entries[0].Name, entries[1].Name)
	}

	sec, err := st2.GetSection("faq")
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if !sec.(*section.FAQ).HasQuestion("q1") {
		t.Error("FAQ content lost across reload")
	}
}

func TestManager_CreateSection_UnknownType(t *testing.T) {
	m := NewManager(newMemoryRepo())
	ctx := context.Background()
	m.Ensure(ctx, "srv-1")

	_, err := m.CreateSection(ctx, "srv-1", "csv", "Data")
	if !errors.Is(err, errors.ErrUnknownSectionType) {
		t.Fatalf("expected UNKNOWN_SECTION_TYPE, got %v", err)
	}
}

func TestManager_CreateSection_Duplicate(t *testing.T) {
	repo := newMemoryRepo()
	m := NewManager(repo)
	ctx := context.Background()
	m.Ensure(ctx, "srv-1")

	_, err := m.CreateSection(ctx, "srv-1", section.TypeText, "welcome message")
	if !errors.Is(err, errors.ErrDuplicateName) {
		t.Fatalf("expected DUPLICATE_NAME, got %v", err)
	}
}

func TestManager_MutationsPersist(t *testing.T) {
	repo := newMemoryRepo()
	m := NewManager(repo)
	ctx := context.Background()
	m.Ensure(ctx, "srv-1")
	savesAfterEnsure := repo.saves

	m.CreateSection(ctx, "srv-1", section.TypeText, "Rules")
	m.SwapSections(ctx, "srv-1", "Rules", "Welcome Message")
	m.SetConfig(ctx, "srv-1", KeyCommandPrefix, "?")
	m.SetChannels(ctx, "srv-1", "111", "222")
	m.RemoveSection(ctx, "srv-1", "Welcome Message")

	if got := repo.saves - savesAfterEnsure; got != 5 {
		t.Errorf("saves = %d, want 5 (one per mutation)", got)
	}

	if repo.configs["srv-1"][KeyCommandPrefix] != "?" {
		t.Error("prefix not persisted")
	}
	if repo.configs["srv-1"][KeyInfoChannel] != "111" {
		t.Error("info channel not persisted")
	}
	if len(repo.sections["srv-1"]) != 1 || repo.sections["srv-1"][0].Name != "Rules" {
		t.Errorf("persisted sections = %v", repo.sections["srv-1"])
	}
}

func TestManager_CommandContextNotifySaves(t *testing.T) {
	repo := newMemoryRepo()
	m := NewManager(repo)
	ctx := context.Background()
	m.Ensure(ctx, "srv-1")
	m.CreateSection(ctx, "srv-1", section.TypeText, "Rules")
	savesBefore := repo.saves

	st, _ := m.Get("srv-1")
	sec, _ := st.GetSection("Rules")
	cc := m.CommandContext(ctx, "srv-1", "user-1", "alice")

	sec.ProcessCommand(ctx, "add", []string{"be nice"}, "", cc)
	if repo.saves != savesBefore+1 {
		t.Errorf("saves = %d, want %d (mutating command persists)", repo.saves, savesBefore+1)
	}

	// Read-only command must not save
	sec.ProcessCommand(ctx, "bogus", nil, "", cc)
	if repo.saves != savesBefore+1 {
		t.Errorf("saves = %d, want %d (failed command must not persist)", repo.saves, savesBefore+1)
	}
}

func TestManager_SaveUnknownServer(t *testing.T) {
	m := NewManager(newMemoryRepo())

	err := m.Save(context.Background(), "nope")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestManager_EnsurePropagatesSaveFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.failSave = fmt.Errorf("disk full")
	m := NewManager(repo)

	_, err := m.Ensure(context.Background(), "srv-1")
	if err == nil {
		t.Fatal("expected save failure to propagate")
	}
}

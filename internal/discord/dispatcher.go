package discord

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/hpungsan/infoboard/internal/errors"
	"github.com/hpungsan/infoboard/internal/notes"
	"github.com/hpungsan/infoboard/internal/section"
	"github.com/hpungsan/infoboard/internal/store"
	"github.com/hpungsan/infoboard/internal/syncer"
)

// Incoming is one user message as seen by the dispatcher.
type Incoming struct {
	ServerID   string
	ChannelID  string
	AuthorID   string
	AuthorName string
	Content    string
}

// Dispatcher interprets prefixed commands against the section store.
// Replies are user-facing strings; an unhandled message returns
// handled=false so the caller can ignore it silently.
type Dispatcher struct {
	mgr     *store.Manager
	notes   *notes.Service
	syncer  *syncer.Synchronizer
	session Session

	mu       sync.Mutex
	serverMu map[string]*sync.Mutex
}

// NewDispatcher creates a dispatcher. The session is used only for
// posting submitted notes into the notes channel and may be nil when
// no notes channel will ever be configured.
func NewDispatcher(mgr *store.Manager, noteSvc *notes.Service, syn *syncer.Synchronizer, session Session) *Dispatcher {
	return &Dispatcher{
		mgr:      mgr,
		notes:    noteSvc,
		syncer:   syn,
		session:  session,
		serverMu: make(map[string]*sync.Mutex),
	}
}

// Handle interprets one message. It returns the reply text and whether
// the message was a command for this dispatcher. Commands for the same
// server run one at a time: the gateway dispatches events on separate
// goroutines, and neither the section store nor a running
// synchronization tolerates a concurrent mutation.
func (d *Dispatcher) Handle(ctx context.Context, in Incoming) (string, bool) {
	unlock := d.lockServer(in.ServerID)
	defer unlock()

	st, err := d.mgr.Ensure(ctx, in.ServerID)
	if err != nil {
		log.Printf("ensure server %s: %v", in.ServerID, err)
		return "", false
	}

	prefix := st.CommandPrefix()
	if !strings.HasPrefix(in.Content, prefix) {
		return "", false
	}

	line := strings.TrimSpace(strings.TrimPrefix(in.Content, prefix))
	if line == "" {
		return "", false
	}

	args := splitArgs(line)
	command := strings.ToLower(args[0])
	args = args[1:]

	switch command {
	case "help":
		return helpText(prefix), true
	case "list":
		return d.listSections(st), true
	case "show":
		return d.showSection(st, args, prefix), true
	case "create":
		return d.createSection(ctx, in.ServerID, args, prefix), true
	case "remove":
		return d.removeSection(ctx, in.ServerID, args, prefix), true
	case "swap":
		return d.swapSections(ctx, in.ServerID, args, prefix), true
	case "section":
		return d.sectionCommand(ctx, in, st, args, prefix), true
	case "setup":
		return d.setup(ctx, in.ServerID, args, prefix), true
	case "config":
		return d.setConfig(ctx, in.ServerID, args, prefix), true
	case "update":
		return d.update(ctx, st), true
	case "note":
		return d.noteCommand(ctx, in, st, args, prefix), true
	}

	return fmt.Sprintf("Unknown command: `%s`\n\nTry `%shelp`", command, prefix), true
}

// lockServer acquires the serialization lock for one server, creating
// it on first contact.
func (d *Dispatcher) lockServer(serverID string) func() {
	d.mu.Lock()
	m, ok := d.serverMu[serverID]
	if !ok {
		m = &sync.Mutex{}
		d.serverMu[serverID] = m
	}
	d.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func (d *Dispatcher) listSections(st *store.Store) string {
	entries := st.Sections()
	if len(entries) == 0 {
		return "No sections yet"
	}

	var b strings.Builder
	b.WriteString("**Sections**\n")
	for i, entry := range entries {
		fmt.Fprintf(&b, "\n**`%d)`** %s (`%s`)", i+1, entry.Name, entry.Section.Type())
	}
	return b.String()
}

func (d *Dispatcher) showSection(st *store.Store, args []string, prefix string) string {
	if len(args) < 1 {
		return fmt.Sprintf("Usage: `%sshow \"<name>\"`", prefix)
	}

	sec, err := st.GetSection(args[0])
	if err != nil {
		return userMessage(err)
	}

	commands := sec.Show()
	if len(commands) == 0 {
		return "Section is empty"
	}
	return fmt.Sprintf("Commands to recreate section `%s`:\n```\n%s\n```", sec.Name(), strings.Join(commands, "\n"))
}

func (d *Dispatcher) createSection(ctx context.Context, serverID string, args []string, prefix string) string {
	if len(args) < 2 {
		return fmt.Sprintf("Usage: `%screate <type> \"<name>\"`\n\nAvailable types: `%s`",
			prefix, strings.Join(section.Types(), "`, `"))
	}

	name := strings.TrimSpace(args[1])
	if name == "" {
		return "Section names must not be empty"
	}

	if _, err := d.mgr.CreateSection(ctx, serverID, args[0], name); err != nil {
		return userMessage(err)
	}
	return fmt.Sprintf("Section `%s` created", name)
}

func (d *Dispatcher) removeSection(ctx context.Context, serverID string, args []string, prefix string) string {
	if len(args) < 1 {
		return fmt.Sprintf("Usage: `%sremove \"<name>\"`", prefix)
	}

	if err := d.mgr.RemoveSection(ctx, serverID, args[0]); err != nil {
		return userMessage(err)
	}
	return fmt.Sprintf("Section `%s` removed", args[0])
}

func (d *Dispatcher) swapSections(ctx context.Context, serverID string, args []string, prefix string) string {
	if len(args) < 2 {
		return fmt.Sprintf("Usage: `%sswap \"<name>\" \"<name>\"`", prefix)
	}

	if err := d.mgr.SwapSections(ctx, serverID, args[0], args[1]); err != nil {
		return userMessage(err)
	}
	return fmt.Sprintf("Sections `%s` and `%s` swapped", args[0], args[1])
}

func (d *Dispatcher) sectionCommand(ctx context.Context, in Incoming, st *store.Store, args []string, prefix string) string {
	if len(args) < 2 {
		return fmt.Sprintf("Usage: `%ssection \"<name>\" <command> ...`", prefix)
	}

	sec, err := st.GetSection(args[0])
	if err != nil {
		return userMessage(err)
	}

	sub := strings.ToLower(args[1])
	rest := args[2:]
	cc := d.mgr.CommandContext(ctx, in.ServerID, in.AuthorID, in.AuthorName)
	return sec.ProcessCommand(ctx, sub, rest, strings.Join(rest, " "), cc)
}

func (d *Dispatcher) setup(ctx context.Context, serverID string, args []string, prefix string) string {
	if len(args) < 1 {
		return fmt.Sprintf("Usage: `%ssetup <#info-channel> [#notes-channel]`", prefix)
	}

	infoID, ok := parseChannelRef(args[0])
	if !ok {
		return fmt.Sprintf("Not a channel: `%s`", args[0])
	}

	notesID := ""
	if len(args) > 1 {
		notesID, ok = parseChannelRef(args[1])
		if !ok {
			return fmt.Sprintf("Not a channel: `%s`", args[1])
		}
	}

	if err := d.mgr.SetChannels(ctx, serverID, infoID, notesID); err != nil {
		return userMessage(err)
	}
	if notesID == "" {
		return fmt.Sprintf("Info channel set to <#%s>", infoID)
	}
	return fmt.Sprintf("Info channel set to <#%s>, notes channel set to <#%s>", infoID, notesID)
}

func (d *Dispatcher) setConfig(ctx context.Context, serverID string, args []string, prefix string) string {
	if len(args) < 2 {
		return fmt.Sprintf("Usage: `%sconfig <key> <value>`", prefix)
	}

	if err := d.mgr.SetConfig(ctx, serverID, args[0], args[1]); err != nil {
		return userMessage(err)
	}
	return fmt.Sprintf("Config value `%s` set to `%s`", args[0], args[1])
}

// update runs one synchronization for the server. Handle's per-server
// lock guarantees at most one runs per server at a time; overlapping
// runs would interleave destructively in the channel.
func (d *Dispatcher) update(ctx context.Context, st *store.Store) string {
	if err := d.syncer.Sync(ctx, st); err != nil {
		log.Printf("sync server %s: %v", st.ServerID(), err)
		return fmt.Sprintf("Update failed, the channel may be partially updated: %s\n\nPlease run the update again", userMessage(err))
	}
	return "Info channel updated"
}

func (d *Dispatcher) noteCommand(ctx context.Context, in Incoming, st *store.Store, args []string, prefix string) string {
	if len(args) < 1 {
		return fmt.Sprintf("Usage: `%snote <text>` or `%snote list|status|remove ...`", prefix, prefix)
	}

	switch strings.ToLower(args[0]) {
	case "list":
		return d.listNotes(ctx, in.ServerID)
	case "status":
		if len(args) < 3 {
			return fmt.Sprintf("Usage: `%snote status <id> <open|resolved|closed>`", prefix)
		}
		if _, err := d.notes.SetStatus(ctx, in.ServerID, args[1], strings.ToLower(args[2])); err != nil {
			return userMessage(err)
		}
		return fmt.Sprintf("Note `%s` marked %s", args[1], strings.ToLower(args[2]))
	case "remove":
		if len(args) < 2 {
			return fmt.Sprintf("Usage: `%snote remove <id>`", prefix)
		}
		if err := d.notes.Delete(ctx, in.ServerID, args[1]); err != nil {
			return userMessage(err)
		}
		return fmt.Sprintf("Note `%s` removed", args[1])
	}

	return d.createNote(ctx, in, st, strings.Join(args, " "))
}

func (d *Dispatcher) createNote(ctx context.Context, in Incoming, st *store.Store, text string) string {
	note, err := d.notes.Create(ctx, in.ServerID, in.AuthorID, in.AuthorName, text)
	if err != nil {
		return userMessage(err)
	}

	if channelID := st.NotesChannel(); channelID != "" && d.session != nil {
		content := fmt.Sprintf("**Note `%s`** from %s:\n\n%s", note.ID, note.SubmitterName, note.Text)
		msg, err := d.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
		if err != nil {
			log.Printf("post note %s to channel %s: %v", note.ID, channelID, err)
		} else if err := d.notes.SetMessageID(ctx, in.ServerID, note.ID, msg.ID); err != nil {
			log.Printf("record note message id: %v", err)
		}
	}

	return fmt.Sprintf("Note `%s` submitted", note.ID)
}

func (d *Dispatcher) listNotes(ctx context.Context, serverID string) string {
	list, err := d.notes.List(ctx, serverID)
	if err != nil {
		return userMessage(err)
	}
	if len(list) == 0 {
		return "No notes"
	}

	var b strings.Builder
	b.WriteString("**Notes**\n")
	for _, n := range list {
		fmt.Fprintf(&b, "\n**`%s`** [%s] %s: %s", n.ID, n.Status, n.SubmitterName, n.Text)
	}
	return b.String()
}

// userMessage renders an error for a command reply. Structured errors
// carry user-facing messages already, even when wrapped with added
// context; anything else gets a generic one.
func userMessage(err error) string {
	var bErr *errors.BoardError
	if stderrors.As(err, &bErr) {
		return bErr.Message
	}
	return "Something went wrong, please try again"
}

func helpText(prefix string) string {
	return strings.ReplaceAll(`**Commands**

**§setup <#info-channel> [#notes-channel]**: set the channels I manage
**§create <type> "<name>"**: create a section; types: `+"`text`, `faq`, `url`, `bulleted_list`, `numbered_list`"+`
**§remove "<name>"**: remove a section
**§swap "<a>" "<b>"**: swap the positions of two sections
**§list**: list the sections in display order
**§show "<name>"**: show the commands that would recreate a section
**§section "<name>" <command> ...**: edit one section
**§config <key> <value>**: change a config value, e.g. the command prefix
**§update**: rewrite the info channel from the stored sections
**§note <text>**: submit a note; also `+"`note list`, `note status`, `note remove`"+`

Changes are saved immediately, but the info channel only changes when you run `+"`§update`", "§", prefix)
}

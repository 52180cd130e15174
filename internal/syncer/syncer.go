// Package syncer implements the clear-then-republish procedure that
// makes a target channel's message sequence match a server's section
// store exactly.
package syncer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hpungsan/infoboard/internal/errors"
	"github.com/hpungsan/infoboard/internal/store"
)

// Message is the transport's view of one channel message.
type Message struct {
	ID string
}

// Transport is the message-platform collaborator. MessagesBefore
// returns a batch of messages strictly older than the cursor (newest
// first, the whole channel tail for an empty cursor); an empty batch is
// the exhaustion sentinel. Implementations must raise transient
// disconnects as TRANSIENT_DISCONNECT errors, distinct from every other
// failure.
type Transport interface {
	MessagesBefore(ctx context.Context, channelID, beforeID string) ([]Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	SendMessage(ctx context.Context, channelID, content string) (string, error)
}

const (
	// DefaultMessageDelay paces outbound messages during publish.
	DefaultMessageDelay = 200 * time.Millisecond

	// maxClearErrors aborts the clear stage once this many cumulative
	// errors have been observed.
	maxClearErrors = 5

	// titleFormat decorates a section name for its title message.
	titleFormat = "**__%s__**"
)

// Synchronizer rewrites one server's info channel from its section
// store. A synchronizer is stateless between runs; re-invoking either
// stage is safe. The caller must guarantee at most one in-flight
// synchronization per server: two concurrent runs against the same
// channel interleave destructively.
type Synchronizer struct {
	transport Transport
	delay     time.Duration
}

// New creates a synchronizer with the default inter-message delay.
func New(transport Transport) *Synchronizer {
	return &Synchronizer{transport: transport, delay: DefaultMessageDelay}
}

// NewWithDelay creates a synchronizer with a custom inter-message
// delay. Tests use a zero delay.
func NewWithDelay(transport Transport, delay time.Duration) *Synchronizer {
	return &Synchronizer{transport: transport, delay: delay}
}

// Sync clears the store's info channel and republishes every section in
// order. A returned error means the channel may be partially updated;
// there is no rollback of already-sent messages, so the caller must
// tell the operator to retry.
func (s *Synchronizer) Sync(ctx context.Context, st *store.Store) error {
	channelID := st.InfoChannel()
	if channelID == "" {
		return errors.NewValidation("no info channel has been configured; run the setup command first")
	}

	if err := s.Clear(ctx, channelID); err != nil {
		return err
	}
	return s.Publish(ctx, st)
}

// Clear deletes the target channel's messages batch by batch, tracking
// a cursor so a rerun after a failure resumes instead of restarting.
// Three conditions independently stop the stage: an exhausted channel
// (empty batch), a stalled cursor, and five cumulative errors. A
// transient transport disconnect is retried once per batch before it
// counts as an error.
func (s *Synchronizer) Clear(ctx context.Context, channelID string) error {
	cursor := ""
	errCount := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := s.transport.MessagesBefore(ctx, channelID, cursor)
		if errors.Is(err, errors.ErrTransientDisconnect) {
			batch, err = s.transport.MessagesBefore(ctx, channelID, cursor)
		}
		if err != nil {
			errCount++
			log.Printf("clear: batch fetch failed (%d/%d): %v", errCount, maxClearErrors, err)
			if errCount >= maxClearErrors {
				return fmt.Errorf("clear aborted after %d errors: %w", errCount, err)
			}
			continue
		}

		if len(batch) == 0 {
			return nil
		}

		prevCursor := cursor
		for _, msg := range batch {
			if err := s.transport.DeleteMessage(ctx, channelID, msg.ID); err != nil {
				errCount++
				log.Printf("clear: delete failed (%d/%d): %v", errCount, maxClearErrors, err)
				if errCount >= maxClearErrors {
					return fmt.Errorf("clear aborted after %d errors: %w", errCount, err)
				}
			}
			cursor = msg.ID
		}

		// A cursor that did not advance means the channel cannot be
		// cleared further, e.g. permission gaps.
		if cursor == prevCursor {
			return nil
		}
	}
}

// Publish posts every section of the store to its info channel, in
// store order: title, header if set, each rendered paragraph, footer if
// set. Messages are paced by the configured delay and the order is
// strictly sequential; the channel's message order is the published
// document.
func (s *Synchronizer) Publish(ctx context.Context, st *store.Store) error {
	channelID := st.InfoChannel()

	for _, entry := range st.Sections() {
		messages := []string{fmt.Sprintf(titleFormat, entry.Name)}

		if header := entry.Section.Header(); header != "" {
			messages = append(messages, header)
		}

		paragraphs, err := entry.Section.Render(ctx)
		if err != nil {
			return fmt.Errorf("rendering section %q: %w", entry.Name, err)
		}
		messages = append(messages, paragraphs...)

		if footer := entry.Section.Footer(); footer != "" {
			messages = append(messages, footer)
		}

		for _, content := range messages {
			if _, err := s.transport.SendMessage(ctx, channelID, content); err != nil {
				return fmt.Errorf("publishing section %q: %w", entry.Name, err)
			}
			if err := s.pause(ctx); err != nil {
				return err
			}
		}
	}

	return nil
}

// pause waits out the inter-message delay, honoring cancellation.
func (s *Synchronizer) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

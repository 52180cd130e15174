package discord

import (
	"bytes"
	"strings"
	"sync"

	"github.com/hpungsan/infoboard/internal/section"
)

// ChannelWriter is an io.Writer that forwards complete log lines to a
// channel. Lines containing a debug marker are dropped, and send
// failures are discarded rather than logged, since logging them would
// loop. Wire it via log.SetOutput(io.MultiWriter(os.Stderr, writer)).
type ChannelWriter struct {
	session   Session
	channelID string

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewChannelWriter creates a writer that posts to the given channel.
func NewChannelWriter(session Session, channelID string) *ChannelWriter {
	return &ChannelWriter{session: session, channelID: channelID}
}

// Write buffers p and posts each completed line.
func (w *ChannelWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.buf.Write(p)

	var lines []string
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Partial line, keep it buffered for the next write
			w.buf.WriteString(line)
			break
		}
		lines = append(lines, strings.TrimRight(line, "\n"))
	}
	w.mu.Unlock()

	for _, line := range lines {
		w.post(line)
	}
	return len(p), nil
}

func (w *ChannelWriter) post(line string) {
	if line == "" || strings.Contains(line, "[debug]") {
		return
	}
	if section.CountChars(line) >= section.MessageLimit {
		// Truncate on a rune boundary to keep the content valid UTF-8
		line = string([]rune(line)[:section.MessageLimit-1])
	}
	w.session.ChannelMessageSend(w.channelID, line)
}

package section

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FetchTimeout bounds every remote URL retrieval.
const FetchTimeout = 30 * time.Second

// Fetcher retrieves the body text of a URL. Implementations must honor
// the context and fail on non-2xx responses.
type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

// HTTPFetcher is the production Fetcher backed by net/http.
type HTTPFetcher struct {
	Client *http.Client
}

// Get fetches the URL body with the configured client, bounded by
// FetchTimeout on top of whatever deadline the context carries.
func (f *HTTPFetcher) Get(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DefaultFetcher is used by URL sections that were not given an
// explicit fetcher, e.g. when deserialized from the repository.
var DefaultFetcher Fetcher = &HTTPFetcher{}

// URL is a section whose content is fetched live from a remote URL at
// render time. Only the URL itself is persisted; the fetched text is
// cached in memory after the most recent successful retrieval.
type URL struct {
	base
	url     string
	fetcher Fetcher

	// cached holds the split result of the last successful fetch.
	cached []string
}

// NewURL creates a remote URL section using the default fetcher.
func NewURL(name, url string) *URL {
	return &URL{
		base: base{name: name},
		url:  url,
	}
}

// URLFromDict deserializes a remote URL section payload.
func URLFromDict(name string, data map[string]any) Section {
	s := NewURL(name, dictString(data, "url"))
	s.takeCommon(data)
	return s
}

func (s *URL) Type() string { return TypeURL }

// URL returns the currently configured URL, empty if unset.
func (s *URL) URL() string { return s.url }

// SetFetcher overrides the fetcher, primarily for tests.
func (s *URL) SetFetcher(f Fetcher) { s.fetcher = f }

func (s *URL) getFetcher() Fetcher {
	if s.fetcher != nil {
		return s.fetcher
	}
	return DefaultFetcher
}

// Render fetches the URL and splits the body into message-sized
// paragraphs. Every render fetches independently. Fetch failures do not
// fail the caller; they produce a single explanatory paragraph so the
// published channel records the problem instead of silently dropping
// the section.
func (s *URL) Render(ctx context.Context) ([]string, error) {
	if s.url == "" {
		return []string{"**A URL has not been set for this section**"}, nil
	}

	body, err := s.getFetcher().Get(ctx, s.url)
	if err != nil {
		return []string{fmt.Sprintf("**ERROR**: Failed to retrieve `%s`: `%s`", s.url, err)}, nil
	}

	s.cached = splitParagraphs(body)
	return s.cached, nil
}

func (s *URL) Show() []string {
	commands := make([]string, 0, 3)
	if s.url != "" {
		commands = append(commands, fmt.Sprintf("section %q set %q", s.name, s.url))
	}
	return s.showCommon(commands)
}

func (s *URL) ToDict() map[string]any {
	return s.putCommon(map[string]any{
		"url": s.url,
	})
}

func (s *URL) ProcessCommand(ctx context.Context, command string, args []string, _ string, cc Context) string {
	if reply, handled := s.commonCommand(command, args, cc); handled {
		return reply
	}

	switch command {
	case "set":
		if len(args) < 1 || args[0] == "" {
			return "Usage: `set \"<url>\"`"
		}

		url := trimURLDecoration(args[0])

		// Fetch to validate before committing; a failure leaves the
		// prior URL untouched.
		body, err := s.getFetcher().Get(ctx, url)
		if err != nil {
			return fmt.Sprintf("Failed to retrieve URL: `%s`", err)
		}

		s.url = url
		s.cached = splitParagraphs(body)
		cc.notify()
		return fmt.Sprintf("URL set; retrieved %d messages' worth of text", len(s.cached))
	case "get":
		if s.url == "" {
			return "No URL has been set."
		}
		return fmt.Sprintf("Current URL: `%s`", s.url)
	}

	return fmt.Sprintf("Unknown command: `%s`\n\nAvailable commands: `set`, `get`, `header`, `footer`", command)
}

// trimURLDecoration strips surrounding backtick or angle-bracket pairs,
// only when a matching pair is present on both ends.
func trimURLDecoration(url string) string {
	for len(url) >= 2 {
		first, last := url[0], url[len(url)-1]
		if (first == '`' && last == '`') || (first == '<' && last == '>') {
			url = url[1 : len(url)-1]
			continue
		}
		break
	}
	return url
}

// splitParagraphs splits fetched text on blank lines and hard-splits the
// result, since remote text can contain lines of any length. A zero
// width space keeps the paragraph break visible when the chunks are
// published as separate messages.
func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	for i := range parts {
		if i < len(parts)-1 {
			parts[i] += "\n​"
		}
	}

	chunks, _ := Pack(parts, MessageLimit, true)
	return chunks
}

package web

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/infoboard/internal/errors"
	"github.com/hpungsan/infoboard/internal/notes"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "servers", "notes"
}

// ServerSummary is one row of the server list page.
type ServerSummary struct {
	ID           string
	SectionCount int
	InfoChannel  string
	Prefix       string
}

// ServersPageData is the template data for the server list page.
type ServersPageData struct {
	PageData
	Servers []ServerSummary
}

// SectionSummary is one row of a server's section list.
type SectionSummary struct {
	Name string
	Type string
}

// ServerPageData is the template data for the single-server page.
type ServerPageData struct {
	PageData
	ServerID string
	Sections []SectionSummary
	Config   map[string]string
}

// SectionPageData is the template data for the section preview page.
type SectionPageData struct {
	PageData
	ServerID   string
	Name       string
	Type       string
	Paragraphs []template.HTML
	Transcript []string
}

// NotesPageData is the template data for the notes page.
type NotesPageData struct {
	PageData
	ServerID string
	Notes    []notes.Note
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"formatTime": formatTime,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"servers": "servers.html",
		"server":  "server.html",
		"section": "section.html",
		"notes":   "notes.html",
		"error":   "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		log.Printf("template %q not found", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("template execution error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders a full error page for the given error.
func (r *Renderer) renderError(w http.ResponseWriter, err error) {
	var bErr *errors.BoardError
	if !stderrors.As(err, &bErr) {
		bErr = errors.NewInternal(err)
	}

	status := statusFor(bErr.Code)
	r.renderPageStatus(w, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
		},
		StatusCode: status,
		Message:    bErr.Message,
	})
}

// statusFor maps application error codes to HTTP statuses.
func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrNotFound, errors.ErrUnknownSection:
		return http.StatusNotFound
	case errors.ErrDuplicateName, errors.ErrUnknownSectionType, errors.ErrValidationFailed:
		return http.StatusBadRequest
	case errors.ErrFetchFailed, errors.ErrTransientDisconnect:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

package web

import (
	"html/template"
	"net/http"

	"github.com/hpungsan/infoboard/internal/errors"
	"github.com/hpungsan/infoboard/internal/notes"
	"github.com/hpungsan/infoboard/internal/store"
)

// Handlers contains HTTP route handlers for the preview UI.
type Handlers struct {
	mgr      *store.Manager
	notes    *notes.Service
	renderer *Renderer
}

// HandleServers handles GET /servers, listing every known server.
func (h *Handlers) HandleServers(w http.ResponseWriter, r *http.Request) {
	ids := h.mgr.ServerIDs()

	servers := make([]ServerSummary, 0, len(ids))
	for _, id := range ids {
		st, ok := h.mgr.Get(id)
		if !ok {
			continue
		}
		servers = append(servers, ServerSummary{
			ID:           id,
			SectionCount: len(st.Sections()),
			InfoChannel:  st.InfoChannel(),
			Prefix:       st.CommandPrefix(),
		})
	}

	h.renderer.renderPage(w, "servers", ServersPageData{
		PageData: PageData{
			Title:   "Servers",
			Version: h.renderer.version,
			Nav:     "servers",
		},
		Servers: servers,
	})
}

// HandleServer handles GET /servers/{id}, showing one server's sections
// and configuration.
func (h *Handlers) HandleServer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	st, ok := h.mgr.Get(id)
	if !ok {
		h.renderer.renderError(w, errors.NewNotFound(id))
		return
	}

	entries := st.Sections()
	sections := make([]SectionSummary, 0, len(entries))
	for _, entry := range entries {
		sections = append(sections, SectionSummary{
			Name: entry.Name,
			Type: entry.Section.Type(),
		})
	}

	h.renderer.renderPage(w, "server", ServerPageData{
		PageData: PageData{
			Title:   id,
			Version: h.renderer.version,
			Nav:     "servers",
		},
		ServerID: id,
		Sections: sections,
		Config:   st.Config(),
	})
}

// HandleSection handles GET /servers/{id}/sections/{name}, previewing
// one section the way publishing would lay it out. Rendering a URL
// section fetches its remote document, exactly as an update would.
func (h *Handlers) HandleSection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	name := r.PathValue("name")

	st, ok := h.mgr.Get(id)
	if !ok {
		h.renderer.renderError(w, errors.NewNotFound(id))
		return
	}

	sec, err := st.GetSection(name)
	if err != nil {
		h.renderer.renderError(w, err)
		return
	}

	paragraphs, err := sec.Render(r.Context())
	if err != nil {
		h.renderer.renderError(w, err)
		return
	}

	rendered := make([]template.HTML, 0, len(paragraphs)+2)
	rendered = append(rendered, renderMarkdown("## "+sec.Name()))
	if header := sec.Header(); header != "" {
		rendered = append(rendered, renderMarkdown(header))
	}
	for _, p := range paragraphs {
		rendered = append(rendered, renderMarkdown(p))
	}
	if footer := sec.Footer(); footer != "" {
		rendered = append(rendered, renderMarkdown(footer))
	}

	h.renderer.renderPage(w, "section", SectionPageData{
		PageData: PageData{
			Title:   sec.Name(),
			Version: h.renderer.version,
			Nav:     "servers",
		},
		ServerID:   id,
		Name:       sec.Name(),
		Type:       sec.Type(),
		Paragraphs: rendered,
		Transcript: sec.Show(),
	})
}

// HandleNotes handles GET /servers/{id}/notes.
func (h *Handlers) HandleNotes(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, ok := h.mgr.Get(id); !ok {
		h.renderer.renderError(w, errors.NewNotFound(id))
		return
	}

	list, err := h.notes.List(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, err)
		return
	}

	h.renderer.renderPage(w, "notes", NotesPageData{
		PageData: PageData{
			Title:   "Notes",
			Version: h.renderer.version,
			Nav:     "notes",
		},
		ServerID: id,
		Notes:    list,
	})
}

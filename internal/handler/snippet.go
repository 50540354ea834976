package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/ide-server/internal/model"
	"github.com/sakif/ide-server/internal/service"
)

// SnippetHandler serves /snippets. Snippets can be created, read and
// deleted; there is no update endpoint.
type SnippetHandler struct {
	snippets *service.SnippetService
	logger   *slog.Logger
}

func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

// HandleCreate saves a new snippet.
//
// HTTP: POST /snippets
// REQUEST BODY:
//
//	{"title": "hello", "language": "go", "code": "...",
//	 "description": "optional", "tags": ["optional", "list"]}
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSnippet
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("invalid snippet JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	snippet, err := h.snippets.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleList returns every snippet, most recently updated first.
//
// HTTP: GET /snippets
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	snippets, err := h.snippets.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

// HandleGetByID returns one snippet, or 404.
//
// HTTP: GET /snippets/{id}
func (h *SnippetHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	snippet, err := h.snippets.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes a snippet. 204 even if it did not exist.
//
// HTTP: DELETE /snippets/{id}
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.snippets.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

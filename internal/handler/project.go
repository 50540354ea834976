// Package handler contains the HTTP handlers for the REST API.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the request (URL params, JSON or multipart body)
//  2. Call exactly one service method
//  3. Write the response (JSON, raw bytes, or an empty 204)
//
// Handlers hold no business rules. Validation beyond "is this well-formed
// JSON" lives in the service layer, and status codes are chosen in one
// place, writeError.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/ide-server/internal/model"
	"github.com/sakif/ide-server/internal/service"
)

// ProjectHandler serves /projects.
type ProjectHandler struct {
	projects *service.ProjectService
	logger   *slog.Logger
}

func NewProjectHandler(projects *service.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// HandleCreate creates a project.
//
// HTTP: POST /projects
// REQUEST BODY: {"name": "demo", "description": "optional", "path": "/tmp/demo"}
// RESPONSE: 200 with the stored project, including its generated id.
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProject
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("invalid project JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	project, err := h.projects.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// HandleList returns every project, most recently updated first.
//
// HTTP: GET /projects
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// HandleGetByID returns one project, or 404.
//
// HTTP: GET /projects/{id}
func (h *ProjectHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	project, err := h.projects.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// HandleUpdate applies a partial update.
//
// HTTP: PUT /projects/{id}
// REQUEST BODY: {"name": "optional", "description": "optional"}
//
// Omitted (or null) fields keep their current value. The response is the
// merged project.
func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req model.UpdateProject
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("invalid project update JSON",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	project, err := h.projects.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// HandleDelete removes a project.
//
// HTTP: DELETE /projects/{id}
//
// Always 204 on success, whether or not the project existed.
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.projects.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/sakif/ide-server/internal/apperror"
	"github.com/sakif/ide-server/internal/service"
)

// FileHandler serves /files: multipart upload, raw download, list, delete.
type FileHandler struct {
	files    *service.FileService
	maxBytes int64
	logger   *slog.Logger
}

// NewFileHandler creates a FileHandler. maxBytes caps the whole upload
// request body, multipart framing included.
func NewFileHandler(files *service.FileService, maxBytes int64, logger *slog.Logger) *FileHandler {
	return &FileHandler{files: files, maxBytes: maxBytes, logger: logger}
}

// HandleUpload stores one uploaded file.
//
// HTTP: POST /files (multipart/form-data)
//
// ONE PART ONLY:
// The first part of the form is the file and must carry a filename.
// Any parts after it are never read, so a form with several files stores
// only the first one. The field name does not matter.
//
// The part is streamed with r.MultipartReader() instead of
// r.ParseMultipartForm, which would spool every part to memory or temp
// files before we get to look at the first one.
func (h *FileHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, apperror.ValidationFailed("body", "expected a multipart/form-data body"))
		return
	}

	part, err := mr.NextPart()
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, apperror.ValidationFailed("file", "no file field in request"))
			return
		}
		writeError(w, h.readError(err))
		return
	}
	defer part.Close()

	filename := part.FileName()
	if filename == "" {
		writeError(w, apperror.ValidationFailed("file", "first form field must be a file with a filename"))
		return
	}

	data, err := io.ReadAll(part)
	if err != nil {
		writeError(w, h.readError(err))
		return
	}

	file, err := h.files.Upload(r.Context(), filename, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// readError classifies a failure while reading the upload body.
func (h *FileHandler) readError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.TooLarge(fmt.Sprintf("upload exceeds the %d byte limit", maxErr.Limit))
	}
	h.logger.Warn("malformed multipart upload", slog.String("error", err.Error()))
	return apperror.ValidationFailed("body", "malformed multipart body")
}

// HandleDownload writes the stored bytes back unchanged.
//
// HTTP: GET /files/{id}
//
// Content-Type is the recorded mime type, and Content-Disposition carries
// the original client filename so browsers save it under that name.
func (h *FileHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	file, data, err := h.files.Open(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", contentDisposition(file.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write file body",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
	}
}

// HandleList returns all file records, most recently created first.
//
// HTTP: GET /files
func (h *FileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// HandleDelete removes the record and its blob. Unknown ids are 404.
//
// HTTP: DELETE /files/{id}
func (h *FileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.files.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// contentDisposition builds an attachment header for filename. Non-ASCII
// names are emitted with the RFC 2231 filename* parameter; a name that
// cannot be encoded at all falls back to a bare "attachment".
func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

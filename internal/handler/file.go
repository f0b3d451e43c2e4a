package handler

import (
	"log/slog"
	"net/http"

	models "dropzone/internal/domain/models/drive"
	driveSvc "dropzone/internal/domain/services/drive"
	"dropzone/internal/httputil"
)

// FileHandler handles file HTTP requests
type FileHandler struct {
	fileService driveSvc.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService driveSvc.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// ListFiles returns files, optionally filtered
// GET /api/files?folderId=&type=&search=
// GET /api/files?unfiled=true returns only files outside any folder
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		files []models.File
		err   error
	)
	if query.Get("unfiled") == "true" {
		files, err = h.fileService.ListByFolder(r.Context(), nil)
	} else {
		files, err = h.fileService.ListFiles(r.Context(), models.FileFilter{
			FolderID: httputil.QueryOptional(r, "folderId"),
			Type:     query.Get("type"),
			Search:   query.Get("search"),
		})
	}
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// SearchFiles matches files by name or MIME type
// GET /api/files/search?q=&folderId=
func (h *FileHandler) SearchFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.fileService.SearchFiles(r.Context(), r.URL.Query().Get("q"), httputil.QueryOptional(r, "folderId"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// CreateFile stores a file record
// POST /api/files
func (h *FileHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req driveSvc.CreateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, err := h.fileService.CreateFile(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*models.File, error) {
			return h.fileService.GetFile(r.Context(), id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// GetFile retrieves a file by ID
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "File")
	if !ok {
		return
	}

	file, err := h.fileService.GetFile(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// UpdateFile renames a file, changes its status/progress or refiles it
// PATCH /api/files/{id}
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "File")
	if !ok {
		return
	}

	var req driveSvc.UpdateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, err := h.fileService.UpdateFile(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// MoveFile sets the folder of a file. A null or empty folderId unfiles it.
// POST /api/files/{id}/move
func (h *FileHandler) MoveFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "File")
	if !ok {
		return
	}

	var req driveSvc.MoveFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, err := h.fileService.MoveFile(r.Context(), id, req.FolderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile removes a file, stopping its upload if one is running
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "File")
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

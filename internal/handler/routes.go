package handler

import "net/http"

// Handlers groups the HTTP handlers mounted by RegisterRoutes
type Handlers struct {
	Folder *FolderHandler
	File   *FileHandler
	Tree   *TreeHandler
	Upload *UploadHandler
}

// RegisterRoutes mounts every API route on mux
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	mux.HandleFunc("GET /health", Health)

	// Folder routes
	mux.HandleFunc("GET /api/folders", h.Folder.ListFolders)
	mux.HandleFunc("POST /api/folders", h.Folder.CreateFolder)
	mux.HandleFunc("GET /api/folders/tree", h.Tree.GetTree)
	mux.HandleFunc("GET /api/folders/{id}", h.Folder.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folder.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folder.DeleteFolder)
	mux.HandleFunc("POST /api/folders/{id}/move", h.Folder.MoveFolder)
	mux.HandleFunc("GET /api/folders/{id}/path", h.Folder.GetFolderPath)

	// File routes
	mux.HandleFunc("GET /api/files", h.File.ListFiles)
	mux.HandleFunc("POST /api/files", h.File.CreateFile)
	mux.HandleFunc("GET /api/files/search", h.File.SearchFiles)
	mux.HandleFunc("GET /api/files/{id}", h.File.GetFile)
	mux.HandleFunc("PATCH /api/files/{id}", h.File.UpdateFile)
	mux.HandleFunc("DELETE /api/files/{id}", h.File.DeleteFile)
	mux.HandleFunc("POST /api/files/{id}/move", h.File.MoveFile)

	// Upload routes
	mux.HandleFunc("POST /api/uploads", h.Upload.StartUpload)
	mux.HandleFunc("GET /api/uploads", h.Upload.ListSessions)
	mux.HandleFunc("GET /api/uploads/{id}", h.Upload.GetSession)
	mux.HandleFunc("DELETE /api/uploads/{id}", h.Upload.DeleteSession)
	mux.HandleFunc("POST /api/uploads/{id}/cancel", h.Upload.CancelUpload)
	mux.HandleFunc("GET /api/uploads/{id}/events", h.Upload.StreamEvents)
}

package drive

import (
	"context"

	"dropzone/internal/domain/models/drive"
	"dropzone/internal/httputil"
)

// FileService handles file records
type FileService interface {
	CreateFile(ctx context.Context, req *CreateFileRequest) (*drive.File, error)
	GetFile(ctx context.Context, id string) (*drive.File, error)
	ListFiles(ctx context.Context, filter drive.FileFilter) ([]drive.File, error)
	ListByFolder(ctx context.Context, folderID *string) ([]drive.File, error)
	UpdateFile(ctx context.Context, id string, req *UpdateFileRequest) (*drive.File, error)

	// DeleteFile removes a file and stops any upload still running for it
	DeleteFile(ctx context.Context, id string) error

	// MoveFile sets the file's folder (nil = unfiled)
	MoveFile(ctx context.Context, id string, folderID *string) (*drive.File, error)

	// SearchFiles matches query against name or MIME type, case-insensitively
	SearchFiles(ctx context.Context, query string, folderID *string) ([]drive.File, error)
}

// CreateFileRequest represents a file creation request.
// ID is optional; a file_<timestamp> id is generated when empty.
type CreateFileRequest struct {
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name"`
	Size      int64            `json:"size"`
	Type      string           `json:"type"`
	Status    drive.FileStatus `json:"status,omitempty"`
	Progress  *int             `json:"progress,omitempty"`
	FolderID  *string          `json:"folderId,omitempty"`
	URL       string           `json:"url,omitempty"`
	Thumbnail string           `json:"thumbnail,omitempty"`
}

// UpdateFileRequest represents a file update request
type UpdateFileRequest struct {
	Name     *string                 `json:"name,omitempty"`
	Status   *drive.FileStatus       `json:"status,omitempty"`
	Progress *int                    `json:"progress,omitempty"`
	FolderID httputil.OptionalString `json:"folderId"` // absent = keep, null = unfile
}

// MoveFileRequest represents a file move request
type MoveFileRequest struct {
	FolderID *string `json:"folderId"` // nil = unfiled
}

// UploadCanceller stops a running upload for a file. Implemented by the
// upload service; the file service uses it when a file is deleted mid-upload.
type UploadCanceller interface {
	CancelFile(fileID string) bool
}

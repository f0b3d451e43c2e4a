package drive

import (
	"context"

	"dropzone/internal/domain/models/drive"
)

// UploadService runs the upload pipeline: validation, sessions and the
// cancellable progress tasks that feed completed files into the file store.
// Each running session is published as a stream keyed by the session ID.
type UploadService interface {
	// StartUpload validates the files, records a session and starts progress
	// tasks in the background
	StartUpload(ctx context.Context, req *StartUploadRequest) (*StartUploadResult, error)

	ListSessions(ctx context.Context) ([]drive.UploadSession, error)
	GetSession(ctx context.Context, id string) (*drive.UploadSession, error)

	// CancelUpload stops every task of a session
	CancelUpload(ctx context.Context, id string) (*drive.UploadSession, error)

	// DeleteSession cancels (if needed) and removes a session
	DeleteSession(ctx context.Context, id string) error

	// Shutdown cancels running tasks and waits for them to exit
	Shutdown(ctx context.Context) error
}

// UploadFile describes one file of an upload request
type UploadFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// StartUploadRequest represents an upload request
type StartUploadRequest struct {
	Files    []UploadFile `json:"files"`
	FolderID *string      `json:"folderId,omitempty"`
}

// RejectedFile reports a file that failed upload validation
type RejectedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// StartUploadResult is returned when an upload session starts
type StartUploadResult struct {
	Session  *drive.UploadSession `json:"session"`
	Files    []drive.File         `json:"files"`
	Rejected []RejectedFile       `json:"rejected"`
}

package drive

import (
	"fmt"
	"time"
)

// FileStatus is the upload lifecycle state of a file
type FileStatus string

const (
	FileStatusUploading FileStatus = "uploading"
	FileStatusCompleted FileStatus = "completed"
	FileStatusFailed    FileStatus = "failed"
)

// Progress bounds
const (
	ProgressMin = 0
	ProgressMax = 100
)

// Valid reports whether s is a known status
func (s FileStatus) Valid() bool {
	switch s {
	case FileStatusUploading, FileStatusCompleted, FileStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is allowed from s
func (s FileStatus) Terminal() bool {
	return s == FileStatusCompleted || s == FileStatusFailed
}

// CanTransition reports whether a file may move from s to next.
// uploading -> completed | failed; terminal states only accept themselves.
func (s FileStatus) CanTransition(next FileStatus) bool {
	if s == next {
		return true
	}
	return s == FileStatusUploading && next.Terminal()
}

type File struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Size       int64      `json:"size" db:"size"` // bytes
	Type       string     `json:"type" db:"type"` // MIME type
	Status     FileStatus `json:"status" db:"status"`
	Progress   int        `json:"progress" db:"progress"`
	FolderID   *string    `json:"folderId" db:"folder_id"` // NULL = unfiled
	URL        string     `json:"url,omitempty" db:"url"`
	Thumbnail  string     `json:"thumbnail,omitempty" db:"thumbnail"`
	UploadedAt time.Time  `json:"uploadedAt" db:"uploaded_at"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

// Clone returns a deep copy so callers never share pointer fields
func (f File) Clone() File {
	if f.FolderID != nil {
		folderID := *f.FolderID
		f.FolderID = &folderID
	}
	if f.UpdatedAt != nil {
		updatedAt := *f.UpdatedAt
		f.UpdatedAt = &updatedAt
	}
	return f
}

// InFolder reports whether the file belongs to folderID (nil = unfiled)
func (f *File) InFolder(folderID *string) bool {
	if folderID == nil || f.FolderID == nil {
		return folderID == nil && f.FolderID == nil
	}
	return *f.FolderID == *folderID
}

// SetStatus applies a status transition, keeping progress consistent with it
func (f *File) SetStatus(next FileStatus) error {
	if !next.Valid() {
		return fmt.Errorf("unknown file status %q", next)
	}
	if !f.Status.CanTransition(next) {
		return fmt.Errorf("cannot change file status from %s to %s", f.Status, next)
	}
	f.Status = next
	if next == FileStatusCompleted {
		f.Progress = ProgressMax
	}
	return nil
}

// ClampProgress bounds a progress value to 0..100
func ClampProgress(progress int) int {
	if progress < ProgressMin {
		return ProgressMin
	}
	if progress > ProgressMax {
		return ProgressMax
	}
	return progress
}

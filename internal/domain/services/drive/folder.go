package drive

import (
	"context"

	"dropzone/internal/domain/models/drive"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a new folder and materializes its path
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*drive.Folder, error)

	// GetFolder retrieves a folder by ID
	GetFolder(ctx context.Context, id string) (*drive.Folder, error)

	// ListFolders returns every folder as a flat list in stored order
	ListFolders(ctx context.Context) ([]drive.Folder, error)

	// GetFolderPath returns the materialized path of a folder ("/" for nil)
	GetFolderPath(ctx context.Context, id *string) (string, error)

	// UpdateFolder renames or restyles a folder; renames cascade to descendants
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*drive.Folder, error)

	// MoveFolder re-parents a folder (nil = root) and rewrites descendant paths
	MoveFolder(ctx context.Context, id string, newParentID *string) (*drive.Folder, error)

	// DeleteFolder removes a folder with all descendant folders. Files inside
	// any removed folder are unfiled (folderId set to nil).
	DeleteFolder(ctx context.Context, id string) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"` // nil = root
	Color    string  `json:"color,omitempty"`
	Icon     string  `json:"icon,omitempty"`
}

// UpdateFolderRequest represents a folder update request
type UpdateFolderRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

// MoveFolderRequest represents a folder move request
type MoveFolderRequest struct {
	ParentID *string `json:"parentId"` // nil = move to root
}

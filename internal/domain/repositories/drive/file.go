package drive

import (
	"context"

	"dropzone/internal/domain/models/drive"
)

// FileRepository defines data access operations for files.
// List returns files in stored (insertion) order.
type FileRepository interface {
	// List retrieves all files
	List(ctx context.Context) ([]drive.File, error)

	// Get retrieves a file by ID
	Get(ctx context.Context, id string) (*drive.File, error)

	// Insert stores a new file
	Insert(ctx context.Context, file *drive.File) error

	// Update replaces a stored file
	Update(ctx context.Context, file *drive.File) error

	// Remove deletes a file
	Remove(ctx context.Context, id string) error

	// ClearFolder sets folder_id to NULL on every file in the given folders
	// and returns how many files were unfiled
	ClearFolder(ctx context.Context, folderIDs ...string) (int, error)

	// ReplaceAll swaps the whole collection (used for seeding)
	ReplaceAll(ctx context.Context, files []drive.File) error
}

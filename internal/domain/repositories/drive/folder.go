package drive

import (
	"context"

	"dropzone/internal/domain/models/drive"
)

// FolderRepository defines data access operations for folders.
// List returns folders in stored (insertion) order.
type FolderRepository interface {
	// List retrieves all folders as a flat list
	List(ctx context.Context) ([]drive.Folder, error)

	// Get retrieves a folder by ID
	Get(ctx context.Context, id string) (*drive.Folder, error)

	// Insert stores a new folder
	Insert(ctx context.Context, folder *drive.Folder) error

	// Update replaces a stored folder
	Update(ctx context.Context, folder *drive.Folder) error

	// Remove deletes folders by ID; unknown IDs are ignored
	Remove(ctx context.Context, ids ...string) error

	// ReplaceAll swaps the whole collection (used for seeding)
	ReplaceAll(ctx context.Context, folders []drive.Folder) error
}

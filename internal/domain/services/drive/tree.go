package drive

import (
	"context"

	"dropzone/internal/domain/models/drive"
)

// TreeService defines operations for building the folder tree
type TreeService interface {
	// GetTree builds the nested folder tree with per-folder file counts
	GetTree(ctx context.Context) (*drive.Tree, error)
}

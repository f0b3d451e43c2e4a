package drive

import (
	"context"
	"fmt"
	"log/slog"

	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
	driveRepo "dropzone/internal/domain/repositories/drive"
	driveSvc "dropzone/internal/domain/services/drive"
)

// BuildTree nests a flat folder list. Roots and siblings keep input order.
//
// A parentId that does not resolve fails with ParentNotFound rather than
// promoting the folder to a root, and folders that cannot be reached from any
// root (a parent cycle) fail with InvalidOperation.
func BuildTree(folders []models.Folder) ([]*models.FolderNode, error) {
	nodes := make(map[string]*models.FolderNode, len(folders))

	// First pass: create all nodes
	for _, folder := range folders {
		nodes[folder.ID] = &models.FolderNode{
			Folder:   folder.Clone(),
			Children: []*models.FolderNode{},
		}
	}

	// Second pass: attach children to parents
	roots := make([]*models.FolderNode, 0)
	for _, folder := range folders {
		node := nodes[folder.ID]
		if folder.IsRoot() {
			roots = append(roots, node)
			continue
		}

		parent, ok := nodes[*folder.ParentID]
		if !ok {
			return nil, &domain.ParentNotFoundError{
				Message:  fmt.Sprintf("folder %s references missing parent %s", folder.ID, *folder.ParentID),
				ParentID: *folder.ParentID,
			}
		}
		parent.Children = append(parent.Children, node)
	}

	if reached := len(Flatten(roots)); reached != len(folders) {
		return nil, &domain.InvalidOperationError{
			Message: fmt.Sprintf("folder hierarchy has a cycle: %d of %d folders unreachable from a root", len(folders)-reached, len(folders)),
		}
	}

	return roots, nil
}

// Flatten lists every node in pre-order: parent before children, siblings
// in order
func Flatten(roots []*models.FolderNode) []*models.FolderNode {
	flattened := make([]*models.FolderNode, 0)

	var traverse func(nodes []*models.FolderNode)
	traverse = func(nodes []*models.FolderNode) {
		for _, node := range nodes {
			flattened = append(flattened, node)
			if len(node.Children) > 0 {
				traverse(node.Children)
			}
		}
	}

	traverse(roots)
	return flattened
}

// FindPath searches the tree depth-first and returns the path of the first
// node with the given ID. ok is false when no node matches; callers must not
// treat a missing folder as the root.
func FindPath(roots []*models.FolderNode, id string) (path string, ok bool) {
	for _, node := range roots {
		if node.ID == id {
			return node.Path, true
		}
		if path, ok := FindPath(node.Children, id); ok {
			return path, true
		}
	}
	return "", false
}

// subtreeIDs returns folderID and every folder below it, in pre-order
func subtreeIDs(folders []models.Folder, folderID string) []string {
	children := make(map[string][]string)
	for _, f := range folders {
		if f.ParentID != nil {
			children[*f.ParentID] = append(children[*f.ParentID], f.ID)
		}
	}

	ids := make([]string, 0)
	seen := make(map[string]struct{})
	var walk func(id string)
	walk = func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		for _, child := range children[id] {
			walk(child)
		}
	}
	walk(folderID)
	return ids
}

// treeService implements the TreeService interface
type treeService struct {
	folderRepo driveRepo.FolderRepository
	fileRepo   driveRepo.FileRepository
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo driveRepo.FolderRepository,
	fileRepo driveRepo.FileRepository,
	logger *slog.Logger,
) driveSvc.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		logger:     logger,
	}
}

// GetTree builds the folder tree, counting the files held directly by each
// folder and collecting the unfiled ones
func (s *treeService) GetTree(ctx context.Context) (*models.Tree, error) {
	folders, err := s.folderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	files, err := s.fileRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	roots, err := BuildTree(folders)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.FolderNode, len(folders))
	for _, node := range Flatten(roots) {
		byID[node.ID] = node
	}

	unfiled := make([]models.File, 0)
	for _, file := range files {
		if file.FolderID == nil {
			unfiled = append(unfiled, file)
			continue
		}
		if node, ok := byID[*file.FolderID]; ok {
			node.FileCount++
		} else {
			s.logger.Warn("file references missing folder",
				"file_id", file.ID,
				"folder_id", *file.FolderID,
			)
		}
	}

	s.logger.Debug("folder tree built",
		"folder_count", len(folders),
		"file_count", len(files),
	)

	return &models.Tree{
		Folders:      roots,
		UnfiledFiles: unfiled,
		TotalFolders: len(folders),
		TotalFiles:   len(files),
	}, nil
}

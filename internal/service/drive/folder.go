package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dropzone/internal/config"
	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
	"dropzone/internal/domain/repositories"
	driveRepo "dropzone/internal/domain/repositories/drive"
	driveSvc "dropzone/internal/domain/services/drive"
	"dropzone/internal/utils"
)

type folderService struct {
	folderRepo driveRepo.FolderRepository
	fileRepo   driveRepo.FileRepository
	txManager  repositories.TransactionManager
	ids        *utils.IDGenerator
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo driveRepo.FolderRepository,
	fileRepo driveRepo.FileRepository,
	txManager repositories.TransactionManager,
	ids *utils.IDGenerator,
	logger *slog.Logger,
) driveSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		txManager:  txManager,
		ids:        ids,
		logger:     logger,
	}
}

// CreateFolder creates a new folder under req.ParentID (nil = root)
func (s *folderService) CreateFolder(ctx context.Context, req *driveSvc.CreateFolderRequest) (*models.Folder, error) {
	req.ParentID = normalizeID(req.ParentID)
	if err := validateCreateFolderRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	folder := &models.Folder{
		ID:        s.ids.Next(utils.FolderPrefix),
		Name:      utils.NormalizeName(req.Name),
		ParentID:  req.ParentID,
		Color:     req.Color,
		Icon:      req.Icon,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folders, err := s.folderRepo.List(txCtx)
		if err != nil {
			return fmt.Errorf("failed to list folders: %w", err)
		}
		lookup := LookupFromList(folders)

		if err := checkSiblingName(folders, folder.ParentID, folder.Name, ""); err != nil {
			return err
		}

		path, err := ComputePath(folder, lookup)
		if err != nil {
			return err
		}
		if err := checkPathLength(path); err != nil {
			return err
		}
		folder.Path = path

		return s.folderRepo.Insert(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"path", folder.Path,
	)

	return folder, nil
}

// GetFolder retrieves a folder by ID
func (s *folderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return s.folderRepo.Get(ctx, id)
}

// ListFolders returns the flat folder list
func (s *folderService) ListFolders(ctx context.Context) ([]models.Folder, error) {
	return s.folderRepo.List(ctx)
}

// GetFolderPath returns "/" for the root (nil id) and the stored path
// otherwise. An unknown id is NotFound, never "/".
func (s *folderService) GetFolderPath(ctx context.Context, id *string) (string, error) {
	id = normalizeID(id)
	if id == nil {
		return models.RootPath, nil
	}

	folder, err := s.folderRepo.Get(ctx, *id)
	if err != nil {
		return "", err
	}
	return folder.Path, nil
}

// UpdateFolder renames or restyles a folder. A rename rewrites the paths of
// the whole subtree.
func (s *folderService) UpdateFolder(ctx context.Context, id string, req *driveSvc.UpdateFolderRequest) (*models.Folder, error) {
	if err := validateUpdateFolderRequest(req); err != nil {
		return nil, err
	}

	var updated *models.Folder
	var oldPath string
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folders, err := s.folderRepo.List(txCtx)
		if err != nil {
			return fmt.Errorf("failed to list folders: %w", err)
		}

		folder := findFolder(folders, id)
		if folder == nil {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		oldPath = folder.Path

		if req.Color != nil {
			folder.Color = *req.Color
		}
		if req.Icon != nil {
			folder.Icon = *req.Icon
		}
		folder.UpdatedAt = time.Now()

		if req.Name != nil {
			name := utils.NormalizeName(*req.Name)
			if err := checkSiblingName(folders, folder.ParentID, name, folder.ID); err != nil {
				return err
			}
			folder.Name = name

			changed, err := rewriteSubtreePaths(folders, folder.ID, folder.UpdatedAt)
			if err != nil {
				return err
			}
			for i := range changed {
				if err := s.folderRepo.Update(txCtx, &changed[i]); err != nil {
					return err
				}
			}
		} else if err := s.folderRepo.Update(txCtx, folder); err != nil {
			return err
		}

		result := folder.Clone()
		updated = &result
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder updated",
		"id", updated.ID,
		"name", updated.Name,
		"old_path", oldPath,
		"path", updated.Path,
	)

	return updated, nil
}

// MoveFolder re-parents a folder and rewrites the paths of its subtree in one
// transaction. Moving a folder into itself or any of its descendants fails
// with InvalidOperation and changes nothing.
func (s *folderService) MoveFolder(ctx context.Context, id string, newParentID *string) (*models.Folder, error) {
	newParentID = normalizeID(newParentID)

	var moved *models.Folder
	var oldPath string
	var rewritten int
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folders, err := s.folderRepo.List(txCtx)
		if err != nil {
			return fmt.Errorf("failed to list folders: %w", err)
		}
		lookup := LookupFromList(folders)

		folder := findFolder(folders, id)
		if folder == nil {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		oldPath = folder.Path

		if newParentID != nil {
			if _, ok := lookup(*newParentID); !ok {
				return &domain.ParentNotFoundError{
					Message:  fmt.Sprintf("parent folder %s not found", *newParentID),
					ParentID: *newParentID,
				}
			}

			// Prevent circular references
			if IsSelfOrDescendant(folder.ID, *newParentID, lookup) {
				return &domain.InvalidOperationError{
					Message: fmt.Sprintf("cannot move folder %s into itself or one of its descendants", folder.ID),
				}
			}
		}

		if err := checkSiblingName(folders, newParentID, folder.Name, folder.ID); err != nil {
			return err
		}

		folder.ParentID = newParentID
		folder.UpdatedAt = time.Now()

		changed, err := rewriteSubtreePaths(folders, folder.ID, folder.UpdatedAt)
		if err != nil {
			return err
		}
		for i := range changed {
			if err := s.folderRepo.Update(txCtx, &changed[i]); err != nil {
				return err
			}
		}
		rewritten = len(changed) - 1

		result := folder.Clone()
		moved = &result
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder moved",
		"id", moved.ID,
		"parent_id", moved.ParentID,
		"old_path", oldPath,
		"path", moved.Path,
		"descendants_rewritten", rewritten,
	)

	return moved, nil
}

// DeleteFolder removes a folder and all descendant folders. Descendants are
// every folder below it in the parent chain plus any folder whose path lies
// under the deleted path. Files held by removed folders are unfiled.
func (s *folderService) DeleteFolder(ctx context.Context, id string) error {
	var removed []string
	var unfiled int
	var path string
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folders, err := s.folderRepo.List(txCtx)
		if err != nil {
			return fmt.Errorf("failed to list folders: %w", err)
		}

		folder := findFolder(folders, id)
		if folder == nil {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		path = folder.Path

		removed = subtreeIDs(folders, id)
		inSubtree := make(map[string]struct{}, len(removed))
		for _, rid := range removed {
			inSubtree[rid] = struct{}{}
		}
		for _, f := range folders {
			if _, ok := inSubtree[f.ID]; !ok && folder.Path != "" && HasPathPrefix(f.Path, folder.Path) {
				removed = append(removed, f.ID)
			}
		}

		unfiled, err = s.fileRepo.ClearFolder(txCtx, removed...)
		if err != nil {
			return fmt.Errorf("failed to unfile files: %w", err)
		}

		return s.folderRepo.Remove(txCtx, removed...)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted",
		"id", id,
		"path", path,
		"folders_removed", len(removed),
		"files_unfiled", unfiled,
	)

	return nil
}

// rewriteSubtreePaths recomputes the path of rootID and every folder below
// it, in pre-order, so each child builds on its parent's new path. folders is
// modified in place; the changed folders are returned.
func rewriteSubtreePaths(folders []models.Folder, rootID string, now time.Time) ([]models.Folder, error) {
	lookup := LookupFromList(folders)

	changed := make([]models.Folder, 0)
	for i, id := range subtreeIDs(folders, rootID) {
		folder, _ := lookup(id)

		path, err := ComputePath(folder, lookup)
		if err != nil {
			return nil, err
		}
		if err := checkPathLength(path); err != nil {
			return nil, err
		}

		if i > 0 && folder.Path == path {
			continue
		}
		folder.Path = path
		folder.UpdatedAt = now
		changed = append(changed, folder.Clone())
	}
	return changed, nil
}

// checkSiblingName rejects a name already used by another folder with the
// same parent. Unique sibling names keep materialized paths unique.
func checkSiblingName(folders []models.Folder, parentID *string, name, selfID string) error {
	for _, f := range folders {
		if f.ID == selfID || f.Name != name || !sameParent(f.ParentID, parentID) {
			continue
		}
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
			ResourceType: "folder",
			ResourceID:   f.ID,
		}
	}
	return nil
}

func checkPathLength(path string) error {
	if len(path) > config.MaxFolderPathLength {
		return &domain.InvalidOperationError{
			Message: fmt.Sprintf("folder path exceeds maximum length of %d", config.MaxFolderPathLength),
		}
	}
	return nil
}

// findFolder returns a pointer into folders, or nil
func findFolder(folders []models.Folder, id string) *models.Folder {
	for i := range folders {
		if folders[i].ID == id {
			return &folders[i]
		}
	}
	return nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// normalizeID treats an empty string as "no folder"
func normalizeID(id *string) *string {
	if id != nil && *id == "" {
		return nil
	}
	return id
}

// isNotFound reports whether err is a NotFound for the referenced folder
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

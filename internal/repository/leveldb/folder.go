package leveldb

import (
	"context"
	"errors"
	"fmt"

	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
	driveRepo "dropzone/internal/domain/repositories/drive"
)

// FolderRepository stores folders under /folders/<id>
type FolderRepository struct {
	store *Store
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(store *Store) driveRepo.FolderRepository {
	return &FolderRepository{store: store}
}

// List retrieves all folders in insertion order
func (r *FolderRepository) List(ctx context.Context) ([]models.Folder, error) {
	records, err := list[models.Folder](ctx, r.store.rw(ctx), foldersKey)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	folders := make([]models.Folder, len(records))
	for i := range records {
		folders[i] = records[i].Value
	}
	return folders, nil
}

// Get retrieves a folder by ID
func (r *FolderRepository) Get(ctx context.Context, id string) (*models.Folder, error) {
	rec, err := get[models.Folder](ctx, r.store.rw(ctx), foldersKey.ChildString(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return &rec.Value, nil
}

// Insert stores a new folder
func (r *FolderRepository) Insert(ctx context.Context, folder *models.Folder) error {
	rw := r.store.rw(ctx)
	key := foldersKey.ChildString(folder.ID)

	exists, err := rw.Has(ctx, key)
	if err != nil {
		return fmt.Errorf("insert folder: %w", err)
	}
	if exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder %s already exists", folder.ID),
			ResourceType: "folder",
			ResourceID:   folder.ID,
		}
	}

	rec := record[models.Folder]{Seq: r.store.nextSeq(), Value: folder.Clone()}
	if err := put(ctx, rw, key, rec); err != nil {
		return fmt.Errorf("insert folder: %w", err)
	}
	return nil
}

// Update replaces a stored folder, keeping its position
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	rw := r.store.rw(ctx)
	key := foldersKey.ChildString(folder.ID)

	rec, err := get[models.Folder](ctx, rw, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	rec.Value = folder.Clone()
	if err := put(ctx, rw, key, *rec); err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	return nil
}

// Remove deletes folders by ID; unknown IDs are ignored
func (r *FolderRepository) Remove(ctx context.Context, ids ...string) error {
	rw := r.store.rw(ctx)
	for _, id := range ids {
		if err := rw.Delete(ctx, foldersKey.ChildString(id)); err != nil {
			return fmt.Errorf("remove folder %s: %w", id, err)
		}
	}
	return nil
}

// ReplaceAll swaps the whole folder collection
func (r *FolderRepository) ReplaceAll(ctx context.Context, folders []models.Folder) error {
	if err := deleteAll(ctx, r.store.rw(ctx), foldersKey); err != nil {
		return fmt.Errorf("clear folders: %w", err)
	}
	for i := range folders {
		if err := r.Insert(ctx, &folders[i]); err != nil {
			return err
		}
	}
	return nil
}

package memory

import (
	"context"
	"fmt"

	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
	driveRepo "dropzone/internal/domain/repositories/drive"
)

// FolderRepository implements drive.FolderRepository over a Store
type FolderRepository struct {
	store *Store
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(store *Store) driveRepo.FolderRepository {
	return &FolderRepository{store: store}
}

// List returns a copy of every folder in insertion order
func (r *FolderRepository) List(ctx context.Context) ([]models.Folder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	folders := make([]models.Folder, len(r.store.folders))
	for i := range r.store.folders {
		folders[i] = r.store.folders[i].Clone()
	}
	return folders, nil
}

// Get retrieves a folder by ID
func (r *FolderRepository) Get(ctx context.Context, id string) (*models.Folder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	folder := r.store.folders[i].Clone()
	return &folder, nil
}

// Insert appends a new folder
func (r *FolderRepository) Insert(ctx context.Context, folder *models.Folder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.indexOf(folder.ID) >= 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder %s already exists", folder.ID),
			ResourceType: "folder",
			ResourceID:   folder.ID,
		}
	}
	r.store.folders = append(r.store.folders, folder.Clone())
	return nil
}

// Update replaces a folder in place, keeping its position
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	i := r.indexOf(folder.ID)
	if i < 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	r.store.folders[i] = folder.Clone()
	return nil
}

// Remove deletes folders by ID
func (r *FolderRepository) Remove(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	kept := r.store.folders[:0]
	for _, f := range r.store.folders {
		if _, ok := remove[f.ID]; !ok {
			kept = append(kept, f)
		}
	}
	r.store.folders = kept
	return nil
}

// ReplaceAll swaps the whole collection
func (r *FolderRepository) ReplaceAll(ctx context.Context, folders []models.Folder) error {
	next := make([]models.Folder, len(folders))
	for i := range folders {
		next[i] = folders[i].Clone()
	}

	r.store.mu.Lock()
	r.store.folders = next
	r.store.mu.Unlock()
	return nil
}

// indexOf must be called with the store lock held
func (r *FolderRepository) indexOf(id string) int {
	for i := range r.store.folders {
		if r.store.folders[i].ID == id {
			return i
		}
	}
	return -1
}

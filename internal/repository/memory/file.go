package memory

import (
	"context"
	"fmt"
	"time"

	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
	driveRepo "dropzone/internal/domain/repositories/drive"
)

// FileRepository implements drive.FileRepository over a Store
type FileRepository struct {
	store *Store
}

// NewFileRepository creates a new file repository
func NewFileRepository(store *Store) driveRepo.FileRepository {
	return &FileRepository{store: store}
}

// List returns a copy of every file in insertion order
func (r *FileRepository) List(ctx context.Context) ([]models.File, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	files := make([]models.File, len(r.store.files))
	for i := range r.store.files {
		files[i] = r.store.files[i].Clone()
	}
	return files, nil
}

// Get retrieves a file by ID
func (r *FileRepository) Get(ctx context.Context, id string) (*models.File, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	file := r.store.files[i].Clone()
	return &file, nil
}

// Insert appends a new file
func (r *FileRepository) Insert(ctx context.Context, file *models.File) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.indexOf(file.ID) >= 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("file %s already exists", file.ID),
			ResourceType: "file",
			ResourceID:   file.ID,
		}
	}
	r.store.files = append(r.store.files, file.Clone())
	return nil
}

// Update replaces a file in place, keeping its position
func (r *FileRepository) Update(ctx context.Context, file *models.File) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	i := r.indexOf(file.ID)
	if i < 0 {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}
	r.store.files[i] = file.Clone()
	return nil
}

// Remove deletes a file
func (r *FileRepository) Remove(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	r.store.files = append(r.store.files[:i], r.store.files[i+1:]...)
	return nil
}

// ClearFolder unfiles every file stored in one of folderIDs
func (r *FileRepository) ClearFolder(ctx context.Context, folderIDs ...string) (int, error) {
	if len(folderIDs) == 0 {
		return 0, nil
	}

	targets := make(map[string]struct{}, len(folderIDs))
	for _, id := range folderIDs {
		targets[id] = struct{}{}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	count := 0
	for i := range r.store.files {
		f := &r.store.files[i]
		if f.FolderID == nil {
			continue
		}
		if _, ok := targets[*f.FolderID]; ok {
			f.FolderID = nil
			updatedAt := now
			f.UpdatedAt = &updatedAt
			count++
		}
	}
	return count, nil
}

// ReplaceAll swaps the whole collection
func (r *FileRepository) ReplaceAll(ctx context.Context, files []models.File) error {
	next := make([]models.File, len(files))
	for i := range files {
		next[i] = files[i].Clone()
	}

	r.store.mu.Lock()
	r.store.files = next
	r.store.mu.Unlock()
	return nil
}

// indexOf must be called with the store lock held
func (r *FileRepository) indexOf(id string) int {
	for i := range r.store.files {
		if r.store.files[i].ID == id {
			return i
		}
	}
	return -1
}

package leveldb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
	driveRepo "dropzone/internal/domain/repositories/drive"
)

// FileRepository stores files under /files/<id>
type FileRepository struct {
	store *Store
}

// NewFileRepository creates a new file repository
func NewFileRepository(store *Store) driveRepo.FileRepository {
	return &FileRepository{store: store}
}

// List retrieves all files in insertion order
func (r *FileRepository) List(ctx context.Context) ([]models.File, error) {
	records, err := list[models.File](ctx, r.store.rw(ctx), filesKey)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	files := make([]models.File, len(records))
	for i := range records {
		files[i] = records[i].Value
	}
	return files, nil
}

// Get retrieves a file by ID
func (r *FileRepository) Get(ctx context.Context, id string) (*models.File, error) {
	rec, err := get[models.File](ctx, r.store.rw(ctx), filesKey.ChildString(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return &rec.Value, nil
}

// Insert stores a new file
func (r *FileRepository) Insert(ctx context.Context, file *models.File) error {
	rw := r.store.rw(ctx)
	key := filesKey.ChildString(file.ID)

	exists, err := rw.Has(ctx, key)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	if exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("file %s already exists", file.ID),
			ResourceType: "file",
			ResourceID:   file.ID,
		}
	}

	rec := record[models.File]{Seq: r.store.nextSeq(), Value: file.Clone()}
	if err := put(ctx, rw, key, rec); err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

// Update replaces a stored file, keeping its position
func (r *FileRepository) Update(ctx context.Context, file *models.File) error {
	rw := r.store.rw(ctx)
	key := filesKey.ChildString(file.ID)

	rec, err := get[models.File](ctx, rw, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update file: %w", err)
	}

	rec.Value = file.Clone()
	if err := put(ctx, rw, key, *rec); err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	return nil
}

// Remove deletes a file
func (r *FileRepository) Remove(ctx context.Context, id string) error {
	rw := r.store.rw(ctx)
	key := filesKey.ChildString(id)

	exists, err := rw.Has(ctx, key)
	if err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	if !exists {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	if err := rw.Delete(ctx, key); err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// ClearFolder unfiles every file held by the given folders
func (r *FileRepository) ClearFolder(ctx context.Context, folderIDs ...string) (int, error) {
	if len(folderIDs) == 0 {
		return 0, nil
	}
	targets := make(map[string]struct{}, len(folderIDs))
	for _, id := range folderIDs {
		targets[id] = struct{}{}
	}

	rw := r.store.rw(ctx)
	records, err := list[models.File](ctx, rw, filesKey)
	if err != nil {
		return 0, fmt.Errorf("clear file folders: %w", err)
	}

	now := time.Now()
	cleared := 0
	for _, rec := range records {
		if rec.Value.FolderID == nil {
			continue
		}
		if _, ok := targets[*rec.Value.FolderID]; !ok {
			continue
		}

		rec.Value.FolderID = nil
		rec.Value.UpdatedAt = &now
		if err := put(ctx, rw, filesKey.ChildString(rec.Value.ID), rec); err != nil {
			return cleared, fmt.Errorf("clear file folders: %w", err)
		}
		cleared++
	}
	return cleared, nil
}

// ReplaceAll swaps the whole file collection
func (r *FileRepository) ReplaceAll(ctx context.Context, files []models.File) error {
	if err := deleteAll(ctx, r.store.rw(ctx), filesKey); err != nil {
		return fmt.Errorf("clear files: %w", err)
	}
	for i := range files {
		if err := r.Insert(ctx, &files[i]); err != nil {
			return err
		}
	}
	return nil
}

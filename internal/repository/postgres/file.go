package postgres

import (
	"context"
	"fmt"

	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
	driveRepo "dropzone/internal/domain/repositories/drive"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fileColumns = `id, name, size, type, status, progress, folder_id, url, thumbnail, uploaded_at, updated_at`

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) driveRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// List retrieves all files in insertion order
func (r *PostgresFileRepository) List(ctx context.Context) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY position
	`, fileColumns, r.tables.Files)

	executor := executorFor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	files := make([]models.File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

// Get retrieves a file by ID
func (r *PostgresFileRepository) Get(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, fileColumns, r.tables.Files)

	executor := executorFor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return file, nil
}

// Insert stores a new file
func (r *PostgresFileRepository) Insert(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.tables.Files, fileColumns)

	executor := executorFor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		file.ID,
		file.Name,
		file.Size,
		file.Type,
		file.Status,
		file.Progress,
		file.FolderID,
		file.URL,
		file.Thumbnail,
		file.UploadedAt,
		file.UpdatedAt,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("file %s already exists", file.ID),
				ResourceType: "file",
				ResourceID:   file.ID,
			}
		}
		return fmt.Errorf("insert file: %w", err)
	}

	return nil
}

// Update replaces a stored file
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, size = $2, type = $3, status = $4, progress = $5,
		    folder_id = $6, url = $7, thumbnail = $8, updated_at = $9
		WHERE id = $10
	`, r.tables.Files)

	executor := executorFor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		file.Name,
		file.Size,
		file.Type,
		file.Status,
		file.Progress,
		file.FolderID,
		file.URL,
		file.Thumbnail,
		file.UpdatedAt,
		file.ID,
	)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}

	return nil
}

// Remove deletes a file
func (r *PostgresFileRepository) Remove(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Files)

	executor := executorFor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("remove file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ClearFolder unfiles every file held by the given folders
func (r *PostgresFileRepository) ClearFolder(ctx context.Context, folderIDs ...string) (int, error) {
	if len(folderIDs) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = NULL, updated_at = NOW()
		WHERE folder_id = ANY($1)
	`, r.tables.Files)

	executor := executorFor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, folderIDs)
	if err != nil {
		return 0, fmt.Errorf("clear file folders: %w", err)
	}

	return int(result.RowsAffected()), nil
}

// ReplaceAll swaps the whole file table within the caller's transaction
func (r *PostgresFileRepository) ReplaceAll(ctx context.Context, files []models.File) error {
	executor := executorFor(ctx, r.pool)
	if _, err := executor.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, r.tables.Files)); err != nil {
		return fmt.Errorf("clear files: %w", err)
	}

	for i := range files {
		if err := r.Insert(ctx, &files[i]); err != nil {
			return err
		}
	}
	return nil
}

func scanFile(row pgx.Row) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.Name,
		&file.Size,
		&file.Type,
		&file.Status,
		&file.Progress,
		&file.FolderID,
		&file.URL,
		&file.Thumbnail,
		&file.UploadedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

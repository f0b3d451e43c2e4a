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

const sessionColumns = `id, file_ids, total_size, completed_size, status, started_at, finished_at`

// PostgresUploadSessionRepository implements the UploadSessionRepository interface
type PostgresUploadSessionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUploadSessionRepository creates a new upload session repository
func NewUploadSessionRepository(config *RepositoryConfig) driveRepo.UploadSessionRepository {
	return &PostgresUploadSessionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// List retrieves all sessions, oldest first
func (r *PostgresUploadSessionRepository) List(ctx context.Context) ([]models.UploadSession, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY position
	`, sessionColumns, r.tables.UploadSessions)

	executor := executorFor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list upload sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.UploadSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload session: %w", err)
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upload sessions: %w", err)
	}

	return sessions, nil
}

// Get retrieves a session by ID
func (r *PostgresUploadSessionRepository) Get(ctx context.Context, id string) (*models.UploadSession, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, sessionColumns, r.tables.UploadSessions)

	executor := executorFor(ctx, r.pool)
	session, err := scanSession(executor.QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("upload session %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get upload session: %w", err)
	}

	return session, nil
}

// Insert stores a new session
func (r *PostgresUploadSessionRepository) Insert(ctx context.Context, session *models.UploadSession) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.UploadSessions, sessionColumns)

	executor := executorFor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		session.ID,
		session.FileIDs,
		session.TotalSize,
		session.CompletedSize,
		session.Status,
		session.StartedAt,
		session.FinishedAt,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("upload session %s already exists", session.ID),
				ResourceType: "upload_session",
				ResourceID:   session.ID,
			}
		}
		return fmt.Errorf("insert upload session: %w", err)
	}

	return nil
}

// Update replaces a stored session
func (r *PostgresUploadSessionRepository) Update(ctx context.Context, session *models.UploadSession) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET file_ids = $1, total_size = $2, completed_size = $3, status = $4, finished_at = $5
		WHERE id = $6
	`, r.tables.UploadSessions)

	executor := executorFor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		session.FileIDs,
		session.TotalSize,
		session.CompletedSize,
		session.Status,
		session.FinishedAt,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("update upload session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("upload session %s: %w", session.ID, domain.ErrNotFound)
	}

	return nil
}

// Remove deletes a session
func (r *PostgresUploadSessionRepository) Remove(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.UploadSessions)

	executor := executorFor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("remove upload session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("upload session %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func scanSession(row pgx.Row) (*models.UploadSession, error) {
	var session models.UploadSession
	err := row.Scan(
		&session.ID,
		&session.FileIDs,
		&session.TotalSize,
		&session.CompletedSize,
		&session.Status,
		&session.StartedAt,
		&session.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

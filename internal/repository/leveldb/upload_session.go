package leveldb

import (
	"context"
	"errors"
	"fmt"

	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
	driveRepo "dropzone/internal/domain/repositories/drive"
)

// UploadSessionRepository stores sessions under /sessions/<id>
type UploadSessionRepository struct {
	store *Store
}

// NewUploadSessionRepository creates a new upload session repository
func NewUploadSessionRepository(store *Store) driveRepo.UploadSessionRepository {
	return &UploadSessionRepository{store: store}
}

func (r *UploadSessionRepository) List(ctx context.Context) ([]models.UploadSession, error) {
	records, err := list[models.UploadSession](ctx, r.store.rw(ctx), sessionsKey)
	if err != nil {
		return nil, fmt.Errorf("list upload sessions: %w", err)
	}

	sessions := make([]models.UploadSession, len(records))
	for i := range records {
		sessions[i] = records[i].Value
	}
	return sessions, nil
}

func (r *UploadSessionRepository) Get(ctx context.Context, id string) (*models.UploadSession, error) {
	rec, err := get[models.UploadSession](ctx, r.store.rw(ctx), sessionsKey.ChildString(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("upload session %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get upload session: %w", err)
	}
	return &rec.Value, nil
}

func (r *UploadSessionRepository) Insert(ctx context.Context, session *models.UploadSession) error {
	rw := r.store.rw(ctx)
	key := sessionsKey.ChildString(session.ID)

	exists, err := rw.Has(ctx, key)
	if err != nil {
		return fmt.Errorf("insert upload session: %w", err)
	}
	if exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("upload session %s already exists", session.ID),
			ResourceType: "upload_session",
			ResourceID:   session.ID,
		}
	}

	rec := record[models.UploadSession]{Seq: r.store.nextSeq(), Value: session.Clone()}
	if err := put(ctx, rw, key, rec); err != nil {
		return fmt.Errorf("insert upload session: %w", err)
	}
	return nil
}

func (r *UploadSessionRepository) Update(ctx context.Context, session *models.UploadSession) error {
	rw := r.store.rw(ctx)
	key := sessionsKey.ChildString(session.ID)

	rec, err := get[models.UploadSession](ctx, rw, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("upload session %s: %w", session.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update upload session: %w", err)
	}

	rec.Value = session.Clone()
	if err := put(ctx, rw, key, *rec); err != nil {
		return fmt.Errorf("update upload session: %w", err)
	}
	return nil
}

func (r *UploadSessionRepository) Remove(ctx context.Context, id string) error {
	rw := r.store.rw(ctx)
	key := sessionsKey.ChildString(id)

	exists, err := rw.Has(ctx, key)
	if err != nil {
		return fmt.Errorf("remove upload session: %w", err)
	}
	if !exists {
		return fmt.Errorf("upload session %s: %w", id, domain.ErrNotFound)
	}

	if err := rw.Delete(ctx, key); err != nil {
		return fmt.Errorf("remove upload session: %w", err)
	}
	return nil
}

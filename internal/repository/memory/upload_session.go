package memory

import (
	"context"
	"fmt"

	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
	driveRepo "dropzone/internal/domain/repositories/drive"
)

// UploadSessionRepository implements drive.UploadSessionRepository over a Store
type UploadSessionRepository struct {
	store *Store
}

// NewUploadSessionRepository creates a new upload session repository
func NewUploadSessionRepository(store *Store) driveRepo.UploadSessionRepository {
	return &UploadSessionRepository{store: store}
}

func (r *UploadSessionRepository) List(ctx context.Context) ([]models.UploadSession, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sessions := make([]models.UploadSession, len(r.store.sessions))
	for i := range r.store.sessions {
		sessions[i] = r.store.sessions[i].Clone()
	}
	return sessions, nil
}

func (r *UploadSessionRepository) Get(ctx context.Context, id string) (*models.UploadSession, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("upload session %s: %w", id, domain.ErrNotFound)
	}
	session := r.store.sessions[i].Clone()
	return &session, nil
}

func (r *UploadSessionRepository) Insert(ctx context.Context, session *models.UploadSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.indexOf(session.ID) >= 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("upload session %s already exists", session.ID),
			ResourceType: "upload_session",
			ResourceID:   session.ID,
		}
	}
	r.store.sessions = append(r.store.sessions, session.Clone())
	return nil
}

func (r *UploadSessionRepository) Update(ctx context.Context, session *models.UploadSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	i := r.indexOf(session.ID)
	if i < 0 {
		return fmt.Errorf("upload session %s: %w", session.ID, domain.ErrNotFound)
	}
	r.store.sessions[i] = session.Clone()
	return nil
}

func (r *UploadSessionRepository) Remove(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("upload session %s: %w", id, domain.ErrNotFound)
	}
	r.store.sessions = append(r.store.sessions[:i], r.store.sessions[i+1:]...)
	return nil
}

func (r *UploadSessionRepository) indexOf(id string) int {
	for i := range r.store.sessions {
		if r.store.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

package drive

import (
	"context"

	"dropzone/internal/domain/models/drive"
)

// UploadSessionRepository defines data access operations for upload sessions
type UploadSessionRepository interface {
	List(ctx context.Context) ([]drive.UploadSession, error)
	Get(ctx context.Context, id string) (*drive.UploadSession, error)
	Insert(ctx context.Context, session *drive.UploadSession) error
	Update(ctx context.Context, session *drive.UploadSession) error
	Remove(ctx context.Context, id string) error
}

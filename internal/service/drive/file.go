package drive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dropzone/internal/config"
	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
	"dropzone/internal/domain/repositories"
	driveRepo "dropzone/internal/domain/repositories/drive"
	driveSvc "dropzone/internal/domain/services/drive"
	"dropzone/internal/utils"
)

type fileService struct {
	fileRepo   driveRepo.FileRepository
	folderRepo driveRepo.FolderRepository
	txManager  repositories.TransactionManager
	uploads    driveSvc.UploadCanceller
	ids        *utils.IDGenerator
	logger     *slog.Logger
}

// NewFileService creates a new file service. uploads may be nil when no
// upload pipeline is running.
func NewFileService(
	fileRepo driveRepo.FileRepository,
	folderRepo driveRepo.FolderRepository,
	txManager repositories.TransactionManager,
	uploads driveSvc.UploadCanceller,
	ids *utils.IDGenerator,
	logger *slog.Logger,
) driveSvc.FileService {
	return &fileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		txManager:  txManager,
		uploads:    uploads,
		ids:        ids,
		logger:     logger,
	}
}

// CreateFile stores a file record. Without an explicit status the file is
// treated as a finished upload.
func (s *fileService) CreateFile(ctx context.Context, req *driveSvc.CreateFileRequest) (*models.File, error) {
	req.FolderID = normalizeID(req.FolderID)
	if err := validateCreateFileRequest(req); err != nil {
		return nil, err
	}

	file := &models.File{
		ID:         req.ID,
		Name:       strings.TrimSpace(req.Name),
		Size:       req.Size,
		Type:       req.Type,
		Status:     req.Status,
		FolderID:   req.FolderID,
		URL:        req.URL,
		Thumbnail:  req.Thumbnail,
		UploadedAt: time.Now(),
	}
	if file.ID == "" {
		file.ID = s.ids.Next(utils.FilePrefix)
	}
	if file.Status == "" {
		file.Status = models.FileStatusCompleted
	}
	switch {
	case file.Status == models.FileStatusCompleted:
		file.Progress = models.ProgressMax
	case req.Progress != nil:
		file.Progress = models.ClampProgress(*req.Progress)
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.requireFolder(txCtx, file.FolderID); err != nil {
			return err
		}
		return s.fileRepo.Insert(txCtx, file)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file created",
		"id", file.ID,
		"name", file.Name,
		"size", file.Size,
		"folder_id", file.FolderID,
		"status", file.Status,
	)

	return file, nil
}

// GetFile retrieves a file by ID
func (s *fileService) GetFile(ctx context.Context, id string) (*models.File, error) {
	return s.fileRepo.Get(ctx, id)
}

// ListFiles returns every file matching filter, in stored order
func (s *fileService) ListFiles(ctx context.Context, filter models.FileFilter) ([]models.File, error) {
	files, err := s.fileRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return FilterFiles(files, filter), nil
}

// ListByFolder returns the files directly inside folderID (nil = unfiled)
func (s *fileService) ListByFolder(ctx context.Context, folderID *string) ([]models.File, error) {
	folderID = normalizeID(folderID)

	files, err := s.fileRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	result := make([]models.File, 0)
	for i := range files {
		if files[i].InFolder(folderID) {
			result = append(result, files[i])
		}
	}
	return result, nil
}

// UpdateFile renames a file, advances its upload state or refiles it
func (s *fileService) UpdateFile(ctx context.Context, id string, req *driveSvc.UpdateFileRequest) (*models.File, error) {
	if err := validateUpdateFileRequest(req); err != nil {
		return nil, err
	}

	var file *models.File
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		file, err = s.fileRepo.Get(txCtx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			file.Name = strings.TrimSpace(*req.Name)
		}

		if req.Progress != nil {
			if file.Status != models.FileStatusUploading {
				return &domain.InvalidOperationError{
					Message: fmt.Sprintf("cannot change progress of a %s file", file.Status),
				}
			}
			file.Progress = models.ClampProgress(*req.Progress)
		}

		if req.Status != nil {
			if err := file.SetStatus(*req.Status); err != nil {
				return &domain.InvalidOperationError{Message: err.Error()}
			}
		}

		if req.FolderID.Present {
			folderID := normalizeID(req.FolderID.Value)
			if err := s.requireFolder(txCtx, folderID); err != nil {
				return err
			}
			file.FolderID = folderID
		}

		now := time.Now()
		file.UpdatedAt = &now
		return s.fileRepo.Update(txCtx, file)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file updated",
		"id", file.ID,
		"name", file.Name,
		"status", file.Status,
		"progress", file.Progress,
	)

	return file, nil
}

// DeleteFile stops any running upload for the file, then removes it
func (s *fileService) DeleteFile(ctx context.Context, id string) error {
	if s.uploads != nil && s.uploads.CancelFile(id) {
		s.logger.Info("upload cancelled by delete", "file_id", id)
	}

	if err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.fileRepo.Remove(txCtx, id)
	}); err != nil {
		return err
	}

	s.logger.Info("file deleted", "id", id)
	return nil
}

// MoveFile refiles a file. Files have no descendants, so nothing cascades.
func (s *fileService) MoveFile(ctx context.Context, id string, folderID *string) (*models.File, error) {
	folderID = normalizeID(folderID)

	var file *models.File
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		file, err = s.fileRepo.Get(txCtx, id)
		if err != nil {
			return err
		}

		if err := s.requireFolder(txCtx, folderID); err != nil {
			return err
		}

		file.FolderID = folderID
		now := time.Now()
		file.UpdatedAt = &now
		return s.fileRepo.Update(txCtx, file)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file moved",
		"id", file.ID,
		"folder_id", file.FolderID,
	)

	return file, nil
}

// SearchFiles matches query against file names and MIME types. An empty
// query is rejected with InvalidArgument.
func (s *fileService) SearchFiles(ctx context.Context, query string, folderID *string) ([]models.File, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &domain.InvalidArgumentError{Message: "search query is required"}
	}
	if len(query) > config.MaxSearchQueryLength {
		return nil, &domain.InvalidArgumentError{
			Message: fmt.Sprintf("search query exceeds maximum length of %d", config.MaxSearchQueryLength),
		}
	}
	folderID = normalizeID(folderID)

	files, err := s.fileRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	query = strings.ToLower(query)
	results := make([]models.File, 0)
	for i := range files {
		if !matchesQuery(&files[i], query) {
			continue
		}
		if folderID != nil && !files[i].InFolder(folderID) {
			continue
		}
		results = append(results, files[i])
	}

	s.logger.Debug("file search",
		"query", query,
		"folder_id", folderID,
		"results", len(results),
	)

	return results, nil
}

// requireFolder checks that folderID (when set) names an existing folder
func (s *fileService) requireFolder(ctx context.Context, folderID *string) error {
	if folderID == nil {
		return nil
	}
	if _, err := s.folderRepo.Get(ctx, *folderID); err != nil {
		if isNotFound(err) {
			return &domain.ParentNotFoundError{
				Message:  fmt.Sprintf("folder %s not found", *folderID),
				ParentID: *folderID,
			}
		}
		return err
	}
	return nil
}

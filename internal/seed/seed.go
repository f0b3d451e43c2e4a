package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	models "dropzone/internal/domain/models/drive"
	"dropzone/internal/domain/repositories"
	driveRepo "dropzone/internal/domain/repositories/drive"
	"dropzone/internal/service/drive"

	"gopkg.in/yaml.v3"
)

// folderRecord mirrors the folder JSON the web client stores. JSON is valid
// YAML, so one decoder reads both formats.
type folderRecord struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	ParentID  *string `yaml:"parentId"`
	Path      string  `yaml:"path"`
	Color     string  `yaml:"color"`
	Icon      string  `yaml:"icon"`
	CreatedAt string  `yaml:"createdAt"`
	UpdatedAt string  `yaml:"updatedAt"`
}

type fileRecord struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Size       int64   `yaml:"size"`
	Type       string  `yaml:"type"`
	Status     string  `yaml:"status"`
	Progress   *int    `yaml:"progress"`
	FolderID   *string `yaml:"folderId"`
	URL        string  `yaml:"url"`
	Thumbnail  string  `yaml:"thumbnail"`
	UploadedAt string  `yaml:"uploadedAt"`
}

// Data is a validated seed set ready to be stored
type Data struct {
	Folders []models.Folder
	Files   []models.File
}

// LoadFiles reads folder and file seeds from disk. An empty path yields an
// empty collection.
func LoadFiles(foldersPath, filesPath string) (*Data, error) {
	var folderBytes, fileBytes []byte
	var err error

	if foldersPath != "" {
		if folderBytes, err = os.ReadFile(foldersPath); err != nil {
			return nil, fmt.Errorf("read folder seed: %w", err)
		}
	}
	if filesPath != "" {
		if fileBytes, err = os.ReadFile(filesPath); err != nil {
			return nil, fmt.Errorf("read file seed: %w", err)
		}
	}

	return Parse(folderBytes, fileBytes, time.Now())
}

// Parse decodes and validates seed documents. Folder paths are recomputed
// from the parent chain, so stale paths in the seed are corrected; dangling
// parents and cycles are rejected.
func Parse(folderData, fileData []byte, now time.Time) (*Data, error) {
	var folderRecords []folderRecord
	if len(folderData) > 0 {
		if err := yaml.Unmarshal(folderData, &folderRecords); err != nil {
			return nil, fmt.Errorf("decode folder seed: %w", err)
		}
	}

	var fileRecords []fileRecord
	if len(fileData) > 0 {
		if err := yaml.Unmarshal(fileData, &fileRecords); err != nil {
			return nil, fmt.Errorf("decode file seed: %w", err)
		}
	}

	folders := make([]models.Folder, 0, len(folderRecords))
	folderIDs := make(map[string]struct{}, len(folderRecords))
	for i, rec := range folderRecords {
		if rec.ID == "" || rec.Name == "" {
			return nil, fmt.Errorf("folder seed #%d: id and name are required", i)
		}
		if _, dup := folderIDs[rec.ID]; dup {
			return nil, fmt.Errorf("folder seed #%d: duplicate id %s", i, rec.ID)
		}
		folderIDs[rec.ID] = struct{}{}

		parentID := rec.ParentID
		if parentID != nil && *parentID == "" {
			parentID = nil
		}
		createdAt, err := parseTime(rec.CreatedAt, now)
		if err != nil {
			return nil, fmt.Errorf("folder seed %s: %w", rec.ID, err)
		}
		updatedAt, err := parseTime(rec.UpdatedAt, createdAt)
		if err != nil {
			return nil, fmt.Errorf("folder seed %s: %w", rec.ID, err)
		}

		folders = append(folders, models.Folder{
			ID:        rec.ID,
			Name:      rec.Name,
			ParentID:  parentID,
			Path:      rec.Path,
			Color:     rec.Color,
			Icon:      rec.Icon,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		})
	}

	if _, err := drive.BuildTree(folders); err != nil {
		return nil, fmt.Errorf("folder seed: %w", err)
	}
	lookup := drive.LookupFromList(folders)
	for i := range folders {
		path, err := drive.ComputePath(&folders[i], lookup)
		if err != nil {
			return nil, fmt.Errorf("folder seed %s: %w", folders[i].ID, err)
		}
		folders[i].Path = path
	}

	files := make([]models.File, 0, len(fileRecords))
	fileIDs := make(map[string]struct{}, len(fileRecords))
	for i, rec := range fileRecords {
		if rec.ID == "" || rec.Name == "" {
			return nil, fmt.Errorf("file seed #%d: id and name are required", i)
		}
		if _, dup := fileIDs[rec.ID]; dup {
			return nil, fmt.Errorf("file seed #%d: duplicate id %s", i, rec.ID)
		}
		fileIDs[rec.ID] = struct{}{}

		folderID := rec.FolderID
		if folderID != nil && *folderID == "" {
			folderID = nil
		}
		if folderID != nil {
			if _, ok := folderIDs[*folderID]; !ok {
				return nil, fmt.Errorf("file seed %s: folder %s does not exist", rec.ID, *folderID)
			}
		}

		status := models.FileStatus(rec.Status)
		if status == "" {
			status = models.FileStatusCompleted
		}
		if !status.Valid() {
			return nil, fmt.Errorf("file seed %s: unknown status %q", rec.ID, rec.Status)
		}

		progress := models.ProgressMax
		if status != models.FileStatusCompleted && rec.Progress != nil {
			progress = models.ClampProgress(*rec.Progress)
		} else if status != models.FileStatusCompleted {
			progress = models.ProgressMin
		}

		uploadedAt, err := parseTime(rec.UploadedAt, now)
		if err != nil {
			return nil, fmt.Errorf("file seed %s: %w", rec.ID, err)
		}

		files = append(files, models.File{
			ID:         rec.ID,
			Name:       rec.Name,
			Size:       rec.Size,
			Type:       rec.Type,
			Status:     status,
			Progress:   progress,
			FolderID:   folderID,
			URL:        rec.URL,
			Thumbnail:  rec.Thumbnail,
			UploadedAt: uploadedAt,
		})
	}

	return &Data{Folders: folders, Files: files}, nil
}

// Apply replaces the stored folders and files with data in one transaction
func Apply(
	ctx context.Context,
	data *Data,
	folderRepo driveRepo.FolderRepository,
	fileRepo driveRepo.FileRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) error {
	err := txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := folderRepo.ReplaceAll(txCtx, data.Folders); err != nil {
			return fmt.Errorf("seed folders: %w", err)
		}
		if err := fileRepo.ReplaceAll(txCtx, data.Files); err != nil {
			return fmt.Errorf("seed files: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("seed data loaded",
		"folders", len(data.Folders),
		"files", len(data.Files),
	)
	return nil
}

// parseTime accepts RFC 3339 timestamps; empty values fall back to def
func parseTime(value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return t, nil
}

package drive

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	models "dropzone/internal/domain/models/drive"
	driveRepo "dropzone/internal/domain/repositories/drive"
	driveSvc "dropzone/internal/domain/services/drive"
	"dropzone/internal/filetypes"
	"dropzone/internal/repository/memory"
	"dropzone/internal/utils"

	mstream "github.com/haowjy/meridian-stream-go"
)

func strPtr(s string) *string { return &s }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv wires every service against one in-memory store
type testEnv struct {
	folderRepo  driveRepo.FolderRepository
	fileRepo    driveRepo.FileRepository
	sessionRepo driveRepo.UploadSessionRepository

	folders driveSvc.FolderService
	files   driveSvc.FileService
	tree    driveSvc.TreeService
	uploads UploadManager
	streams *mstream.Registry
}

func newTestEnv(t *testing.T, uploadCfg UploadConfig) *testEnv {
	t.Helper()

	store := memory.NewStore()
	txManager := memory.NewTransactionManager(store)
	folderRepo := memory.NewFolderRepository(store)
	fileRepo := memory.NewFileRepository(store)
	sessionRepo := memory.NewUploadSessionRepository(store)
	ids := utils.NewIDGenerator()
	logger := discardLogger()

	registry, err := filetypes.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	streams := mstream.NewRegistry()
	uploads := NewUploadService(fileRepo, folderRepo, sessionRepo, txManager, registry, streams, ids, uploadCfg, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := uploads.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	})

	return &testEnv{
		folderRepo:  folderRepo,
		fileRepo:    fileRepo,
		sessionRepo: sessionRepo,
		folders:     NewFolderService(folderRepo, fileRepo, txManager, ids, logger),
		files:       NewFileService(fileRepo, folderRepo, txManager, uploads, ids, logger),
		tree:        NewTreeService(folderRepo, fileRepo, logger),
		uploads:     uploads,
		streams:     streams,
	}
}

func (e *testEnv) mustCreateFolder(t *testing.T, name string, parentID *string) *models.Folder {
	t.Helper()
	folder, err := e.folders.CreateFolder(context.Background(), &driveSvc.CreateFolderRequest{
		Name:     name,
		ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("CreateFolder(%q): %v", name, err)
	}
	return folder
}

func (e *testEnv) mustCreateFile(t *testing.T, name, mimeType string, folderID *string) *models.File {
	t.Helper()
	file, err := e.files.CreateFile(context.Background(), &driveSvc.CreateFileRequest{
		Name:     name,
		Size:     1024,
		Type:     mimeType,
		FolderID: folderID,
	})
	if err != nil {
		t.Fatalf("CreateFile(%q): %v", name, err)
	}
	return file
}

func (e *testEnv) folderPath(t *testing.T, id string) string {
	t.Helper()
	folder, err := e.folderRepo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get folder %s: %v", id, err)
	}
	return folder.Path
}

package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
)

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("test_")

	if tables.Folders != "test_folders" {
		t.Errorf("Folders = %q", tables.Folders)
	}
	if tables.Files != "test_files" {
		t.Errorf("Files = %q", tables.Files)
	}
	if tables.UploadSessions != "test_upload_sessions" {
		t.Errorf("UploadSessions = %q", tables.UploadSessions)
	}
}

// newTestConfig connects to TEST_DATABASE_URL and creates tables with a
// per-run prefix. Tests are skipped when no database is configured.
func newTestConfig(t *testing.T) *RepositoryConfig {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := CreateConnectionPool(ctx, url)
	if err != nil {
		t.Fatalf("CreateConnectionPool: %v", err)
	}

	config := &RepositoryConfig{
		Pool:   pool,
		Tables: NewTableNames("it_" + time.Now().Format("150405") + "_"),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if err := EnsureSchema(ctx, config); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	t.Cleanup(func() {
		for _, table := range []string{config.Tables.Folders, config.Tables.Files, config.Tables.UploadSessions} {
			_, _ = pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+table)
		}
		pool.Close()
	})
	return config
}

func TestFileRepository_Integration(t *testing.T) {
	config := newTestConfig(t)
	ctx := context.Background()
	folders := NewFolderRepository(config)
	files := NewFileRepository(config)
	txManager := NewTransactionManager(config.Pool, config.Logger)

	now := time.Now().UTC().Truncate(time.Microsecond)
	docs := models.Folder{ID: "folder_1", Name: "Docs", Path: "/Docs", CreatedAt: now, UpdatedAt: now}
	if err := folders.Insert(ctx, &docs); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"file_2", "file_1"} {
		file := models.File{ID: id, Name: id, Status: models.FileStatusCompleted, Progress: 100, FolderID: &docs.ID, UploadedAt: now}
		if err := files.Insert(ctx, &file); err != nil {
			t.Fatal(err)
		}
	}

	listed, err := files.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 2 || listed[0].ID != "file_2" {
		t.Errorf("List() = %+v, want insertion order", listed)
	}

	// Rolled back transaction leaves files filed
	rollback := errors.New("rollback")
	err = txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if _, err := files.ClearFolder(txCtx, docs.ID); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("ExecTx() error = %v", err)
	}
	file, _ := files.Get(ctx, "file_1")
	if file.FolderID == nil {
		t.Error("ClearFolder survived a rolled back transaction")
	}

	n, err := files.ClearFolder(ctx, docs.ID)
	if err != nil || n != 2 {
		t.Errorf("ClearFolder() = (%d, %v), want (2, nil)", n, err)
	}

	if err := files.Remove(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Remove(missing) error = %v, want ErrNotFound", err)
	}
}

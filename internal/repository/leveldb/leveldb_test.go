package leveldb

import (
	"context"
	"errors"
	"testing"

	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
)

func strPtr(s string) *string { return &s }

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return store
}

func TestFolderRepository_OrderSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store := openTestStore(t, dir)
	repo := NewFolderRepository(store)
	// Key order (a, b, c) differs from insertion order
	for _, id := range []string{"c", "a", "b"} {
		if err := repo.Insert(ctx, &models.Folder{ID: id, Name: id, Path: "/" + id}); err != nil {
			t.Fatalf("Insert(%s): %v", id, err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	store = openTestStore(t, dir)
	defer store.Close()
	repo = NewFolderRepository(store)

	if err := repo.Insert(ctx, &models.Folder{ID: "0", Name: "0", Path: "/0"}); err != nil {
		t.Fatal(err)
	}

	folders, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c", "a", "b", "0"}
	if len(folders) != len(want) {
		t.Fatalf("List() returned %d folders, want %d", len(folders), len(want))
	}
	for i, id := range want {
		if folders[i].ID != id {
			t.Fatalf("List()[%d] = %s, want %s", i, folders[i].ID, id)
		}
	}
}

func TestFolderRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, t.TempDir())
	defer store.Close()
	repo := NewFolderRepository(store)

	folder := &models.Folder{ID: "docs", Name: "Docs", Path: "/Docs"}
	if err := repo.Insert(ctx, folder); err != nil {
		t.Fatal(err)
	}
	if err := repo.Insert(ctx, folder); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate Insert error = %v, want ErrConflict", err)
	}

	folder.Name = "Documents"
	folder.Path = "/Documents"
	if err := repo.Update(ctx, folder); err != nil {
		t.Fatal(err)
	}
	got, err := repo.Get(ctx, "docs")
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != "/Documents" {
		t.Errorf("Path = %q, want /Documents", got.Path)
	}

	if err := repo.Update(ctx, &models.Folder{ID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	if err := repo.Remove(ctx, "docs", "unknown"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Get(ctx, "docs"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get after Remove error = %v, want ErrNotFound", err)
	}
}

func TestFileRepository_ClearFolder(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, t.TempDir())
	defer store.Close()
	repo := NewFileRepository(store)

	files := []models.File{
		{ID: "f1", FolderID: strPtr("a")},
		{ID: "f2", FolderID: strPtr("b")},
		{ID: "f3", FolderID: strPtr("c")},
		{ID: "f4"},
	}
	if err := repo.ReplaceAll(ctx, files); err != nil {
		t.Fatal(err)
	}

	n, err := repo.ClearFolder(ctx, "a", "b")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("ClearFolder() = %d, want 2", n)
	}

	got, _ := repo.List(ctx)
	if got[0].FolderID != nil || got[1].FolderID != nil {
		t.Errorf("files in cleared folders still filed: %+v", got[:2])
	}
	if got[2].FolderID == nil || *got[2].FolderID != "c" {
		t.Errorf("unrelated file changed: %+v", got[2])
	}
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, t.TempDir())
	defer store.Close()
	repo := NewFolderRepository(store)
	txManager := NewTransactionManager(store)

	if err := repo.Insert(ctx, &models.Folder{ID: "keep"}); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := repo.Insert(txCtx, &models.Folder{ID: "temp"}); err != nil {
			return err
		}
		// Reads inside the transaction see its own writes
		if _, err := repo.Get(txCtx, "temp"); err != nil {
			return err
		}
		if err := repo.Remove(txCtx, "keep"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("ExecTx() error = %v, want %v", err, boom)
	}

	folders, _ := repo.List(ctx)
	if len(folders) != 1 || folders[0].ID != "keep" {
		t.Errorf("folders after rollback = %+v, want only keep", folders)
	}
}

func TestUploadSessionRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, t.TempDir())
	defer store.Close()
	repo := NewUploadSessionRepository(store)

	session := &models.UploadSession{
		ID:        "session_1",
		FileIDs:   []string{"file_1", "file_2"},
		TotalSize: 30,
		Status:    models.UploadSessionActive,
	}
	if err := repo.Insert(ctx, session); err != nil {
		t.Fatal(err)
	}

	session.CompletedSize = 30
	session.Status = models.UploadSessionCompleted
	if err := repo.Update(ctx, session); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, "session_1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.UploadSessionCompleted || len(got.FileIDs) != 2 || got.CompletedSize != 30 {
		t.Errorf("session = %+v", got)
	}

	if err := repo.Remove(ctx, "session_1"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Remove(ctx, "session_1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Remove error = %v, want ErrNotFound", err)
	}
}

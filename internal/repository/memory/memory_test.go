package memory

import (
	"context"
	"errors"
	"testing"

	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
)

func strPtr(s string) *string { return &s }

func TestFolderRepository_PreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepository(NewStore())

	for _, id := range []string{"c", "a", "b"} {
		if err := repo.Insert(ctx, &models.Folder{ID: id, Name: id, Path: "/" + id}); err != nil {
			t.Fatalf("Insert(%s): %v", id, err)
		}
	}

	folders, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got := []string{folders[0].ID, folders[1].ID, folders[2].ID}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List order = %v, want %v", got, want)
		}
	}
}

func TestFolderRepository_InsertDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepository(NewStore())

	if err := repo.Insert(ctx, &models.Folder{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	err := repo.Insert(ctx, &models.Folder{ID: "a"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate Insert error = %v, want ErrConflict", err)
	}
}

func TestFolderRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepository(NewStore())
	if err := repo.Insert(ctx, &models.Folder{ID: "a", Name: "A", ParentID: strPtr("p")}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	got.Name = "changed"
	*got.ParentID = "changed"

	again, _ := repo.Get(ctx, "a")
	if again.Name != "A" || *again.ParentID != "p" {
		t.Errorf("stored folder was mutated through a returned copy: %+v", again)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestFileRepository_ClearFolder(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(NewStore())

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
		t.Errorf("ClearFolder count = %d, want 2", n)
	}

	got, _ := repo.List(ctx)
	if got[0].FolderID != nil || got[1].FolderID != nil {
		t.Error("files in cleared folders should be unfiled")
	}
	if got[2].FolderID == nil || *got[2].FolderID != "c" {
		t.Error("file in untouched folder should keep its folder")
	}
	if got[0].UpdatedAt == nil {
		t.Error("unfiled file should get an updatedAt")
	}
}

func TestFileRepository_Remove(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(NewStore())
	_ = repo.Insert(ctx, &models.File{ID: "f1"})
	_ = repo.Insert(ctx, &models.File{ID: "f2"})

	if err := repo.Remove(ctx, "f1"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Remove(ctx, "f1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Remove error = %v, want ErrNotFound", err)
	}
	files, _ := repo.List(ctx)
	if len(files) != 1 || files[0].ID != "f2" {
		t.Errorf("List after remove = %+v", files)
	}
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folders := NewFolderRepository(store)
	files := NewFileRepository(store)
	tm := NewTransactionManager(store)

	_ = folders.Insert(ctx, &models.Folder{ID: "keep", Name: "Keep"})

	boom := errors.New("boom")
	err := tm.ExecTx(ctx, func(txCtx context.Context) error {
		if err := folders.Insert(txCtx, &models.Folder{ID: "new"}); err != nil {
			return err
		}
		if err := files.Insert(txCtx, &models.File{ID: "f"}); err != nil {
			return err
		}
		if err := folders.Update(txCtx, &models.Folder{ID: "keep", Name: "Renamed"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("ExecTx error = %v, want boom", err)
	}

	all, _ := folders.List(ctx)
	if len(all) != 1 || all[0].Name != "Keep" {
		t.Errorf("folders after rollback = %+v", all)
	}
	if f, _ := files.List(ctx); len(f) != 0 {
		t.Errorf("files after rollback = %+v", f)
	}
}

func TestTransactionManager_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tm := NewTransactionManager(store)

	calls := 0
	err := tm.ExecTx(ctx, func(txCtx context.Context) error {
		return tm.ExecTx(txCtx, func(context.Context) error {
			calls++
			return nil
		})
	})
	if err != nil || calls != 1 {
		t.Fatalf("nested ExecTx err=%v calls=%d", err, calls)
	}
}

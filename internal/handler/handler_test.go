package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "dropzone/internal/domain/models/drive"
	driveSvc "dropzone/internal/domain/services/drive"
	"dropzone/internal/filetypes"
	"dropzone/internal/handler/sse"
	"dropzone/internal/repository/memory"
	driveService "dropzone/internal/service/drive"
	"dropzone/internal/utils"

	mstream "github.com/haowjy/meridian-stream-go"
)

func newTestMux(t *testing.T, stepInterval time.Duration) *http.ServeMux {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	txManager := memory.NewTransactionManager(store)
	folderRepo := memory.NewFolderRepository(store)
	fileRepo := memory.NewFileRepository(store)
	sessionRepo := memory.NewUploadSessionRepository(store)
	ids := utils.NewIDGenerator()

	registry, err := filetypes.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	streams := mstream.NewRegistry()
	uploads := driveService.NewUploadService(fileRepo, folderRepo, sessionRepo, txManager, registry, streams, ids,
		driveService.UploadConfig{StepInterval: stepInterval}, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = uploads.Shutdown(ctx)
	})

	folders := driveService.NewFolderService(folderRepo, fileRepo, txManager, ids, logger)
	files := driveService.NewFileService(fileRepo, folderRepo, txManager, uploads, ids, logger)
	tree := driveService.NewTreeService(folderRepo, fileRepo, logger)

	mux := http.NewServeMux()
	RegisterRoutes(mux, Handlers{
		Folder: NewFolderHandler(folders, logger),
		File:   NewFileHandler(files, logger),
		Tree:   NewTreeHandler(tree, logger),
		Upload: NewUploadHandler(uploads, streams, &sse.Config{KeepAliveInterval: time.Second}, logger),
	})
	return mux
}

func doJSON(t *testing.T, mux http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func createFolder(t *testing.T, mux http.Handler, name string, parentID *string) models.Folder {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/api/folders", driveSvc.CreateFolderRequest{Name: name, ParentID: parentID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create folder %q: status %d: %s", name, rec.Code, rec.Body.String())
	}
	return decode[models.Folder](t, rec)
}

func TestHealth(t *testing.T) {
	mux := newTestMux(t, time.Millisecond)

	rec := doJSON(t, mux, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestFolderRoutes(t *testing.T) {
	mux := newTestMux(t, time.Millisecond)

	docs := createFolder(t, mux, "Documents", nil)
	work := createFolder(t, mux, "Work", &docs.ID)
	if work.Path != "/Documents/Work" {
		t.Errorf("path = %q", work.Path)
	}

	t.Run("duplicate returns existing with 409", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/folders", driveSvc.CreateFolderRequest{Name: "Documents"})
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := decode[models.Folder](t, rec); got.ID != docs.ID {
			t.Errorf("returned %q, want existing %q", got.ID, docs.ID)
		}
	})

	t.Run("missing parent is 422", func(t *testing.T) {
		missing := "folder_missing"
		rec := doJSON(t, mux, http.MethodPost, "/api/folders", driveSvc.CreateFolderRequest{Name: "X", ParentID: &missing})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", rec.Code)
		}
		problem := decode[map[string]interface{}](t, rec)
		if problem["parentId"] != missing {
			t.Errorf("parentId = %v", problem["parentId"])
		}
	})

	t.Run("empty name is 400", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/folders", driveSvc.CreateFolderRequest{Name: " "})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("move into descendant is 409", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/folders/"+docs.ID+"/move", driveSvc.MoveFolderRequest{ParentID: &work.ID})
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("move to root", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/folders/"+work.ID+"/move", map[string]interface{}{"parentId": nil})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if got := decode[models.Folder](t, rec); got.Path != "/Work" || got.ParentID != nil {
			t.Errorf("moved = %+v", got)
		}
	})

	t.Run("path", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/folders/"+work.ID+"/path", nil)
		if got := decode[map[string]string](t, rec); got["path"] != "/Work" {
			t.Errorf("path = %q", got["path"])
		}
	})

	t.Run("tree", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/folders/tree", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := decode[models.Tree](t, rec); got.TotalFolders != 2 || len(got.Folders) != 2 {
			t.Errorf("tree = %+v", got)
		}
	})

	t.Run("delete then get is 404", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodDelete, "/api/folders/"+docs.ID, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
		rec = doJSON(t, mux, http.MethodGet, "/api/folders/"+docs.ID, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestFileRoutes(t *testing.T) {
	mux := newTestMux(t, time.Millisecond)

	photos := createFolder(t, mux, "Photos", nil)

	create := func(name, mime string, folderID *string) models.File {
		t.Helper()
		rec := doJSON(t, mux, http.MethodPost, "/api/files", driveSvc.CreateFileRequest{
			Name: name, Size: 2048, Type: mime, FolderID: folderID,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create file %q: status %d: %s", name, rec.Code, rec.Body.String())
		}
		return decode[models.File](t, rec)
	}

	beach := create("beach.jpg", "image/jpeg", &photos.ID)
	create("notes.txt", "text/plain", nil)

	listCases := []struct {
		name   string
		target string
		want   []string
	}{
		{name: "all", target: "/api/files", want: []string{"beach.jpg", "notes.txt"}},
		{name: "by folder", target: "/api/files?folderId=" + photos.ID, want: []string{"beach.jpg"}},
		{name: "by type", target: "/api/files?type=text/", want: []string{"notes.txt"}},
		{name: "unfiled", target: "/api/files?unfiled=true", want: []string{"notes.txt"}},
		{name: "search", target: "/api/files/search?q=BEACH", want: []string{"beach.jpg"}},
	}
	for _, tt := range listCases {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, mux, http.MethodGet, tt.target, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			files := decode[[]models.File](t, rec)
			names := make([]string, len(files))
			for i := range files {
				names[i] = files[i].Name
			}
			if strings.Join(names, ",") != strings.Join(tt.want, ",") {
				t.Errorf("names = %v, want %v", names, tt.want)
			}
		})
	}

	t.Run("empty search is 400", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/files/search?q=", nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("invalid status transition is 409", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPatch, "/api/files/"+beach.ID, map[string]interface{}{"status": "uploading"})
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("move to unknown folder is 422", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/files/"+beach.ID+"/move", map[string]string{"folderId": "folder_missing"})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("unfile via move", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/files/"+beach.ID+"/move", map[string]interface{}{"folderId": nil})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := decode[models.File](t, rec); got.FolderID != nil {
			t.Errorf("folderId = %v", *got.FolderID)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodDelete, "/api/files/"+beach.ID, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
		rec = doJSON(t, mux, http.MethodDelete, "/api/files/"+beach.ID, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("second delete status = %d", rec.Code)
		}
	})
}

func TestUploadRoutes_StreamEvents(t *testing.T) {
	mux := newTestMux(t, 20*time.Millisecond)
	server := httptest.NewServer(mux)
	defer server.Close()

	rec := doJSON(t, mux, http.MethodPost, "/api/uploads", driveSvc.StartUploadRequest{
		Files: []driveSvc.UploadFile{
			{Name: "a.png", Size: 1000, Type: "image/png"},
			{Name: "setup.exe", Size: 1000, Type: "application/x-msdownload"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	result := decode[driveSvc.StartUploadResult](t, rec)
	if len(result.Files) != 1 || len(result.Rejected) != 1 {
		t.Fatalf("files = %d rejected = %d", len(result.Files), len(result.Rejected))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/uploads/"+result.Session.ID+"/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("Content-Type = %q", got)
	}

	// The handler closes the stream after the done event
	var names []string
	var lastData string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			names = append(names, strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			lastData = strings.TrimPrefix(line, "data: ")
		}
	}

	if len(names) < 3 || names[0] != models.UploadEventSession || names[len(names)-1] != models.UploadEventDone {
		t.Fatalf("events = %v", names)
	}
	sawProgress := false
	for _, name := range names[1 : len(names)-1] {
		sawProgress = sawProgress || name == models.UploadEventProgress
	}
	if !sawProgress {
		t.Errorf("no progress events in %v", names)
	}
	var final models.UploadSession
	if err := json.Unmarshal([]byte(lastData), &final); err != nil {
		t.Fatal(err)
	}
	if final.Status != models.UploadSessionCompleted {
		t.Errorf("final status = %q, want completed", final.Status)
	}
}

func TestUploadRoutes_Cancel(t *testing.T) {
	mux := newTestMux(t, 50*time.Millisecond)

	rec := doJSON(t, mux, http.MethodPost, "/api/uploads", driveSvc.StartUploadRequest{
		Files: []driveSvc.UploadFile{{Name: "movie.mp4", Size: 5000, Type: "video/mp4"}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	result := decode[driveSvc.StartUploadResult](t, rec)

	rec = doJSON(t, mux, http.MethodPost, "/api/uploads/"+result.Session.ID+"/cancel", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[models.UploadSession](t, rec); got.Status != models.UploadSessionCancelled {
		t.Errorf("status = %q, want cancelled", got.Status)
	}

	rec = doJSON(t, mux, http.MethodPost, "/api/uploads/"+result.Session.ID+"/cancel", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second cancel status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodDelete, "/api/uploads/"+result.Session.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, mux, http.MethodGet, "/api/uploads/"+result.Session.ID+"/events", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("events for deleted session status = %d, want 404", rec.Code)
	}
}

func TestUploadRoutes_AllRejected(t *testing.T) {
	mux := newTestMux(t, time.Millisecond)

	rec := doJSON(t, mux, http.MethodPost, "/api/uploads", driveSvc.StartUploadRequest{
		Files: []driveSvc.UploadFile{{Name: "virus.exe", Size: 10, Type: "application/x-msdownload"}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

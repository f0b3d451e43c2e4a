package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dropzone/internal/config"
	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
	"dropzone/internal/domain/repositories"
	driveRepo "dropzone/internal/domain/repositories/drive"
	driveSvc "dropzone/internal/domain/services/drive"
	"dropzone/internal/filetypes"
	"dropzone/internal/utils"

	mstream "github.com/haowjy/meridian-stream-go"
)

// errUploadStopped ends a progress task whose file left the uploading state
var errUploadStopped = errors.New("upload no longer in progress")

// UploadConfig tunes the simulated upload pipeline
type UploadConfig struct {
	StepInterval     time.Duration // delay between progress ticks
	SessionRetention time.Duration // how long finished sessions are kept; 0 = forever
	EventIDs         bool          // number stream events so clients can resume with Last-Event-ID
}

type uploadService struct {
	fileRepo    driveRepo.FileRepository
	folderRepo  driveRepo.FolderRepository
	sessionRepo driveRepo.UploadSessionRepository
	txManager   repositories.TransactionManager
	policy      *filetypes.Registry
	streams     *mstream.Registry
	ids         *utils.IDGenerator
	cfg         UploadConfig
	logger      *slog.Logger

	// closed stops pruning timers and rejects new sessions after Shutdown
	closed  chan struct{}
	closeMu sync.Once

	mu          sync.Mutex
	jobs        map[string]*uploadJob
	fileCancels map[string]context.CancelFunc
}

// UploadManager is the upload service together with the hook the file
// service uses to stop uploads of deleted files
type UploadManager interface {
	driveSvc.UploadService
	driveSvc.UploadCanceller
}

// NewUploadService creates the upload pipeline. Every session runs as a
// stream registered in streams under the session ID. Call Shutdown to stop it.
func NewUploadService(
	fileRepo driveRepo.FileRepository,
	folderRepo driveRepo.FolderRepository,
	sessionRepo driveRepo.UploadSessionRepository,
	txManager repositories.TransactionManager,
	policy *filetypes.Registry,
	streams *mstream.Registry,
	ids *utils.IDGenerator,
	cfg UploadConfig,
	logger *slog.Logger,
) UploadManager {
	if cfg.StepInterval <= 0 {
		cfg.StepInterval = config.DefaultUploadStepInterval
	}

	return &uploadService{
		fileRepo:    fileRepo,
		folderRepo:  folderRepo,
		sessionRepo: sessionRepo,
		txManager:   txManager,
		policy:      policy,
		streams:     streams,
		ids:         ids,
		cfg:         cfg,
		logger:      logger,
		closed:      make(chan struct{}),
		jobs:        make(map[string]*uploadJob),
		fileCancels: make(map[string]context.CancelFunc),
	}
}

// StartUpload validates the request, stores the session and its files in the
// uploading state and starts the progress tasks in the background.
// Individual files that fail validation are reported in Rejected.
func (s *uploadService) StartUpload(ctx context.Context, req *driveSvc.StartUploadRequest) (*driveSvc.StartUploadResult, error) {
	req.FolderID = normalizeID(req.FolderID)
	if err := validateStartUploadRequest(req); err != nil {
		return nil, err
	}
	if s.isClosed() {
		return nil, &domain.InvalidOperationError{Message: "upload service is shut down"}
	}

	rejected := make([]driveSvc.RejectedFile, 0)
	now := time.Now()
	files := make([]models.File, 0, len(req.Files))
	var totalSize int64

	for _, candidate := range req.Files {
		category, err := s.policy.Check(candidate.Name, candidate.Size, candidate.Type)
		if err == nil {
			err = utils.ValidateName(candidate.Name, config.MaxFileNameLength)
		}
		if err != nil {
			rejected = append(rejected, driveSvc.RejectedFile{Name: candidate.Name, Reason: err.Error()})
			continue
		}

		file := models.File{
			ID:         s.ids.Next(utils.FilePrefix),
			Name:       strings.TrimSpace(candidate.Name),
			Size:       candidate.Size,
			Type:       candidate.Type,
			Status:     models.FileStatusUploading,
			Progress:   models.ProgressMin,
			FolderID:   req.FolderID,
			URL:        candidate.URL,
			UploadedAt: now,
		}
		if category.Thumbnail {
			file.Thumbnail = candidate.URL
		}
		files = append(files, file)
		totalSize += candidate.Size
	}

	if len(files) == 0 {
		reasons := make([]string, len(rejected))
		for i, r := range rejected {
			reasons[i] = r.Reason
		}
		return nil, &domain.InvalidArgumentError{
			Message: "no valid files to upload: " + strings.Join(reasons, "; "),
		}
	}

	session := &models.UploadSession{
		ID:        s.ids.Next(utils.SessionPrefix),
		FileIDs:   make([]string, len(files)),
		TotalSize: totalSize,
		Status:    models.UploadSessionActive,
		StartedAt: now,
	}
	for i := range files {
		session.FileIDs[i] = files[i].ID
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if req.FolderID != nil {
			if _, err := s.folderRepo.Get(txCtx, *req.FolderID); err != nil {
				if isNotFound(err) {
					return &domain.ParentNotFoundError{
						Message:  fmt.Sprintf("folder %s not found", *req.FolderID),
						ParentID: *req.FolderID,
					}
				}
				return err
			}
		}
		if err := s.sessionRepo.Insert(txCtx, session); err != nil {
			return err
		}
		for i := range files {
			if err := s.fileRepo.Insert(txCtx, &files[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.launch(session.ID, session.FileIDs)

	s.logger.Info("upload session started",
		"session_id", session.ID,
		"file_count", len(files),
		"rejected_count", len(rejected),
		"total_size", totalSize,
	)

	result := session.Clone()
	return &driveSvc.StartUploadResult{
		Session:  &result,
		Files:    files,
		Rejected: rejected,
	}, nil
}

// launch registers the session stream and cancel handles for every file,
// then starts the stream in the background
func (s *uploadService) launch(sessionID string, fileIDs []string) {
	job := newUploadJob(s, sessionID, fileIDs)

	s.mu.Lock()
	s.jobs[sessionID] = job
	for i, fileID := range fileIDs {
		s.fileCancels[fileID] = job.fileCancels[i]
	}
	s.mu.Unlock()

	// Register before returning so clients can connect right away
	s.streams.Register(job.stream)

	go job.stream.Start()
}

// sessionOutcome decides how a session ends. A session whose files all
// completed is completed even when a cancel raced the last file.
func sessionOutcome(completed, total int, cancelled bool) models.UploadSessionStatus {
	switch {
	case completed == total:
		return models.UploadSessionCompleted
	case cancelled:
		return models.UploadSessionCancelled
	case completed == 0:
		return models.UploadSessionFailed
	default:
		return models.UploadSessionCompleted
	}
}

// setProgress stores one progress step. It fails when the file is gone or no
// longer uploading, which stops the task.
func (s *uploadService) setProgress(ctx context.Context, fileID string, progress int) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		file, err := s.fileRepo.Get(txCtx, fileID)
		if err != nil {
			return err
		}
		if file.Status != models.FileStatusUploading {
			return errUploadStopped
		}
		file.Progress = models.ClampProgress(progress)
		return s.fileRepo.Update(txCtx, file)
	})
}

// completeFile marks a file completed and adds its size to the session
func (s *uploadService) completeFile(ctx context.Context, sessionID, fileID string) (*models.File, error) {
	var file *models.File
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		file, err = s.fileRepo.Get(txCtx, fileID)
		if err != nil {
			return err
		}
		if err := file.SetStatus(models.FileStatusCompleted); err != nil {
			return errUploadStopped
		}
		now := time.Now()
		file.UpdatedAt = &now
		if err := s.fileRepo.Update(txCtx, file); err != nil {
			return err
		}

		session, err := s.sessionRepo.Get(txCtx, sessionID)
		if err != nil {
			return err
		}
		session.CompletedSize += file.Size
		return s.sessionRepo.Update(txCtx, session)
	})
	return file, err
}

// failFile moves a still-uploading file to failed. It reports whether the
// file changed; deleted files are skipped.
func (s *uploadService) failFile(fileID string) (*models.File, bool) {
	var file *models.File
	var failed bool
	err := s.txManager.ExecTx(context.Background(), func(txCtx context.Context) error {
		var err error
		file, err = s.fileRepo.Get(txCtx, fileID)
		if err != nil {
			return err
		}
		if file.Status != models.FileStatusUploading {
			return nil
		}
		if err := file.SetStatus(models.FileStatusFailed); err != nil {
			return err
		}
		now := time.Now()
		file.UpdatedAt = &now
		failed = true
		return s.fileRepo.Update(txCtx, file)
	})
	if err != nil {
		if !isNotFound(err) {
			s.logger.Error("failed to mark file failed", "file_id", fileID, "error", err)
		}
		return nil, false
	}
	return file, failed
}

// finishSession stores the final status and schedules pruning
func (s *uploadService) finishSession(sessionID string, status models.UploadSessionStatus) (*models.UploadSession, error) {
	var session *models.UploadSession
	err := s.txManager.ExecTx(context.Background(), func(txCtx context.Context) error {
		var err error
		session, err = s.sessionRepo.Get(txCtx, sessionID)
		if err != nil {
			return err
		}
		now := time.Now()
		session.Status = status
		session.FinishedAt = &now
		return s.sessionRepo.Update(txCtx, session)
	})
	if err != nil {
		if !isNotFound(err) {
			s.logger.Error("failed to finish upload session", "session_id", sessionID, "error", err)
		}
		return nil, err
	}

	s.logger.Info("upload session finished", "session_id", sessionID, "status", status)

	if s.cfg.SessionRetention > 0 {
		time.AfterFunc(s.cfg.SessionRetention, func() {
			if s.isClosed() {
				return
			}
			s.pruneSession(sessionID)
		})
	}
	return session, nil
}

// pruneSession removes a finished session record
func (s *uploadService) pruneSession(sessionID string) {
	err := s.txManager.ExecTx(context.Background(), func(txCtx context.Context) error {
		return s.sessionRepo.Remove(txCtx, sessionID)
	})
	if err != nil && !isNotFound(err) {
		s.logger.Warn("failed to prune upload session", "session_id", sessionID, "error", err)
		return
	}
	s.logger.Debug("upload session pruned", "session_id", sessionID)
}

// release drops the cancel handles of a finished job
func (s *uploadService) release(job *uploadJob) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jobs[job.sessionID] == job {
		delete(s.jobs, job.sessionID)
	}
	for _, fileID := range job.fileIDs {
		delete(s.fileCancels, fileID)
	}
}

// CancelFile stops the upload task of a single file. It reports whether the
// file had a pending or running task.
func (s *uploadService) CancelFile(fileID string) bool {
	s.mu.Lock()
	cancel, ok := s.fileCancels[fileID]
	s.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// ListSessions returns all stored sessions
func (s *uploadService) ListSessions(ctx context.Context) ([]models.UploadSession, error) {
	return s.sessionRepo.List(ctx)
}

// GetSession retrieves a session by ID
func (s *uploadService) GetSession(ctx context.Context, id string) (*models.UploadSession, error) {
	return s.sessionRepo.Get(ctx, id)
}

// CancelUpload cancels the session stream and waits until its files are
// settled. Cancelling a finished session is an InvalidOperation, and so is a
// cancel that arrives after every file already completed.
func (s *uploadService) CancelUpload(ctx context.Context, id string) (*models.UploadSession, error) {
	session, err := s.sessionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Done() {
		return nil, &domain.InvalidOperationError{
			Message: fmt.Sprintf("upload session %s already %s", id, session.Status),
		}
	}

	if err := s.stopSession(ctx, id); err != nil {
		return nil, err
	}

	session, err = s.sessionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.UploadSessionCancelled {
		return nil, &domain.InvalidOperationError{
			Message: fmt.Sprintf("upload session %s already %s", id, session.Status),
		}
	}

	s.logger.Info("upload session cancelled", "session_id", id)
	return session, nil
}

// DeleteSession stops the session if it is still running, then removes it.
// Its file records stay in the file store.
func (s *uploadService) DeleteSession(ctx context.Context, id string) error {
	session, err := s.sessionRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !session.Done() {
		if err := s.stopSession(ctx, id); err != nil {
			return err
		}
	}

	if err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.sessionRepo.Remove(txCtx, id)
	}); err != nil {
		return err
	}

	s.logger.Info("upload session deleted", "session_id", id)
	return nil
}

// stopSession cancels the stream of an active session and waits for its work
// function to return. A session with no stream in this process (left active
// by a previous run) is settled directly as cancelled.
func (s *uploadService) stopSession(ctx context.Context, id string) error {
	s.mu.Lock()
	job, ok := s.jobs[id]
	s.mu.Unlock()

	if !ok {
		s.abandon(id)
		return nil
	}

	if stream := s.streams.Get(id); stream != nil {
		stream.Cancel()
	} else {
		job.stream.Cancel()
	}

	select {
	case <-job.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// abandon fails the pending files of a session nobody is running and marks
// it cancelled
func (s *uploadService) abandon(id string) {
	session, err := s.sessionRepo.Get(context.Background(), id)
	if err != nil || session.Done() {
		return
	}
	for _, fileID := range session.FileIDs {
		s.failFile(fileID)
	}
	if _, err := s.finishSession(id, models.UploadSessionCancelled); err == nil {
		s.logger.Warn("settled orphaned upload session", "session_id", id)
	}
}

func (s *uploadService) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Shutdown cancels every running session stream and waits for the work
// functions to exit
func (s *uploadService) Shutdown(ctx context.Context) error {
	s.closeMu.Do(func() { close(s.closed) })

	s.mu.Lock()
	jobs := make([]*uploadJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	s.mu.Unlock()

	for _, job := range jobs {
		job.stream.Cancel()
	}
	for _, job := range jobs {
		select {
		case <-job.done:
		case <-ctx.Done():
			return fmt.Errorf("upload service shutdown: %w", ctx.Err())
		}
	}

	s.logger.Info("upload service stopped", "cancelled_sessions", len(jobs))
	return nil
}

package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"dropzone/internal/config"
	models "dropzone/internal/domain/models/drive"
	driveRepo "dropzone/internal/domain/repositories/drive"

	mstream "github.com/haowjy/meridian-stream-go"
)

// uploadJob runs the files of one session, one after another, as the work
// function of an mstream.Stream. Cancelling the stream cancels every file.
type uploadJob struct {
	svc       *uploadService
	sessionID string
	fileIDs   []string
	stream    *mstream.Stream

	// files share a parent context so a single file can be stopped on its
	// own (file deleted) while the stream context stops them all
	cancelFiles context.CancelFunc
	fileCtxs    []context.Context
	fileCancels []context.CancelFunc

	done chan struct{}
}

func newUploadJob(svc *uploadService, sessionID string, fileIDs []string) *uploadJob {
	filesCtx, cancelFiles := context.WithCancel(context.Background())
	job := &uploadJob{
		svc:         svc,
		sessionID:   sessionID,
		fileIDs:     fileIDs,
		cancelFiles: cancelFiles,
		fileCtxs:    make([]context.Context, len(fileIDs)),
		fileCancels: make([]context.CancelFunc, len(fileIDs)),
		done:        make(chan struct{}),
	}
	for i := range fileIDs {
		job.fileCtxs[i], job.fileCancels[i] = context.WithCancel(filesCtx)
	}

	job.stream = mstream.NewStream(
		sessionID,
		job.work,
		mstream.WithCatchup(buildUploadCatchup(svc.sessionRepo, svc.fileRepo, svc.logger)),
		mstream.WithEventIDs(svc.cfg.EventIDs),
	)
	return job
}

// work is the mstream WorkFunc driving the session
func (j *uploadJob) work(ctx context.Context, send func(mstream.Event)) error {
	defer close(j.done)
	defer j.svc.release(j)
	defer j.cancelFiles()

	stop := context.AfterFunc(ctx, j.cancelFiles)
	defer stop()

	logger := j.svc.logger.With("session_id", j.sessionID)

	completed := 0
	for i, fileID := range j.fileIDs {
		if ctx.Err() != nil {
			j.fail(send, fileID)
			continue
		}

		if err := j.uploadFile(j.fileCtxs[i], send, fileID); err != nil {
			logger.Info("file upload stopped", "file_id", fileID, "reason", err.Error())
			j.fail(send, fileID)
			continue
		}
		completed++
	}

	status := sessionOutcome(completed, len(j.fileIDs), ctx.Err() != nil)

	var session *models.UploadSession
	if err := j.stream.PersistAndClear(func([]mstream.Event) error {
		var err error
		session, err = j.svc.finishSession(j.sessionID, status)
		return err
	}); err != nil {
		// Deleted while running; there is no session left to report
		return nil
	}
	j.sendEvent(send, models.UploadEventDone, session)

	if status == models.UploadSessionCancelled {
		return fmt.Errorf("upload cancelled: %w", context.Canceled)
	}
	return nil
}

// uploadFile drives one file from 0 to 100 and marks it completed
func (j *uploadJob) uploadFile(ctx context.Context, send func(mstream.Event), fileID string) error {
	task := &ProgressTask{
		Step:     config.UploadProgressStep,
		Interval: j.svc.cfg.StepInterval,
		OnProgress: func(progress int) error {
			if err := j.svc.setProgress(ctx, fileID, progress); err != nil {
				return err
			}
			j.sendProgress(send, fileID, progress, models.FileStatusUploading)
			return nil
		},
	}
	if err := task.Run(ctx); err != nil {
		return err
	}

	// Completion is stored before the buffered progress events are dropped,
	// so catchup rebuilds the file from the store from here on
	var file *models.File
	if err := j.stream.PersistAndClear(func([]mstream.Event) error {
		var err error
		file, err = j.svc.completeFile(ctx, j.sessionID, fileID)
		return err
	}); err != nil {
		return err
	}
	j.sendProgress(send, fileID, models.ProgressMax, models.FileStatusCompleted)

	j.svc.logger.Info("file upload completed",
		"session_id", j.sessionID,
		"file_id", fileID,
		"name", file.Name,
	)
	return nil
}

// fail marks a still-uploading file failed and reports it
func (j *uploadJob) fail(send func(mstream.Event), fileID string) {
	var file *models.File
	var failed bool
	_ = j.stream.PersistAndClear(func([]mstream.Event) error {
		file, failed = j.svc.failFile(fileID)
		return nil
	})
	if failed {
		j.sendProgress(send, fileID, file.Progress, models.FileStatusFailed)
	}
}

func (j *uploadJob) sendProgress(send func(mstream.Event), fileID string, progress int, status models.FileStatus) {
	j.sendEvent(send, models.UploadEventProgress, models.UploadProgressEvent{
		SessionID: j.sessionID,
		FileID:    fileID,
		Progress:  progress,
		Status:    status,
		Time:      time.Now(),
	})
}

func (j *uploadJob) sendEvent(send func(mstream.Event), eventType string, data interface{}) {
	event, err := newStreamEvent(eventType, data)
	if err != nil {
		j.svc.logger.Error("failed to encode upload event",
			"session_id", j.sessionID,
			"event_type", eventType,
			"error", err,
		)
		return
	}
	send(event)
}

func newStreamEvent(eventType string, data interface{}) (mstream.Event, error) {
	var event mstream.Event
	payload, err := json.Marshal(data)
	if err != nil {
		return event, err
	}
	return mstream.NewEvent(payload).WithType(eventType), nil
}

// buildUploadCatchup replays a session from the store for clients that
// connect late or reconnect: a session snapshot, the current state of every
// file still present, and the done event once the session has finished.
func buildUploadCatchup(sessions driveRepo.UploadSessionRepository, files driveRepo.FileRepository, logger *slog.Logger) mstream.CatchupFunc {
	return func(streamID string, lastEventID string) ([]mstream.Event, error) {
		ctx := context.Background()
		sessionID := streamID

		session, err := sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get upload session: %w", err)
		}

		events := make([]mstream.Event, 0, len(session.FileIDs)+2)
		event, err := newStreamEvent(models.UploadEventSession, session)
		if err != nil {
			return nil, err
		}
		events = append(events, event)

		for _, fileID := range session.FileIDs {
			file, err := files.Get(ctx, fileID)
			if err != nil {
				if isNotFound(err) {
					continue
				}
				return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
			}

			event, err := newStreamEvent(models.UploadEventProgress, models.UploadProgressEvent{
				SessionID: sessionID,
				FileID:    file.ID,
				Progress:  file.Progress,
				Status:    file.Status,
				Time:      time.Now(),
			})
			if err != nil {
				return nil, err
			}
			events = append(events, event)
		}

		if session.Done() {
			event, err := newStreamEvent(models.UploadEventDone, session)
			if err != nil {
				return nil, err
			}
			events = append(events, event)
		}

		logger.Debug("upload catchup built",
			"session_id", sessionID,
			"last_event_id", lastEventID,
			"total_events", len(events),
		)
		return events, nil
	}
}

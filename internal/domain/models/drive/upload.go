package drive

import "time"

// UploadSessionStatus tracks a batch upload as a whole
type UploadSessionStatus string

const (
	UploadSessionActive    UploadSessionStatus = "active"
	UploadSessionCompleted UploadSessionStatus = "completed"
	UploadSessionCancelled UploadSessionStatus = "cancelled"
	UploadSessionFailed    UploadSessionStatus = "failed"
)

// UploadSession groups the files of one drop/selection
type UploadSession struct {
	ID            string              `json:"id" db:"id"`
	FileIDs       []string            `json:"fileIds" db:"file_ids"`
	TotalSize     int64               `json:"totalSize" db:"total_size"`
	CompletedSize int64               `json:"completedSize" db:"completed_size"`
	Status        UploadSessionStatus `json:"status" db:"status"`
	StartedAt     time.Time           `json:"startedAt" db:"started_at"`
	FinishedAt    *time.Time          `json:"finishedAt,omitempty" db:"finished_at"`
}

// Clone returns a deep copy of the session
func (s UploadSession) Clone() UploadSession {
	s.FileIDs = append([]string(nil), s.FileIDs...)
	if s.FinishedAt != nil {
		finishedAt := *s.FinishedAt
		s.FinishedAt = &finishedAt
	}
	return s
}

// Done reports whether the session has stopped running
func (s *UploadSession) Done() bool {
	return s.Status != UploadSessionActive
}

// Event types written to an upload stream
const (
	// UploadEventSession carries a snapshot of the session
	UploadEventSession = "session"
	// UploadEventProgress carries the state of one file
	UploadEventProgress = "progress"
	// UploadEventDone carries the finished session and closes the stream
	UploadEventDone = "done"
)

// UploadProgressEvent is emitted on every progress step of a file upload
// and whenever a file reaches completed or failed
type UploadProgressEvent struct {
	SessionID string     `json:"sessionId"`
	FileID    string     `json:"fileId"`
	Progress  int        `json:"progress"`
	Status    FileStatus `json:"status"`
	Time      time.Time  `json:"time"`
}

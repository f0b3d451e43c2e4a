package memory

import (
	"sync"

	"dropzone/internal/domain/models/drive"
)

// Store holds the in-memory collections. Slices keep insertion order, which
// is the order every List call returns.
type Store struct {
	mu       sync.RWMutex
	folders  []drive.Folder
	files    []drive.File
	sessions []drive.UploadSession
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		folders:  []drive.Folder{},
		files:    []drive.File{},
		sessions: []drive.UploadSession{},
	}
}

type snapshot struct {
	folders  []drive.Folder
	files    []drive.File
	sessions []drive.UploadSession
}

// snapshot deep-copies every collection
func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		folders:  make([]drive.Folder, len(s.folders)),
		files:    make([]drive.File, len(s.files)),
		sessions: make([]drive.UploadSession, len(s.sessions)),
	}
	for i := range s.folders {
		snap.folders[i] = s.folders[i].Clone()
	}
	for i := range s.files {
		snap.files[i] = s.files[i].Clone()
	}
	for i := range s.sessions {
		snap.sessions[i] = s.sessions[i].Clone()
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.folders = snap.folders
	s.files = snap.files
	s.sessions = snap.sessions
}

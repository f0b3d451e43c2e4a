package config

import "time"

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file names.
	MaxFileNameLength = 255

	// MaxFolderPathLength bounds materialized folder paths. Deeper
	// hierarchies are rejected on create/move.
	MaxFolderPathLength = 4096

	// MaxSearchQueryLength bounds search input
	MaxSearchQueryLength = 200

	// MaxUploadBatch is the most files accepted in one upload request
	MaxUploadBatch = 100
)

const (
	// UploadProgressStep is how far a simulated upload advances per tick
	UploadProgressStep = 10

	// DefaultUploadStepInterval is the delay between progress ticks
	DefaultUploadStepInterval = 100 * time.Millisecond

	// DefaultUploadSessionRetention is how long a finished session is kept
	// before it is pruned
	DefaultUploadSessionRetention = 3 * time.Second
)

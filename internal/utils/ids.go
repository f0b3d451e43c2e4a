package utils

import (
	"strconv"
	"sync"
	"time"
)

// ID prefixes for generated record IDs
const (
	FilePrefix    = "file"
	FolderPrefix  = "folder"
	SessionPrefix = "session"
)

// IDGenerator produces "<prefix>_<unix millis>" IDs. The timestamp part is
// strictly increasing per generator, so IDs minted within the same
// millisecond stay unique.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates a generator backed by the wall clock
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// NewIDGeneratorWithClock creates a generator backed by a custom clock
func NewIDGeneratorWithClock(now func() time.Time) *IDGenerator {
	return &IDGenerator{now: now}
}

// Next returns a new ID with the given prefix
func (g *IDGenerator) Next(prefix string) string {
	g.mu.Lock()
	ts := g.now().UnixMilli()
	if ts <= g.last {
		ts = g.last + 1
	}
	g.last = ts
	g.mu.Unlock()

	return prefix + "_" + strconv.FormatInt(ts, 10)
}

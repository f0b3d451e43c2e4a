package utils

import (
	"strings"
	"testing"
	"time"
)

func TestIDGenerator_Format(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	g := NewIDGeneratorWithClock(func() time.Time { return fixed })

	if got := g.Next(FolderPrefix); got != "folder_1700000000000" {
		t.Errorf("Next() = %q, want folder_1700000000000", got)
	}
	if got := g.Next(FilePrefix); got != "file_1700000000001" {
		t.Errorf("Next() = %q, want file_1700000000001 (same millisecond must not collide)", got)
	}
}

func TestIDGenerator_Unique(t *testing.T) {
	g := NewIDGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.Next(SessionPrefix)
		if !strings.HasPrefix(id, "session_") {
			t.Fatalf("unexpected id %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

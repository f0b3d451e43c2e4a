package drive

import (
	"testing"

	models "dropzone/internal/domain/models/drive"
)

func sampleFiles() []models.File {
	return []models.File{
		{ID: "1", Name: "Beach.JPG", Type: "image/jpeg", FolderID: strPtr("photos")},
		{ID: "2", Name: "report.pdf", Type: "application/pdf", FolderID: strPtr("docs")},
		{ID: "3", Name: "sunset.png", Type: "image/png"},
		{ID: "4", Name: "song.mp3", Type: "audio/mpeg", FolderID: strPtr("photos")},
		{ID: "5", Name: "beach-notes.txt", Type: "text/plain", FolderID: strPtr("photos")},
	}
}

func fileIDs(files []models.File) []string {
	ids := make([]string, len(files))
	for i := range files {
		ids[i] = files[i].ID
	}
	return ids
}

func TestFilterFiles(t *testing.T) {
	tests := []struct {
		name   string
		filter models.FileFilter
		want   []string
	}{
		{"empty filter keeps everything", models.FileFilter{}, []string{"1", "2", "3", "4", "5"}},
		{"type prefix keeps order", models.FileFilter{Type: "image/"}, []string{"1", "3"}},
		{"folder", models.FileFilter{FolderID: strPtr("photos")}, []string{"1", "4", "5"}},
		{"search is case-insensitive", models.FileFilter{Search: "BEACH"}, []string{"1", "5"}},
		{"criteria combine", models.FileFilter{FolderID: strPtr("photos"), Type: "image/", Search: "beach"}, []string{"1"}},
		{"no match", models.FileFilter{Type: "video/"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fileIDs(FilterFiles(sampleFiles(), tt.filter))
			if !equalStrings(got, tt.want) {
				t.Errorf("FilterFiles() = %v, want %v", got, tt.want)
			}
		})
	}
}

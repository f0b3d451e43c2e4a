package drive

import (
	"strings"

	models "dropzone/internal/domain/models/drive"
)

// FilterFiles keeps the files matching every set criterion of filter, in
// their original order. An empty filter returns files unchanged.
func FilterFiles(files []models.File, filter models.FileFilter) []models.File {
	if filter.IsEmpty() {
		return files
	}

	filtered := make([]models.File, 0, len(files))
	for i := range files {
		if filter.Matches(&files[i]) {
			filtered = append(filtered, files[i])
		}
	}
	return filtered
}

// matchesQuery reports whether file's name or MIME type contains query,
// case-insensitively. query must already be lower-cased.
func matchesQuery(file *models.File, query string) bool {
	return strings.Contains(strings.ToLower(file.Name), query) ||
		strings.Contains(strings.ToLower(file.Type), query)
}
